package gc

import "github.com/simmsb/some-scheme-compiler/value"

// evacContext carries the minor phase's forwarding table and pending
// pointer-update queue (spec.md §4.3.2).
type evacContext struct {
	forwarding *forwardingTable
	updates    *updateQueue
}

// enqueueChild records that *slot currently points at original and
// will need rewriting to original's evacuated counterpart once that
// counterpart is known. A nil original is skipped: there is nothing
// to evacuate, and *slot is already the correct nil.
func (ec *evacContext) enqueueChild(slot *value.Value, original value.Value) {
	if original == nil {
		return
	}
	ec.updates.Enqueue(updateRequest{slot: slot, original: original})
}

// markContext carries the major phase's grey queue (spec.md §4.3.3).
type markContext struct {
	grey *greyQueue
}

// visit enqueues child as Grey only if it is currently White, per
// spec.md §4.3.3 ("guards against cycles and duplicates").
func (mc *markContext) visit(child value.Value) {
	if child == nil {
		return
	}
	if child.Hdr().Mark == value.White {
		child.Hdr().Mark = value.Grey
		mc.grey.Enqueue(child)
	}
}

// tagOps is this package's Go analogue of the original's
// gc_func_map[] / gc_funcs dispatch table (original_source/core/gc.c,
// gc.h), extended from the two tags the original wires (Closure, Env)
// to the full seven-tag table spec.md §4.3.6 specifies.
type tagOps struct {
	// toHeap copies obj to the heap if still stack-resident (returning
	// the same pointer otherwise) and enqueues pointer-update requests
	// for every outgoing reference field.
	toHeap func(obj value.Value, ec *evacContext) value.Value
	// mark enqueues obj's children as Grey (obj's own Black transition
	// is the caller's responsibility, per spec.md §4.3.3).
	mark func(obj value.Value, mc *markContext)
	// free releases any out-of-line resource owned by obj. Called only
	// from sweep.
	free func(obj value.Value)
}

var opsTable [value.NumTags]tagOps

func noopFree(value.Value) {}

func init() {
	opsTable[value.TagClosure] = tagOps{toHeapClosure, markClosure, noopFree}
	opsTable[value.TagEnv] = tagOps{toHeapEnv, markEnv, noopFree}
	opsTable[value.TagCell] = tagOps{toHeapCell, markCell, noopFree}
	opsTable[value.TagCons] = tagOps{toHeapCons, markCons, noopFree}
	opsTable[value.TagHashTable] = tagOps{toHeapHashTable, markHashTable, freeHashTable}
	opsTable[value.TagInt] = tagOps{toHeapInt, markLeaf, noopFree}
	opsTable[value.TagStr] = tagOps{toHeapStr, markLeaf, noopFree}
}

func markLeaf(value.Value, *markContext) {}

func toHeapClosure(obj value.Value, ec *evacContext) value.Value {
	c := obj.(*value.Closure)
	if !c.OnStack {
		return c
	}
	cp := *c
	cp.OnStack = false
	ec.enqueueChild(&cp.Env, c.Env)
	return &cp
}

func markClosure(obj value.Value, mc *markContext) {
	mc.visit(obj.(*value.Closure).Env)
}

func toHeapEnv(obj value.Value, ec *evacContext) value.Value {
	e := obj.(*value.Env)
	if !e.OnStack {
		return e
	}
	cp := *e
	cp.OnStack = false
	cp.Slots = append([]value.Value(nil), e.Slots...)
	for i := range cp.Slots {
		if cp.Slots[i] != nil {
			ec.enqueueChild(&cp.Slots[i], e.Slots[i])
		}
	}
	return &cp
}

func markEnv(obj value.Value, mc *markContext) {
	for _, s := range obj.(*value.Env).Slots {
		mc.visit(s)
	}
}

func toHeapCell(obj value.Value, ec *evacContext) value.Value {
	c := obj.(*value.Cell)
	if !c.OnStack {
		return c
	}
	cp := *c
	cp.OnStack = false
	ec.enqueueChild(&cp.Interior, c.Interior)
	return &cp
}

func markCell(obj value.Value, mc *markContext) {
	mc.visit(obj.(*value.Cell).Interior)
}

func toHeapCons(obj value.Value, ec *evacContext) value.Value {
	c := obj.(*value.Cons)
	if !c.OnStack {
		return c
	}
	cp := *c
	cp.OnStack = false
	ec.enqueueChild(&cp.Car, c.Car)
	ec.enqueueChild(&cp.Cdr, c.Cdr)
	return &cp
}

func markCons(obj value.Value, mc *markContext) {
	c := obj.(*value.Cons)
	mc.visit(c.Car)
	mc.visit(c.Cdr)
}

func toHeapHashTable(obj value.Value, ec *evacContext) value.Value {
	h := obj.(*value.HashTable)
	if !h.OnStack {
		return h
	}
	cp := *h
	cp.OnStack = false
	// Table is shared by reference with the about-to-be-abandoned
	// stack header: there is exactly one underlying robin-hood table,
	// and evacuating its entries in place benefits both (moot) views
	// of it.
	cp.Table.EachPtr(func(k, v *value.Value) {
		ec.enqueueChild(k, *k)
		ec.enqueueChild(v, *v)
	})
	return &cp
}

func markHashTable(obj value.Value, mc *markContext) {
	obj.(*value.HashTable).Table.Each(func(k, v value.Value) {
		mc.visit(k)
		mc.visit(v)
	})
}

func freeHashTable(obj value.Value) {
	obj.(*value.HashTable).Table = nil
}

func toHeapInt(obj value.Value, ec *evacContext) value.Value {
	i := obj.(*value.Int)
	if !i.OnStack {
		return i
	}
	cp := *i
	cp.OnStack = false
	return &cp
}

func toHeapStr(obj value.Value, ec *evacContext) value.Value {
	s := obj.(*value.Str)
	if !s.OnStack {
		return s
	}
	cp := *s
	cp.OnStack = false
	cp.Bytes = append([]byte(nil), s.Bytes...)
	return &cp
}
