package value

import "github.com/simmsb/some-scheme-compiler/container"

// HashTable owns a robin-hood open-addressing table mapping
// value->value, using structural hash/equality (spec.md §3.1,
// §4.1.4). It is backed by the same generic container.RobinHood the
// GC's forwarding table uses, instantiated here with Hash/Equal as
// the hash/equality functions instead of pointer identity.
type HashTable struct {
	Header
	Table *container.RobinHood[Value, Value]
}

func (h *HashTable) Hdr() *Header { return &h.Header }

func newTable() *container.RobinHood[Value, Value] {
	return container.New[Value, Value](Hash, Equal)
}

func NewHashTableStack() *HashTable {
	return &HashTable{Header: newHeader(TagHashTable, true), Table: newTable()}
}

func NewHashTableHeap() *HashTable {
	return &HashTable{Header: newHeader(TagHashTable, false), Table: newTable()}
}

// Set inserts or overwrites the binding for k. Built-ins implementing
// hash-table-set! call this directly (spec.md §6a).
func (h *HashTable) Set(k, v Value) { h.Table.Insert(k, v) }

// Get returns the miss-as-nil lookup spec.md §7 prescribes for
// built-ins: "ht_get returns null on miss".
func (h *HashTable) Get(k Value) Value {
	v, ok := h.Table.Lookup(k)
	if !ok {
		return nil
	}
	return v
}

func (h *HashTable) Delete(k Value) bool { return h.Table.Delete(k) }

func (h *HashTable) Len() int { return h.Table.Len() }
