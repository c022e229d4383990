// Package builtin implements the worked calling-convention-compatible
// primitive set spec.md's **[EXPANSION §6a]** calls for: a small
// standard library obeying the §4.1.2 calling convention, grounded on
// original_source/core/builtin.c. Every primitive is a Two-closure
// (it always receives an explicit continuation); multi-argument
// primitives curry exactly the way builtin.c's string_concat_k /
// string_concat_k_2 pair does, returning an intermediate closure
// through the continuation rather than taking a fixed-arity tuple.
package builtin

import (
	"fmt"
	"os"

	"github.com/simmsb/some-scheme-compiler/diag"
	"github.com/simmsb/some-scheme-compiler/gc"
	"github.com/simmsb/some-scheme-compiler/trampoline"
	"github.com/simmsb/some-scheme-compiler/value"
)

// Registry builds and owns every built-in closure, each heap-resident
// from construction (built-ins are persistent, unlike the per-call
// stack allocations compiled code produces).
type Registry struct {
	D *trampoline.Dispatcher
	H *gc.Heap

	interner *value.Interner
}

func NewRegistry(d *trampoline.Dispatcher, h *gc.Heap) *Registry {
	return &Registry{D: d, H: h, interner: value.NewInterner()}
}

func boolInt(b bool) value.Value {
	if b {
		return value.NewIntHeap(1)
	}
	return value.NewIntHeap(0)
}

// unary builds a single Two-closure: its rand is the sole argument,
// fn's result is delivered to cont.
func (r *Registry) unary(fn func(a value.Value) value.Value) *value.Closure {
	body := func(a, cont value.Value, _ *value.Env) {
		r.D.CallOne(cont, fn(a))
	}
	c := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
	r.H.Track(c)
	return c
}

// curry2 builds a two-argument primitive as a pair of curried
// Two-closures, grounded on builtin.c's string_concat_k /
// string_concat_k_2.
func (r *Registry) curry2(fn func(a, b value.Value) value.Value) *value.Closure {
	step2 := func(a value.Value) *value.Closure {
		body := func(b, cont value.Value, _ *value.Env) {
			r.D.CallOne(cont, fn(a, b))
		}
		c := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
		r.H.Track(c)
		return c
	}
	outer := func(a, cont value.Value, _ *value.Env) {
		r.D.CallOne(cont, step2(a))
	}
	c := value.NewClosureTwoHeap(outer, value.NewEnvHeap(0))
	r.H.Track(c)
	return c
}

// curry3 is curry2 extended one level, for hash-table-set!.
func (r *Registry) curry3(fn func(a, b, c value.Value) value.Value) *value.Closure {
	step3 := func(a, b value.Value) *value.Closure {
		body := func(c, cont value.Value, _ *value.Env) {
			r.D.CallOne(cont, fn(a, b, c))
		}
		cl := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
		r.H.Track(cl)
		return cl
	}
	step2 := func(a value.Value) *value.Closure {
		body := func(b, cont value.Value, _ *value.Env) {
			r.D.CallOne(cont, step3(a, b))
		}
		cl := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
		r.H.Track(cl)
		return cl
	}
	outer := func(a, cont value.Value, _ *value.Env) {
		r.D.CallOne(cont, step2(a))
	}
	cl := value.NewClosureTwoHeap(outer, value.NewEnvHeap(0))
	r.H.Track(cl)
	return cl
}

func (r *Registry) intBinop(name string, op func(a, b int64) int64) *value.Closure {
	return r.curry2(func(av, bv value.Value) value.Value {
		a, ok := av.(*value.Int)
		if !ok {
			diag.Fatal(diag.TypeError, "%s: left operand is not an int", name)
		}
		b, ok := bv.(*value.Int)
		if !ok {
			diag.Fatal(diag.TypeError, "%s: right operand is not an int", name)
		}
		return value.NewIntHeap(op(a.Val, b.Val))
	})
}

// Cons builds a fresh heap Cons from its curried arguments.
func (r *Registry) Cons() *value.Closure {
	return r.curry2(func(a, b value.Value) value.Value { return value.NewConsHeap(a, b) })
}

func (r *Registry) Car() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		c, ok := v.(*value.Cons)
		if !ok {
			diag.Fatal(diag.TypeError, "car: argument is not a cons")
		}
		return c.Car
	})
}

func (r *Registry) Cdr() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		c, ok := v.(*value.Cons)
		if !ok {
			diag.Fatal(diag.TypeError, "cdr: argument is not a cons")
		}
		return c.Cdr
	})
}

func (r *Registry) Add1() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		i, ok := v.(*value.Int)
		if !ok {
			diag.Fatal(diag.TypeError, "add1: argument is not an int")
		}
		return value.NewIntHeap(i.Val + 1)
	})
}

func (r *Registry) Sub1() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		i, ok := v.(*value.Int)
		if !ok {
			diag.Fatal(diag.TypeError, "sub1: argument is not an int")
		}
		return value.NewIntHeap(i.Val - 1)
	})
}

func (r *Registry) Add() *value.Closure { return r.intBinop("+", func(a, b int64) int64 { return a + b }) }
func (r *Registry) Sub() *value.Closure { return r.intBinop("-", func(a, b int64) int64 { return a - b }) }
func (r *Registry) Mul() *value.Closure { return r.intBinop("*", func(a, b int64) int64 { return a * b }) }

// EqP is pointer/nil identity equality, distinct from the structural
// EqualP (spec.md §4.1.4).
func (r *Registry) EqP() *value.Closure {
	return r.curry2(func(a, b value.Value) value.Value { return boolInt(a == b) })
}

func (r *Registry) EqualP() *value.Closure {
	return r.curry2(func(a, b value.Value) value.Value { return boolInt(value.Equal(a, b)) })
}

// Intern is the `intern` built-in entry point spec.md **[EXPANSION
// §4.1.4a]** commits to: it deduplicates Str allocations by content
// fingerprint through the Registry-owned value.Interner. A
// stack-resident argument is copied to the heap and tracked first,
// since value.Interner.Intern requires a heap-resident candidate.
func (r *Registry) Intern() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		s, ok := v.(*value.Str)
		if !ok {
			diag.Fatal(diag.TypeError, "intern: argument is not a string")
		}
		if s.OnStack {
			s = value.NewStrHeap(s.Bytes)
			r.H.Track(s)
		}
		return r.interner.Intern(s)
	})
}

// Display prints a value's debug rendering and resumes its
// continuation with null, mirroring builtin.c's display_k.
func (r *Registry) Display() *value.Closure {
	return r.unary(func(v value.Value) value.Value {
		fmt.Println(value.DebugString(v))
		return nil
	})
}

// MakeHashTable ignores its argument (the calling convention has no
// true zero-arity shape) and resumes with a fresh heap HashTable.
func (r *Registry) MakeHashTable() *value.Closure {
	body := func(_, cont value.Value, _ *value.Env) {
		ht := value.NewHashTableHeap()
		r.H.Track(ht)
		r.D.CallOne(cont, ht)
	}
	c := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
	r.H.Track(c)
	return c
}

func (r *Registry) HashTableSet() *value.Closure {
	return r.curry3(func(htV, kV, vV value.Value) value.Value {
		ht, ok := htV.(*value.HashTable)
		if !ok {
			diag.Fatal(diag.TypeError, "hash-table-set!: first argument is not a hash table")
		}
		ht.Set(kV, vV)
		return nil
	})
}

// HashTableRef returns null on miss, per spec.md §7's "ht_get returns
// null on miss" contract — there is no separate error path.
func (r *Registry) HashTableRef() *value.Closure {
	return r.curry2(func(htV, kV value.Value) value.Value {
		ht, ok := htV.(*value.HashTable)
		if !ok {
			diag.Fatal(diag.TypeError, "hash-table-ref: first argument is not a hash table")
		}
		return ht.Get(kV)
	})
}

func (r *Registry) HashTableDelete() *value.Closure {
	return r.curry2(func(htV, kV value.Value) value.Value {
		ht, ok := htV.(*value.HashTable)
		if !ok {
			diag.Fatal(diag.TypeError, "hash-table-delete!: first argument is not a hash table")
		}
		return boolInt(ht.Delete(kV))
	})
}

// Exit terminates the process immediately, the only built-in allowed
// to end execution outside of diag.Fatal (spec.md §4.2.3, §6a).
func (r *Registry) Exit() *value.Closure {
	body := func(rand, _ value.Value, _ *value.Env) {
		code := 0
		if i, ok := rand.(*value.Int); ok {
			code = int(i.Val)
		}
		os.Exit(code)
	}
	c := value.NewClosureTwoHeap(body, value.NewEnvHeap(0))
	r.H.Track(c)
	return c
}

// All returns every built-in keyed by its Scheme-facing name, for a
// compiler or REPL's global environment to install.
func (r *Registry) All() map[string]*value.Closure {
	return map[string]*value.Closure{
		"cons":              r.Cons(),
		"car":               r.Car(),
		"cdr":               r.Cdr(),
		"add1":              r.Add1(),
		"sub1":              r.Sub1(),
		"+":                 r.Add(),
		"-":                 r.Sub(),
		"*":                 r.Mul(),
		"eq?":               r.EqP(),
		"equal?":            r.EqualP(),
		"intern":            r.Intern(),
		"display":           r.Display(),
		"make-hash-table":   r.MakeHashTable(),
		"hash-table-set!":   r.HashTableSet(),
		"hash-table-ref":    r.HashTableRef(),
		"hash-table-delete!": r.HashTableDelete(),
		"exit":              r.Exit(),
	}
}
