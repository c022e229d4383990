package trampoline

import (
	"github.com/simmsb/some-scheme-compiler/gc"
	"github.com/simmsb/some-scheme-compiler/value"
)

// Thunk is the heap-allocated record the indirect path populates
// before invoking the minor GC and bouncing (spec.md §4.2.1's
// "heap-allocate a new thunk populated with the closure and its
// operands"). Cont is nil for a One-arity call. Fields are
// value.Value (dynamically *value.Closure for Closure) rather than
// concrete pointer types so Root can address them directly without a
// copy, the same reasoning as value.Closure.Env.
type Thunk struct {
	Closure value.Value
	Rand    value.Value
	Cont    value.Value
}

// Root builds the gc.Root this thunk represents. The sole root set at
// any GC invocation is the current thunk (spec.md §4.3.1).
func (t *Thunk) Root() gc.Root {
	return gc.Root{Closure: t.Closure, Rand: t.Rand, Cont: t.Cont}
}

// ApplyRoot writes a post-GC root's (possibly evacuated) fields back
// into the thunk.
func (t *Thunk) ApplyRoot(r gc.Root) {
	t.Closure, t.Rand, t.Cont = r.Closure, r.Rand, r.Cont
}
