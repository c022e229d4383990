package value

// OneProc is the shape of a continuation: it receives the value being
// passed to it plus the lexical environment it closed over. Per the
// CPS discipline it never returns to its caller; it ends by tail-
// calling another procedure, a built-in, or the trampoline's call
// helper.
type OneProc func(rand Value, env *Env)

// TwoProc is the shape of a user-level function of one argument: it
// receives the argument, an explicit continuation, and its
// environment.
type TwoProc func(rand Value, cont Value, env *Env)

// Closure pairs a function pointer with the Env it captured. Arity
// One denotes a continuation-shaped callable; Arity Two denotes a
// user-function-shaped callable (spec.md §3.1).
//
// Env is typed as Value (always dynamically *Env) rather than *Env
// directly, so every GC-traversable reference field in this package
// has one uniform interface type the evacuator can take the address
// of generically (see gc/ops.go) — the same reason Cons.Car/Cdr and
// Cell.Interior are Value rather than concrete pointer types.
type Closure struct {
	Header
	Arity Arity
	One   OneProc
	Two   TwoProc
	Env   Value
}

func (c *Closure) Hdr() *Header { return &c.Header }

// EnvPtr recovers the captured Env. Compiled code and built-ins
// always go through this rather than asserting on Env directly.
func (c *Closure) EnvPtr() *Env { return c.Env.(*Env) }

// NewClosureOneStack builds a stack-resident continuation closure.
// Caller owns the returned storage until the next GC (spec.md §6).
func NewClosureOneStack(fn OneProc, env *Env) *Closure {
	return &Closure{Header: newHeader(TagClosure, true), Arity: ArityOne, One: fn, Env: env}
}

// NewClosureTwoStack builds a stack-resident user-function closure.
func NewClosureTwoStack(fn TwoProc, env *Env) *Closure {
	return &Closure{Header: newHeader(TagClosure, true), Arity: ArityTwo, Two: fn, Env: env}
}

func NewClosureOneHeap(fn OneProc, env *Env) *Closure {
	return &Closure{Header: newHeader(TagClosure, false), Arity: ArityOne, One: fn, Env: env}
}

func NewClosureTwoHeap(fn TwoProc, env *Env) *Closure {
	return &Closure{Header: newHeader(TagClosure, false), Arity: ArityTwo, Two: fn, Env: env}
}
