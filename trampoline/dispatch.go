package trampoline

import (
	"github.com/simmsb/some-scheme-compiler/diag"
	"github.com/simmsb/some-scheme-compiler/gc"
	"github.com/simmsb/some-scheme-compiler/value"
)

// bounce is the sentinel panic value a trampoline bounce delivers to
// dispatchOnce (spec.md §9's permitted alternative to setjmp/longjmp: "a
// top-level work-stealing loop"; here, panic/recover rooted at
// dispatchOnce is Go's only non-local-jump-across-frames primitive, and it
// is used for nothing else in this package).
type bounce struct{}

// Dispatcher owns the probe, heap, and trace sink a running program
// shares across every call and bounce (spec.md §4.2.2, §4.2.3: strictly
// single-threaded and cooperative, so none of this needs locking).
type Dispatcher struct {
	probe   *Probe
	heap    *gc.Heap
	tracer  *diag.Tracer
	bounces uint64
	current *Thunk
}

// NewDispatcher builds a Dispatcher over the given heap roster and a
// fresh probe.
func NewDispatcher(heap *gc.Heap, tracer *diag.Tracer) *Dispatcher {
	return &Dispatcher{probe: NewProbe(), heap: heap, tracer: tracer}
}

// Bounces reports how many trampoline bounces have occurred.
func (d *Dispatcher) Bounces() uint64 { return d.bounces }

// Run drives initial to completion (spec.md §4.2.2's scheme_start):
// records the dispatch point, then loops forever re-reading
// d.current on every bounce. The loop itself never returns; a Scheme
// program ends only via the exit built-in terminating the process, or
// via diag.Fatal on a runtime error (spec.md §4.2.3: "no cancellation
// protocol").
func (d *Dispatcher) Run(initial *Thunk) {
	d.current = initial
	for {
		d.dispatchOnce()
	}
}

// dispatchOnce invokes the current thunk directly and recovers the
// bounce panic that an indirect-path call within it will eventually
// raise. A closure returning without bouncing or exiting is a fatal
// FellThrough error (spec.md §4.2.2, step 4: "falling through is a
// fatal error").
func (d *Dispatcher) dispatchOnce() {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, ok := r.(bounce); ok {
			return
		}
		panic(r)
	}()

	th := d.current
	clos, ok := th.Closure.(*value.Closure)
	if !ok {
		diag.Fatal(diag.CorruptTag, "dispatch: current thunk's closure field is not a closure")
	}
	d.invokeDirect(clos, th.Rand, th.Cont)
	diag.Fatal(diag.FellThrough, "closure returned to the dispatch loop instead of bouncing or exiting")
}

// CallOne is the rator-arity-One entry point of spec.md §4.1.2:
// `call(rator, rand)`.
func (d *Dispatcher) CallOne(rator, rand value.Value) {
	clos := requireClosure(rator)
	if clos.Arity != value.ArityOne {
		diag.Fatal(diag.ArityMismatch, "call: expected arity One, got %s", clos.Arity)
	}
	d.dispatchCall(clos, rand, nil)
}

// CallTwo is the rator-arity-Two entry point of spec.md §4.1.2:
// `call(rator, rand, cont)`.
func (d *Dispatcher) CallTwo(rator, rand, cont value.Value) {
	clos := requireClosure(rator)
	if clos.Arity != value.ArityTwo {
		diag.Fatal(diag.ArityMismatch, "call: expected arity Two, got %s", clos.Arity)
	}
	d.dispatchCall(clos, rand, cont)
}

func requireClosure(rator value.Value) *value.Closure {
	clos, ok := rator.(*value.Closure)
	if !ok {
		diag.Fatal(diag.TypeError, "call: rator is not a closure")
	}
	return clos
}

// dispatchCall is the probe gate of spec.md §4.2.1: above the bound,
// invoke directly (relying on the goroutine stack to grow, standing
// in for the original's "host tail-call optimisation is not
// required"); below it, bounce through the heap and a minor GC.
func (d *Dispatcher) dispatchCall(clos *value.Closure, rand, cont value.Value) {
	if !d.probe.Enter() {
		d.tracer.ProbeTrip(int(d.probe.Depth()), int(d.probe.Threshold()))
		d.bounceIndirect(clos, rand, cont)
		return
	}
	defer d.probe.Leave()
	d.invokeDirect(clos, rand, cont)
}

func (d *Dispatcher) invokeDirect(clos *value.Closure, rand, cont value.Value) {
	env := clos.EnvPtr()
	switch clos.Arity {
	case value.ArityOne:
		clos.One(rand, env)
	case value.ArityTwo:
		clos.Two(rand, cont, env)
	default:
		diag.Fatal(diag.CorruptTag, "closure has unrecognised arity %v", clos.Arity)
	}
}

// bounceIndirect implements spec.md §4.2.1's indirect path:
// heap-allocate the thunk, run the minor GC over it, and jump back to
// the dispatch loop.
func (d *Dispatcher) bounceIndirect(clos *value.Closure, rand, cont value.Value) {
	th := &Thunk{Closure: clos, Rand: rand, Cont: cont}

	roots := []gc.Root{th.Root()}
	gc.Run(d.heap, roots, d.tracer)
	th.ApplyRoot(roots[0])

	d.current = th
	d.bounces++
	d.tracer.Bounce(d.bounces, clos.Arity.String())
	panic(bounce{})
}
