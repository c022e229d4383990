package trampoline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/simmsb/some-scheme-compiler/diag"
	"github.com/simmsb/some-scheme-compiler/gc"
	"github.com/simmsb/some-scheme-compiler/value"
)

// loopDone is how the S1 test's loop closure signals completion back
// out of Dispatcher.Run, which otherwise never returns (spec.md
// §4.2.2: a Scheme program only ends via exit or a fatal error).
type loopDone struct{ finalCount int64 }

// runUntilDone drives d.Run(initial) and recovers the loopDone panic
// the test's own closure raises when finished, failing the test on
// anything else unexpected.
func runUntilDone(t *testing.T, d *Dispatcher, initial *Thunk) loopDone {
	t.Helper()
	var result loopDone
	func() {
		defer func() {
			r := recover()
			ld, ok := r.(loopDone)
			if !ok {
				t.Fatalf("unexpected panic from dispatch loop: %v", r)
			}
			result = ld
		}()
		d.Run(initial)
	}()
	return result
}

// S1 (spec.md §8): a loop continuation that increments a Cell and
// self-tail-calls 10^6 times ends with the Cell holding 10^6, at
// least one bounce having occurred, and no host stack overflow (the
// probe forces periodic bounces well before any real depth limit).
func TestTrampolineBounceLoop(t *testing.T) {
	const iterations = 1_000_000

	heap := gc.NewHeap()
	d := NewDispatcher(heap, diag.NewTracer())

	cell := value.NewCellStack(value.NewIntStack(0))
	selfEnv := value.NewEnvStack(2)
	selfEnv.SetSlot(0, cell)

	var loop *value.Closure
	loop = value.NewClosureOneStack(func(rand value.Value, env *value.Env) {
		c := env.Get(0).(*value.Cell)
		cur := c.Interior.(*value.Int).Val
		next := cur + 1
		c.Set(value.NewIntStack(next))

		remaining := rand.(*value.Int).Val
		if remaining == 0 {
			panic(loopDone{finalCount: next})
		}
		self := env.Get(1).(*value.Closure)
		d.CallOne(self, value.NewIntStack(remaining-1))
	}, selfEnv)
	selfEnv.SetSlot(1, loop)

	initial := &Thunk{Closure: loop, Rand: value.NewIntStack(iterations - 1)}
	result := runUntilDone(t, d, initial)

	if result.finalCount != iterations {
		t.Fatalf("expected cell to reach %d, got %d", iterations, result.finalCount)
	}
	if d.Bounces() == 0 {
		t.Fatal("expected at least one trampoline bounce over a million-iteration loop")
	}
}

// A failing Enter() must roll back its own depth increment: the
// bounce path never calls Leave() to balance it, so a leaked +1 would
// permanently raise the floor after enough bounces and eventually
// defeat the direct-call path for good.
func TestProbeEnterRollsBackOnFailure(t *testing.T) {
	p := &Probe{threshold: 2}

	if !p.Enter() || p.Depth() != 1 {
		t.Fatalf("expected first Enter to succeed at depth 1, got depth %d", p.Depth())
	}
	if !p.Enter() || p.Depth() != 2 {
		t.Fatalf("expected second Enter to succeed at depth 2, got depth %d", p.Depth())
	}
	if p.Enter() {
		t.Fatal("expected third Enter to fail at the threshold")
	}
	if p.Depth() != 2 {
		t.Fatalf("expected failed Enter to roll back to depth 2, got depth %d", p.Depth())
	}

	// Repeated failing Enter calls (every subsequent bounce attempt)
	// must never push depth past threshold.
	for i := 0; i < 5; i++ {
		if p.Enter() {
			t.Fatal("expected Enter to keep failing at the threshold")
		}
		if p.Depth() != 2 {
			t.Fatalf("depth leaked across repeated failing Enter calls: got %d", p.Depth())
		}
	}

	p.Leave()
	if p.Depth() != 1 {
		t.Fatalf("expected Leave to drop depth to 1, got %d", p.Depth())
	}
	if !p.Enter() || p.Depth() != 2 {
		t.Fatalf("expected direct path to be available again after Leave, got depth %d", p.Depth())
	}
}

// A bounce logs a probe trip via Tracer.ProbeTrip right before the
// bounce itself, when tracing is enabled. The trip only occurs on a
// call nested inside another direct-path call (depth actually
// exceeding threshold), so the inner call is made from within the
// outer closure's own body rather than as a second top-level call.
func TestDispatcherLogsProbeTripOnBounce(t *testing.T) {
	t.Setenv("SCHEME_TRACE", "1")

	var logBuf bytes.Buffer
	restoreOutput := diag.SetOutput(&logBuf)
	defer restoreOutput()

	heap := gc.NewHeap()
	d := &Dispatcher{probe: &Probe{threshold: 1}, heap: heap, tracer: diag.NewTracer()}

	env := value.NewEnvStack(0)
	inner := value.NewClosureOneStack(func(value.Value, *value.Env) {}, env)
	outer := value.NewClosureOneStack(func(value.Value, *value.Env) {
		d.CallOne(inner, nil)
	}, env)

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(bounce); !ok {
					t.Fatalf("expected a bounce panic, got: %v", r)
				}
			}
		}()
		d.dispatchCall(outer, nil, nil)
	}()

	if !strings.Contains(logBuf.String(), "probe") {
		t.Fatalf("expected a probe trip to be logged once threshold was exceeded, got: %s", logBuf.String())
	}
}

// fatalStop is what the test's overridden diag exiter panics with, so
// the test can observe a diag.Fatal call without killing the test
// binary via the real os.Exit.
type fatalStop struct{}

// S6 (spec.md §8): calling a One-closure through CallTwo is an arity
// mismatch and aborts the process via diag.Fatal(ArityMismatch, ...).
func TestCallArityMismatchAborts(t *testing.T) {
	var logBuf bytes.Buffer
	restoreOutput := diag.SetOutput(&logBuf)
	defer restoreOutput()

	exited := false
	restoreExiter := diag.SetExiter(func(code int) {
		exited = true
		panic(fatalStop{})
	})
	defer restoreExiter()

	heap := gc.NewHeap()
	d := NewDispatcher(heap, diag.NewTracer())

	env := value.NewEnvStack(0)
	oneClos := value.NewClosureOneStack(func(value.Value, *value.Env) {}, env)

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(fatalStop); !ok {
					panic(r)
				}
			}
		}()
		d.CallTwo(oneClos, value.NewIntStack(1), value.NewIntStack(2))
	}()

	if !exited {
		t.Fatal("expected calling a One-closure as Two to abort via diag.Fatal")
	}
	if !strings.Contains(logBuf.String(), diag.ArityMismatch.String()) {
		t.Fatalf("expected fatal diagnostic to mention ArityMismatch, got: %s", logBuf.String())
	}
}

// The inverse mismatch (calling a Two-closure through CallOne) aborts
// the same way, confirming spec.md §9 Open Question 1's resolution:
// CallOne requires arity One, CallTwo requires arity Two, not the
// inverted check the original source had.
func TestCallTwoClosureThroughCallOneAborts(t *testing.T) {
	var logBuf bytes.Buffer
	restoreOutput := diag.SetOutput(&logBuf)
	defer restoreOutput()

	exited := false
	restoreExiter := diag.SetExiter(func(code int) {
		exited = true
		panic(fatalStop{})
	})
	defer restoreExiter()

	heap := gc.NewHeap()
	d := NewDispatcher(heap, diag.NewTracer())

	env := value.NewEnvStack(0)
	twoClos := value.NewClosureTwoStack(func(value.Value, value.Value, *value.Env) {}, env)

	func() {
		defer func() {
			if r := recover(); r != nil {
				if _, ok := r.(fatalStop); !ok {
					panic(r)
				}
			}
		}()
		d.CallOne(twoClos, value.NewIntStack(1))
	}()

	if !exited {
		t.Fatal("expected calling a Two-closure as One to abort via diag.Fatal")
	}
}
