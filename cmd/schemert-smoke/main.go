// Command schemert-smoke is a tiny hand-assembled CPS program, the
// kind a real compiler for this language would emit, exercising the
// value model, trampoline, built-ins, and GC together end to end.
// There is no compiler in this repo (spec.md §1's explicit Non-goal);
// this program is wired by hand the way a compiler's output would be.
//
// It computes (roughly) a tail-recursive sum of 1..n via a self
// tail-calling continuation, printing the result with display, then
// exits.
package main

import (
	"os"
	"strconv"

	"github.com/simmsb/some-scheme-compiler/builtin"
	"github.com/simmsb/some-scheme-compiler/diag"
	"github.com/simmsb/some-scheme-compiler/gc"
	"github.com/simmsb/some-scheme-compiler/trampoline"
	"github.com/simmsb/some-scheme-compiler/value"
)

func main() {
	n := int64(100000)
	if len(os.Args) > 1 {
		if parsed, err := strconv.ParseInt(os.Args[1], 10, 64); err == nil {
			n = parsed
		}
	}

	heap := gc.NewHeap()
	tracer := diag.NewTracer()
	d := trampoline.NewDispatcher(heap, tracer)
	reg := builtin.NewRegistry(d, heap)
	display := reg.Display()
	exit := reg.Exit()

	// loop(i, acc): if i > n, display(acc) and exit; else loop(i+1, acc+i).
	sumEnv := value.NewEnvStack(3)
	accCell := value.NewCellStack(value.NewIntStack(0))
	sumEnv.SetSlot(0, accCell)
	sumEnv.SetSlot(1, value.NewIntStack(n))

	var loop *value.Closure
	loop = value.NewClosureOneStack(func(i value.Value, env *value.Env) {
		acc := env.Get(0).(*value.Cell)
		limit := env.Get(1).(*value.Int)
		self := env.Get(2).(*value.Closure)

		iv := i.(*value.Int).Val
		if iv > limit.Val {
			finish := value.NewClosureOneStack(func(value.Value, *value.Env) {
				d.CallTwo(exit, value.NewIntStack(0), nil)
			}, value.NewEnvStack(0))
			d.CallTwo(display, acc.Interior, finish)
			return
		}

		acc.Set(value.NewIntStack(acc.Interior.(*value.Int).Val + iv))
		d.CallOne(self, value.NewIntStack(iv+1))
	}, sumEnv)
	sumEnv.SetSlot(2, loop)

	initial := &trampoline.Thunk{Closure: loop, Rand: value.NewIntStack(1)}
	d.Run(initial)
}
