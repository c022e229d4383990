// Package gc implements the two-phase collector spec.md §4.3
// describes: a minor phase that evacuates every stack-resident value
// reachable from the current thunk's roots into the heap, followed by
// a major mark-sweep over everything now heap-resident.
package gc

import (
	"github.com/simmsb/some-scheme-compiler/container"
	"github.com/simmsb/some-scheme-compiler/value"
)

// Heap is the global heap roster (spec.md §3.2's "global heap
// roster (a vector of pointers)"). Every heap allocation used by
// built-ins or by the evacuator is registered here at creation; sweep
// is the only place anything is freed.
type Heap struct {
	roster *container.Vector[value.Value]
	cycles uint64
}

func NewHeap() *Heap {
	return &Heap{roster: container.NewVector[value.Value](256)}
}

// Track registers a freshly heap-allocated value in the roster. This
// is the Go analogue of gc_malloc appending the allocator's result to
// the roster — Go's own allocator stands in for the host malloc the
// original wraps (spec.md §4.3.4).
func (h *Heap) Track(v value.Value) value.Value {
	h.roster.Push(v)
	return v
}

// Len reports the number of tracked slots, including any nil slots
// left by a sweep that hasn't compacted yet.
func (h *Heap) Len() int { return h.roster.Len() }

// Cycles reports how many full GC cycles (Run calls) have completed.
func (h *Heap) Cycles() uint64 { return h.cycles }

// counts returns, per tag, how many live (non-nil) roster entries
// currently exist — used by the pprof profile export (spec.md
// §4.3.7).
func (h *Heap) counts() map[value.Tag]int {
	out := make(map[value.Tag]int)
	h.roster.Each(func(_ int, v value.Value) {
		if v == nil {
			return
		}
		out[v.Hdr().Tag]++
	})
	return out
}
