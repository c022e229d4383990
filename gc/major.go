package gc

import (
	"github.com/simmsb/some-scheme-compiler/container"
	"github.com/simmsb/some-scheme-compiler/diag"
	"github.com/simmsb/some-scheme-compiler/value"
)

type greyQueue = container.Queue[value.Value]

func newGreyQueue() *greyQueue { return container.NewQueue[value.Value](64) }

// Major runs one major-phase mark-sweep collection over the entire
// heap roster (spec.md §4.3.3). Run calls Minor first so that by the
// time Major runs, roots already point at heap-resident copies.
// Major returns the number of roster entries freed this cycle.
func Major(h *Heap, roots []Root) int {
	mc := &markContext{grey: newGreyQueue()}

	markRoot := func(v value.Value) {
		if v == nil {
			return
		}
		v.Hdr().Mark = value.Black
		opsTable[v.Hdr().Tag].mark(v, mc)
	}
	for i := range roots {
		r := &roots[i]
		markRoot(r.Closure)
		markRoot(r.Rand)
		markRoot(r.Cont)
	}

	for !mc.grey.Empty() {
		v := mc.grey.Dequeue()
		v.Hdr().Mark = value.Black
		opsTable[v.Hdr().Tag].mark(v, mc)
	}

	freed := sweep(h)
	h.cycles++
	return freed
}

// sweep walks the roster once: White entries are unreachable and are
// freed and nil'd out; Black entries survive and are reset to White
// for the next cycle; a Grey entry found here is a collector bug
// (spec.md invariant 2, "no value is left Grey between cycles").
// After freeing, the roster is compacted in place and shrunk when the
// live count falls to at most half its previous length, mirroring the
// original's realloc-down-on-low-occupancy heap compaction.
func sweep(h *Heap) int {
	originalLen := h.roster.Len()
	live := 0
	freed := 0

	for i := 0; i < h.roster.Len(); i++ {
		v := h.roster.Index(i)
		if v == nil {
			continue
		}
		switch v.Hdr().Mark {
		case value.White:
			opsTable[v.Hdr().Tag].free(v)
			h.roster.Set(i, nil)
			freed++
		case value.Grey:
			diag.Fatal(diag.GCInvariant, "sweep found a Grey value: %s", value.DebugString(v))
		case value.Black:
			v.Hdr().Mark = value.White
			if live != i {
				h.roster.Set(live, v)
				h.roster.Set(i, nil)
			}
			live++
		}
	}

	h.roster.Truncate(live)
	if live <= originalLen/2 {
		h.roster.ShrinkToFit()
	}
	return freed
}
