package gc

import "github.com/simmsb/some-scheme-compiler/diag"

// Run performs one full GC cycle: a minor evacuation of every
// stack-resident value reachable from roots, followed by a major
// mark-sweep over the resulting all-heap-resident graph (spec.md
// §4.3.1's two-phase design). Callers pass roots by reference (a
// single-element slice addressing the trampoline's live Root) so the
// rewritten Closure/Rand/Cont fields are visible to the caller after
// Run returns.
func Run(h *Heap, roots []Root, tr *diag.Tracer) {
	cycle := h.Cycles()
	evacuated := Minor(h, roots)
	freed := Major(h, roots)
	tr.GCCycle(cycle, evacuated, freed)
}
