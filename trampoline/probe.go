// Package trampoline implements the call/bounce protocol spec.md §4.2
// describes: a stack probe gating a direct vs. indirect call path, and
// a single dispatch loop every bounce re-enters.
package trampoline

import "github.com/simmsb/some-scheme-compiler/diag"

// estimatedFrameBytes approximates the stack cost of one direct-path
// call frame, used to turn a byte-denominated rlimit into a call-depth
// threshold (spec.md §4.2.1a). There is no portable way to measure an
// actual Go frame's size from within the language; this is a tuning
// constant, not a measurement.
const estimatedFrameBytes = 512

// safetyMarginBytes mirrors the original's "safety margin of ~256 KiB"
// (spec.md §4.2.1).
const safetyMarginBytes = 256 * 1024

// fallbackStackLimit is used on platforms without an RLIMIT_STACK
// equivalent (spec.md §4.2.1a's documented platform gap), matching a
// typical default Linux main-thread stack rlimit.
const fallbackStackLimit = 8 * 1024 * 1024

// platformStackLimit is implemented per build tag: probe_unix.go reads
// the real rlimit via golang.org/x/sys/unix; probe_fallback.go backs
// every other GOOS with fallbackStackLimit. Exactly one of those files
// compiles for any given GOOS, so there is exactly one definition.

// Probe tracks call depth on the direct path and decides, at each call
// site, whether to stay direct or fall back to the indirect (heap
// thunk + GC + bounce) path.
type Probe struct {
	depth     int64
	threshold int64
}

// NewProbe derives a call-depth threshold from the host's stack rlimit.
func NewProbe() *Probe {
	limit := platformStackLimit()
	if limit <= safetyMarginBytes {
		diag.Fatal(diag.GCInvariant, "stack rlimit %d is smaller than the safety margin %d", limit, safetyMarginBytes)
	}
	threshold := (limit - safetyMarginBytes) / estimatedFrameBytes
	return &Probe{threshold: int64(threshold)}
}

// Enter records one more direct-path call frame and reports whether
// depth is still within bounds ("above the bound" in spec.md §4.2.1:
// take the direct path). A false result means the caller must take
// the indirect path instead of calling through; Enter rolls its own
// increment back before returning false, since the caller that takes
// the indirect path never pairs this attempt with a Leave() — without
// the rollback, depth would leak by one on every bounce and eventually
// never fall back under threshold again.
func (p *Probe) Enter() bool {
	p.depth++
	if p.depth > p.threshold {
		p.depth--
		return false
	}
	return true
}

// Leave records a direct-path frame unwinding, whether by ordinary
// return or — the only way a direct frame actually unwinds in this
// trampoline — by a bounce panic propagating through its deferred
// call. Depth is back at 0 by the time a bounce reaches dispatchOnce,
// without the dispatch loop needing to reset it explicitly.
func (p *Probe) Leave() {
	if p.depth > 0 {
		p.depth--
	}
}

// Depth reports the current call depth, for tests and tracing.
func (p *Probe) Depth() int64 { return p.depth }

// Threshold reports the configured call-depth threshold.
func (p *Probe) Threshold() int64 { return p.threshold }
