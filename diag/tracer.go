package diag

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// Tracer emits opt-in progress logging for GC cycles and trampoline
// bounces (spec.md §7b, §9's design note on observing bounce counts
// for testable property S1). It is off unless SCHEME_TRACE is set in
// the environment, matching the GODEBUG opt-in idiom the teacher's
// runtime/extern.go documents. Enabling it does not turn on debug
// breadcrumb collection; that is controlled separately by value.Trace.
type Tracer struct {
	enabled bool
	color   bool
}

// NewTracer builds a Tracer reading SCHEME_TRACE from the process
// environment.
func NewTracer() *Tracer {
	_, enabled := os.LookupEnv("SCHEME_TRACE")
	return &Tracer{
		enabled: enabled,
		color:   enabled && term.IsTerminal(int(os.Stderr.Fd())),
	}
}

func (t *Tracer) Enabled() bool { return t.enabled }

// Bounce logs a single trampoline bounce, with the thunk's arity.
func (t *Tracer) Bounce(n uint64, arity string) {
	if !t.enabled {
		return
	}
	t.logf("bounce", "#%d arity=%s", n, arity)
}

// GCCycle logs the boundary of a completed minor+major GC cycle.
func (t *Tracer) GCCycle(n uint64, evacuated, freed int) {
	if !t.enabled {
		return
	}
	t.logf("gc", "cycle #%d evacuated=%d freed=%d", n, evacuated, freed)
}

// ProbeTrip logs a stack-probe trip into the indirect path.
func (t *Tracer) ProbeTrip(depth, threshold int) {
	if !t.enabled {
		return
	}
	t.logf("probe", "trip depth=%d threshold=%d", depth, threshold)
}

func (t *Tracer) logf(tag, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if t.color {
		logger.Printf("\x1b[36m[%s]\x1b[0m %s", tag, msg)
		return
	}
	logger.Printf("[%s] %s", tag, msg)
}
