package gc

import (
	"github.com/simmsb/some-scheme-compiler/container"
	"github.com/simmsb/some-scheme-compiler/value"
)

// forwardingTable maps an original stack object's address to the
// heap-resident copy it was evacuated to, so a second reference to the
// same stack object resolves to the same heap copy rather than
// duplicating it (spec.md §4.3.2).
type forwardingTable = container.RobinHood[uintptr, value.Value]

func newForwardingTable() *forwardingTable {
	return container.New[uintptr, value.Value](identityHash, addrEqual)
}

func identityHash(a uintptr) uint64 { return uint64(a) }
func addrEqual(a, b uintptr) bool   { return a == b }

// updateRequest records that *slot, which currently holds original,
// must be rewritten to original's evacuated counterpart once that
// counterpart exists (spec.md §4.3.2's "{slot_to_fix, original_pointer}
// pairs").
type updateRequest struct {
	slot     *value.Value
	original value.Value
}

type updateQueue = container.Queue[updateRequest]

func newUpdateQueue() *updateQueue {
	return container.NewQueue[updateRequest](64)
}

// Root names one of the thunk's GC roots (spec.md §4.1.3): the next
// closure to invoke, its argument, its continuation (when present),
// and the live environment chain reachable from it are exactly what a
// minor collection must keep. Closure is typed as value.Value
// (dynamically always *value.Closure) for the same reason
// Closure.Env is: it gives Minor one uniform way to take the address
// of every root slot.
type Root struct {
	Closure value.Value
	Rand    value.Value
	Cont    value.Value
}

// ClosurePtr recovers the root's closure.
func (r *Root) ClosurePtr() *value.Closure { return r.Closure.(*value.Closure) }

// Minor runs one minor-phase collection: every stack-resident value
// reachable from roots is evacuated to the heap, and every pointer
// into the moved set — including the roots themselves — is rewritten
// to the heap copy. Already heap-resident values are left untouched
// and not retraced (spec.md §4.3.2, §4.3.4 "heap objects are never
// rescanned by the minor phase").
// Minor returns the number of distinct objects evacuated, for
// diagnostics.
func Minor(h *Heap, roots []Root) int {
	ec := &evacContext{forwarding: newForwardingTable(), updates: newUpdateQueue()}

	fix := func(slot *value.Value) {
		original := *slot
		if original == nil {
			return
		}
		evacuateOne(h, ec, slot, original)
	}

	for i := range roots {
		r := &roots[i]
		fix(&r.Closure)
		fix(&r.Rand)
		fix(&r.Cont)
	}

	drainUpdates(h, ec)
	return ec.forwarding.Len()
}

// evacuateOne copies original to the heap if necessary (memoised via
// the forwarding table so repeat references share one copy), records
// it in the roster, rewrites *slot, and enqueues its own outgoing
// references for later rewriting.
func evacuateOne(h *Heap, ec *evacContext, slot *value.Value, original value.Value) {
	if !original.Hdr().OnStack {
		*slot = original
		return
	}

	addr := value.Addr(original)
	if copyV, ok := ec.forwarding.Lookup(addr); ok {
		*slot = copyV
		return
	}

	copyV := opsTable[original.Hdr().Tag].toHeap(original, ec)
	ec.forwarding.Insert(addr, copyV)
	h.Track(copyV)
	*slot = copyV
}

// drainUpdates processes the FIFO pointer-update queue breadth-first
// until empty, resolving each pending slot against the forwarding
// table and evacuating not-yet-seen originals as they're discovered
// (spec.md §4.3.2's queue-driven rewrite pass).
func drainUpdates(h *Heap, ec *evacContext) {
	for ec.updates.Len() > 0 {
		req := ec.updates.Dequeue()
		evacuateOne(h, ec, req.slot, req.original)
	}
}
