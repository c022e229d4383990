package value

import "golang.org/x/crypto/blake2b"

// Interner deduplicates heap Str allocations by content fingerprint
// (spec.md §4.1.4a, an expansion over original_source, which always
// allocates a fresh Str on every string-producing built-in call). It
// holds only already-heap-resident Strs: callers are responsible for
// registering a freshly-heap-allocated Str with the GC roster before
// (or as part of) calling Intern, exactly as for any other
// gc_malloc'd value.
//
// The fingerprint key is a fixed-size content hash compared with
// ordinary Go map equality; there's no probing or tombstoning
// concern here; the structural-hash/equality machinery
// container.RobinHood exists for a different instantiation of this
// table would add (value.Hash/Equal's general multi-tag dispatch).
// A plain map is the right tool.
type Interner struct {
	byFingerprint map[[16]byte]*Str
}

func NewInterner() *Interner {
	return &Interner{byFingerprint: make(map[[16]byte]*Str)}
}

func fingerprint(b []byte) [16]byte {
	full := blake2b.Sum256(b)
	var out [16]byte
	copy(out[:], full[:16])
	return out
}

// Intern returns an existing heap Str with the same byte payload as
// candidate, if one has been interned before; otherwise it records
// candidate as the canonical representative and returns it unchanged.
// candidate must already satisfy !OnStack.
func (in *Interner) Intern(candidate *Str) *Str {
	if candidate.OnStack {
		panic("value: Intern requires a heap-resident Str")
	}
	fp := fingerprint(candidate.Bytes)
	if existing, ok := in.byFingerprint[fp]; ok {
		return existing
	}
	in.byFingerprint[fp] = candidate
	return candidate
}

// Forget removes the interning entry for b's content. The GC sweep
// does not call it: an interned Str that sweep drops from the roster
// stays in this table until Forget is called for its content.
func (in *Interner) Forget(b []byte) {
	delete(in.byFingerprint, fingerprint(b))
}
