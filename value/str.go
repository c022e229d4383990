package value

// Str is an immutable length-prefixed byte buffer (spec.md §3.1).
// Unlike the C original it needs no explicit null terminator; Go
// slices already carry their length.
type Str struct {
	Header
	Bytes []byte
}

func (s *Str) Hdr() *Header { return &s.Header }

// NewStrStack constructs a stack-resident Str. The byte slice is
// copied so later mutation of the caller's buffer can't violate
// Str's immutability.
func NewStrStack(b []byte) *Str {
	cp := append([]byte(nil), b...)
	return &Str{Header: newHeader(TagStr, true), Bytes: cp}
}

// NewStrHeap constructs a heap-resident Str directly.
func NewStrHeap(b []byte) *Str {
	cp := append([]byte(nil), b...)
	return &Str{Header: newHeader(TagStr, false), Bytes: cp}
}
