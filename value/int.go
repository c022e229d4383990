package value

// Int is a 64-bit signed integer payload (spec.md §3.1).
type Int struct {
	Header
	Val int64
}

func (i *Int) Hdr() *Header { return &i.Header }

// NewIntStack constructs a stack-resident Int, the form compiled call
// sites use.
func NewIntStack(n int64) *Int {
	return &Int{Header: newHeader(TagInt, true), Val: n}
}

// NewIntHeap constructs a heap-resident Int directly, used by the
// evacuator and by built-ins that allocate persistently.
func NewIntHeap(n int64) *Int {
	return &Int{Header: newHeader(TagInt, false), Val: n}
}
