package value

// Cons is a pair of references; either may be nil, denoting the
// empty list (spec.md §3.1).
type Cons struct {
	Header
	Car Value
	Cdr Value
}

func (c *Cons) Hdr() *Header { return &c.Header }

func NewConsStack(car, cdr Value) *Cons {
	return &Cons{Header: newHeader(TagCons, true), Car: car, Cdr: cdr}
}

func NewConsHeap(car, cdr Value) *Cons {
	return &Cons{Header: newHeader(TagCons, false), Car: car, Cdr: cdr}
}
