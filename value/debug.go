package value

import (
	"fmt"
	"strings"

	"github.com/simmsb/some-scheme-compiler/diag"
)

// maxDisplayCols bounds how much of a Str payload a diagnostic line
// shows before truncating (spec.md §8a).
const maxDisplayCols = 120

// DebugString renders v for display and for fatal diagnostics that
// need to show a misbehaving value. It is never used by equal?/hash
// and carries no semantic weight.
func DebugString(v Value) string {
	if v == nil {
		return "()"
	}
	switch x := v.(type) {
	case *Int:
		return fmt.Sprintf("%d", x.Val)
	case *Str:
		return "\"" + diag.TruncateDisplay(x.Bytes, maxDisplayCols) + "\""
	case *Cons:
		return debugCons(x)
	case *Cell:
		return "#<cell " + DebugString(x.Interior) + ">"
	case *Closure:
		return fmt.Sprintf("#<closure arity=%s>", x.Arity)
	case *Env:
		return fmt.Sprintf("#<env len=%d>", len(x.Slots))
	case *HashTable:
		return fmt.Sprintf("#<hash-table len=%d>", x.Len())
	default:
		return "#<corrupt>"
	}
}

func debugCons(c *Cons) string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(DebugString(c.Car))
	cur := c.Cdr
	for {
		switch x := cur.(type) {
		case nil:
			b.WriteByte(')')
			return b.String()
		case *Cons:
			b.WriteByte(' ')
			b.WriteString(DebugString(x.Car))
			cur = x.Cdr
		default:
			b.WriteString(" . ")
			b.WriteString(DebugString(cur))
			b.WriteByte(')')
			return b.String()
		}
	}
}
