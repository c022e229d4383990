package value

import "github.com/simmsb/some-scheme-compiler/diag"

// Hash computes the structural hash of v per spec.md §4.1.4: Int
// hashes its payload, Str hashes its bytes, Cons combines car/cdr with
// a multiplicative mixer, Cell delegates to its interior, HashTable
// folds every key/value order-independently. Hashing an unsupported
// tag (currently: Closure, Env) is a fatal Unhashable error.
//
// The mixer is the same splitmix64-style multiply-xor-shift used by
// the robin-hood table's internal probe hash (grounded on
// original_source/core/hash_table.h's __hash_fun), which is also in
// the spirit of the FNV-1a offset/prime mixing the teacher's
// hash/fnv package uses for byte streams.
func Hash(v Value) uint64 {
	if v == nil {
		return fixZero(mix(0))
	}
	switch x := v.(type) {
	case *Int:
		return fixZero(mix(uint64(x.Val)))
	case *Str:
		return fixZero(hashBytes(x.Bytes))
	case *Cons:
		carH := uint64(0)
		if x.Car != nil {
			carH = Hash(x.Car)
		}
		cdrH := uint64(0)
		if x.Cdr != nil {
			cdrH = Hash(x.Cdr)
		}
		return fixZero(mix(carH ^ mix(cdrH)))
	case *Cell:
		if x.Interior == nil {
			return fixZero(mix(0))
		}
		return Hash(x.Interior)
	case *HashTable:
		var acc uint64
		x.Table.Each(func(k, val Value) {
			// order-independent combine: plain XOR-fold of each
			// key/value hash pair.
			acc ^= Hash(k) ^ mix(Hash(val))
		})
		return fixZero(acc)
	default:
		diag.Fatal(diag.Unhashable, "value of tag %v is not hashable", v.Hdr().Tag)
		panic("unreachable")
	}
}

// mix is the splitmix64 finishing mixer.
func mix(k uint64) uint64 {
	k = ((k >> 30) ^ k) * 0xbf58476d1ce4e5b9
	k = ((k >> 27) ^ k) * 0x94d049bb133111eb
	k = (k >> 31) ^ k
	return k
}

// fixZero rewrites a zero mixed output to 1, matching the robin-hood
// table's convention that a zero hash marks an empty slot
// (original_source/core/hash_table.h's __fix_hash).
func fixZero(h uint64) uint64 {
	if h == 0 {
		return 1
	}
	return h
}

func hashBytes(b []byte) uint64 {
	const offset64 = 14695981039346656037
	const prime64 = 1099511628211
	h := uint64(offset64)
	for _, c := range b {
		h ^= uint64(c)
		h *= prime64
	}
	return h
}

// Equal implements structural equality per spec.md §4.1.4.
func Equal(a, b Value) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Hdr().Tag != b.Hdr().Tag {
		return false
	}
	switch x := a.(type) {
	case *Int:
		return x.Val == b.(*Int).Val
	case *Str:
		y := b.(*Str)
		if len(x.Bytes) != len(y.Bytes) {
			return false
		}
		for i := range x.Bytes {
			if x.Bytes[i] != y.Bytes[i] {
				return false
			}
		}
		return true
	case *Cons:
		y := b.(*Cons)
		return Equal(x.Car, y.Car) && Equal(x.Cdr, y.Cdr)
	case *Cell:
		y := b.(*Cell)
		return Equal(x.Interior, y.Interior)
	case *HashTable:
		y := b.(*HashTable)
		return hashTablesEqual(x, y)
	default:
		// Closure, Env: identity only, never structurally equal
		// across distinct allocations.
		return a == b
	}
}

// hashTablesEqual checks both tables as bijective multimaps of keys
// and values, in both directions, per spec.md §4.1.4.
func hashTablesEqual(a, b *HashTable) bool {
	if a.Table.Len() != b.Table.Len() {
		return false
	}
	ok := true
	a.Table.Each(func(k, av Value) {
		if !ok {
			return
		}
		bv, found := b.Table.Lookup(k)
		if !found || !Equal(av, bv) {
			ok = false
		}
	})
	if !ok {
		return false
	}
	b.Table.Each(func(k, bv Value) {
		if !ok {
			return
		}
		av, found := a.Table.Lookup(k)
		if !found || !Equal(av, bv) {
			ok = false
		}
	})
	return ok
}
