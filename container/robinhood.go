package container

// RobinHood is an open-addressing hash table using robin-hood linear
// probing: an insert that finds a richer (shorter probe distance)
// occupant swaps places with it and keeps going, which bounds the
// variance of probe distances across the table. Grounded line-for-
// line on original_source/core/hash_table.h's DEFINE_HASH/MAKE_HASH
// macro pair; K/V are supplied as Go generic parameters in place of
// the macro's per-instantiation code generation (spec.md §4.4
// explicitly permits this).
//
// The caller supplies HashFn (mapped through an internal splitmix64
// finishing mixer and zero-rewrite, exactly as the original's
// __hash_fun/__fix_hash do) and EqFn, so a single implementation can
// back both a pointer-identity-keyed table (the GC's forwarding
// table) and a structural-equality-keyed table (value.HashTable).
type RobinHood[K any, V any] struct {
	elems        []elem[K, V]
	deleted      *BitArray
	numElems     int
	capacity     int
	mask         uint64
	resizeThresh int

	hashFn func(K) uint64
	eqFn   func(K, K) bool
}

type elem[K any, V any] struct {
	hash uint64
	key  K
	val  V
}

const initialCap = 64
const loadFactorPercent = 90

// New constructs an empty RobinHood table. hashFn need not itself be
// well-mixed or avoid zero; both are handled internally.
func New[K any, V any](hashFn func(K) uint64, eqFn func(K, K) bool) *RobinHood[K, V] {
	t := &RobinHood[K, V]{hashFn: hashFn, eqFn: eqFn}
	t.construct(initialCap)
	return t
}

func (t *RobinHood[K, V]) construct(newCap int) {
	t.elems = make([]elem[K, V], newCap)
	t.deleted = NewBitArray(newCap)
	t.numElems = 0
	t.capacity = newCap
	t.mask = uint64(newCap - 1)
	t.resizeThresh = (newCap * loadFactorPercent) / 100
}

func (t *RobinHood[K, V]) Len() int { return t.numElems }

func mixHash(k uint64) uint64 {
	k = ((k >> 30) ^ k) * 0xbf58476d1ce4e5b9
	k = ((k >> 27) ^ k) * 0x94d049bb133111eb
	k = (k >> 31) ^ k
	if k == 0 {
		return 1
	}
	return k
}

func (t *RobinHood[K, V]) hashIdx(hash uint64) uint64 { return hash & t.mask }

func (t *RobinHood[K, V]) maxProbes(hash uint64, idx uint64) uint64 {
	return (uint64(t.capacity) + idx - t.hashIdx(hash)) & t.mask
}

// Insert stores k -> v, overwriting any existing binding for an
// equal key.
func (t *RobinHood[K, V]) Insert(k K, v V) {
	if idx, found := t.lookupIdx(k); found {
		t.elems[idx].val = v
		return
	}

	hash := mixHash(t.hashFn(k))
	t.numElems++
	if t.numElems >= t.resizeThresh {
		t.grow()
	}
	t.insertElem(elem[K, V]{hash: hash, key: k, val: v})
}

func (t *RobinHood[K, V]) insertElem(e elem[K, V]) {
	idx := t.hashIdx(e.hash)
	probes := uint64(0)

	for {
		if t.elems[idx].hash == 0 {
			t.elems[idx] = e
			return
		}

		if t.deleted.Get(int(idx)) && t.maxProbes(t.elems[idx].hash, idx) <= probes {
			t.deleted.Set(int(idx), false)
			t.elems[idx] = e
			return
		}

		currentProbes := t.maxProbes(t.elems[idx].hash, idx)
		if currentProbes < probes {
			e, t.elems[idx] = t.elems[idx], e
			probes = currentProbes
		}

		idx = (idx + 1) & t.mask
		probes++
	}
}

// lookupIdx returns the slot index for an equal live key, if any,
// comparing both the fast-path mixed hash and the caller's equality
// function (to resolve hash collisions, which a raw index-only
// original never needed since its keys were already integers).
func (t *RobinHood[K, V]) lookupIdx(k K) (uint64, bool) {
	hash := mixHash(t.hashFn(k))
	idx := t.hashIdx(hash)
	probes := uint64(0)

	for {
		current := t.elems[idx]
		if current.hash == 0 {
			return 0, false
		}
		if probes > t.maxProbes(current.hash, idx) {
			return 0, false
		}
		if !t.deleted.Get(int(idx)) && current.hash == hash && t.eqFn(current.key, k) {
			return idx, true
		}
		idx = (idx + 1) & t.mask
		probes++
	}
}

// Lookup returns the value bound to k, if present.
func (t *RobinHood[K, V]) Lookup(k K) (V, bool) {
	idx, found := t.lookupIdx(k)
	if !found {
		var zero V
		return zero, false
	}
	return t.elems[idx].val, true
}

// Delete tombstones the entry for k, if present, and reports whether
// anything was removed.
func (t *RobinHood[K, V]) Delete(k K) bool {
	idx, found := t.lookupIdx(k)
	if !found {
		return false
	}
	t.deleted.Set(int(idx), true)
	t.numElems--
	return true
}

// Clear removes every entry, reusing the existing backing array.
func (t *RobinHood[K, V]) Clear() {
	for i := range t.elems {
		t.elems[i] = elem[K, V]{}
	}
	t.deleted.Clear()
	t.numElems = 0
}

func (t *RobinHood[K, V]) grow() {
	old := t.elems
	oldDeleted := t.deleted
	oldCap := t.capacity
	liveCount := t.numElems

	t.construct(oldCap * 2)

	for i := 0; i < oldCap; i++ {
		e := old[i]
		if e.hash != 0 && !oldDeleted.Get(i) {
			t.insertElem(e)
		}
	}
	t.numElems = liveCount
}

// Each calls fn for every live key/value pair, in table-slot order.
func (t *RobinHood[K, V]) Each(fn func(k K, v V)) {
	for i := 0; i < t.capacity; i++ {
		e := t.elems[i]
		if e.hash != 0 && !t.deleted.Get(i) {
			fn(e.key, e.val)
		}
	}
}

// EachPtr calls fn with addressable pointers into the live backing
// slots, letting a caller (the GC evacuator) rewrite a key or value
// in place after relocating the object it points to, without
// disturbing the stored hash or probe position. Valid only when the
// caller does not insert/grow the table concurrently with iteration.
func (t *RobinHood[K, V]) EachPtr(fn func(key *K, val *V)) {
	for i := 0; i < t.capacity; i++ {
		if t.elems[i].hash != 0 && !t.deleted.Get(i) {
			fn(&t.elems[i].key, &t.elems[i].val)
		}
	}
}
