package container

import "testing"

func TestVectorPushIndexPop(t *testing.T) {
	v := NewVector[int](0)
	for i := 0; i < 10; i++ {
		idx := v.Push(i)
		if idx != i {
			t.Fatalf("expected push index %d, got %d", i, idx)
		}
	}
	if v.Len() != 10 {
		t.Fatalf("expected length 10, got %d", v.Len())
	}
	for i := 0; i < 10; i++ {
		if v.Index(i) != i {
			t.Fatalf("expected v[%d] == %d, got %d", i, i, v.Index(i))
		}
	}
	last := v.Pop()
	if last != 9 {
		t.Fatalf("expected pop 9, got %d", last)
	}
	if v.Len() != 9 {
		t.Fatalf("expected length 9 after pop, got %d", v.Len())
	}
}

func TestVectorRemoveShiftsTail(t *testing.T) {
	v := NewVector[int](0)
	for i := 0; i < 5; i++ {
		v.Push(i)
	}
	v.Remove(2)
	want := []int{0, 1, 3, 4}
	if v.Len() != len(want) {
		t.Fatalf("expected length %d, got %d", len(want), v.Len())
	}
	for i, w := range want {
		if v.Index(i) != w {
			t.Fatalf("index %d: expected %d, got %d", i, w, v.Index(i))
		}
	}
}

func TestVectorShrinkToFit(t *testing.T) {
	v := NewVector[int](100)
	v.Push(1)
	v.ShrinkToFit()
	if v.Cap() != 1 {
		t.Fatalf("expected shrunk capacity 1, got %d", v.Cap())
	}
}

func TestVectorPopEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic popping an empty vector")
		}
	}()
	NewVector[int](0).Pop()
}
