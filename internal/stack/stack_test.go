package stack

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStack_PushAndPop(t *testing.T) {
	s := NewWithCapacity[string](2)
	s.Push("$", "store")
	s.Push("book")

	if got := s.Size(); got != 3 {
		t.Fatalf("Size() = %d, want 3", got)
	}

	for _, want := range []string{"book", "store", "$"} {
		got, ok := s.Pop()
		if !ok || got != want {
			t.Errorf("Pop() = %q, %t, want %q, true", got, ok, want)
		}
	}

	if got, ok := s.Pop(); ok || got != "" {
		t.Errorf("Pop() on empty stack = %q, %t, want \"\", false", got, ok)
	}
}

func TestStack_Peek(t *testing.T) {
	s := NewWithCapacity[int](0)

	if _, ok := s.Peek(); ok {
		t.Error("Peek() on empty stack should report false")
	}

	s.Push(1, 2)
	if got, ok := s.Peek(); !ok || got != 2 {
		t.Errorf("Peek() = %d, %t, want 2, true", got, ok)
	}
	if got := s.Size(); got != 2 {
		t.Errorf("Peek() changed Size() to %d, want 2", got)
	}
}

func TestStack_PopClearsSlot(t *testing.T) {
	type node struct{ name string }

	s := NewWithCapacity[*node](1)
	s.Push(&node{name: "a"})
	s.Pop()

	if s.items[:1][0] != nil {
		t.Error("Pop() left a reference in the backing array")
	}
}

func TestStack_ToSlice(t *testing.T) {
	s := NewWithCapacity[int](4)
	s.Push(1, 2, 3)

	slice := s.ToSlice()
	if diff := cmp.Diff([]int{1, 2, 3}, slice); diff != "" {
		t.Errorf("ToSlice() mismatch (-want +got):\n%s", diff)
	}

	slice[0] = 999
	s.Pop()
	s.Push(4)

	if diff := cmp.Diff([]int{1, 2, 4}, s.ToSlice()); diff != "" {
		t.Errorf("ToSlice() after mutation mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{999, 2, 3}, slice); diff != "" {
		t.Errorf("snapshot changed by later pushes (-want +got):\n%s", diff)
	}
}
