package jobqueue

import "testing"

func TestRingQueueFIFOOrder(t *testing.T) {
	q := NewRingQueue[string](3)
	for _, v := range []string{"a", "b", "c"} {
		if err := q.Enqueue(v); err != nil {
			t.Fatalf("Enqueue(%q): %v", v, err)
		}
	}
	if !q.IsFull() {
		t.Fatalf("expected queue to be full")
	}
	if err := q.Enqueue("d"); err == nil {
		t.Fatalf("expected Enqueue on a full queue to fail")
	}

	for _, want := range []string{"a", "b", "c"} {
		got, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue: %v", err)
		}
		if got != want {
			t.Fatalf("Dequeue order: got %q want %q", got, want)
		}
	}
	if !q.IsEmpty() {
		t.Fatalf("expected queue to be empty")
	}
	if _, err := q.Dequeue(); err == nil {
		t.Fatalf("expected Dequeue on an empty queue to fail")
	}
}

func TestRingQueuePeekDoesNotConsume(t *testing.T) {
	q := NewRingQueue[int](2)
	q.Enqueue(7)
	v, err := q.Peek()
	if err != nil || v != 7 {
		t.Fatalf("Peek: got (%v, %v)", v, err)
	}
	v2, err := q.Dequeue()
	if err != nil || v2 != 7 {
		t.Fatalf("Dequeue after Peek: got (%v, %v)", v2, err)
	}
}

func TestRingQueueWrapsAroundAfterDrain(t *testing.T) {
	q := NewRingQueue[int](2)
	q.Enqueue(1)
	q.Enqueue(2)
	q.Dequeue()
	q.Enqueue(3)
	first, _ := q.Dequeue()
	second, _ := q.Dequeue()
	if first != 2 || second != 3 {
		t.Fatalf("wraparound order wrong: got %d, %d", first, second)
	}
}
