package simulator

import (
	"math/rand"
	"testing"
)

func TestEventQueueBasicOperations(t *testing.T) {
	t.Run("new queue is empty", func(t *testing.T) {
		q := NewEventQueue()
		if q.Len() != 0 {
			t.Errorf("Expected empty queue, got length %d", q.Len())
		}
		if event := q.Pop(); event != nil {
			t.Error("Expected nil from empty queue")
		}
		if event := q.Peek(); event != nil {
			t.Error("Expected nil peek on empty queue")
		}
	})

	t.Run("push and pop single event", func(t *testing.T) {
		q := NewEventQueue()
		q.Push(&Event{timestamp: 10.0, fn: func() {}})

		if q.Len() != 1 {
			t.Errorf("Expected length 1, got %d", q.Len())
		}

		popped := q.Pop()
		if popped == nil {
			t.Fatal("Expected event, got nil")
		}
		if popped.Timestamp() != 10.0 {
			t.Errorf("Expected timestamp 10.0, got %.1f", popped.Timestamp())
		}
		if q.Len() != 0 {
			t.Errorf("Expected empty queue after pop, got length %d", q.Len())
		}
	})

	t.Run("peek does not remove", func(t *testing.T) {
		q := NewEventQueue()
		q.Push(&Event{timestamp: 5.0, fn: func() {}})

		if q.Peek().Timestamp() != 5.0 {
			t.Error("Peek returned wrong event")
		}
		if q.Len() != 1 {
			t.Errorf("Expected length 1 after peek, got %d", q.Len())
		}
	})
}

func TestEventQueueOrdering(t *testing.T) {
	q := NewEventQueue()

	// Push events in non-chronological order
	timestamps := []float64{15.0, 5.0, 20.0, 1.0, 10.0}
	for i, ts := range timestamps {
		q.Push(&Event{timestamp: ts, seq: uint64(i), fn: func() {}})
	}

	expected := []float64{1.0, 5.0, 10.0, 15.0, 20.0}
	for i, want := range expected {
		event := q.Pop()
		if event == nil {
			t.Fatalf("Pop %d returned nil", i)
		}
		if event.Timestamp() != want {
			t.Errorf("Pop %d: expected timestamp %.1f, got %.1f", i, want, event.Timestamp())
		}
	}
}

func TestEventQueueFIFOTieBreak(t *testing.T) {
	q := NewEventQueue()

	// Same timestamp, insertion order must be preserved
	for i := 0; i < 10; i++ {
		q.Push(&Event{timestamp: 42.0, seq: uint64(i), fn: func() {}})
	}

	for i := 0; i < 10; i++ {
		event := q.Pop()
		if event.Seq() != uint64(i) {
			t.Errorf("Expected seq %d, got %d", i, event.Seq())
		}
	}
}

func TestEventQueueClear(t *testing.T) {
	q := NewEventQueue()
	for i := 0; i < 5; i++ {
		q.Push(&Event{timestamp: float64(i), seq: uint64(i), fn: func() {}})
	}

	q.Clear()
	if !q.IsEmpty() {
		t.Errorf("Expected empty queue after Clear, got length %d", q.Len())
	}
}

func TestEventQueueStress(t *testing.T) {
	q := NewEventQueue()
	rng := rand.New(rand.NewSource(1))

	const n = 10000
	for i := 0; i < n; i++ {
		q.Push(&Event{timestamp: rng.Float64() * 500, seq: uint64(i), fn: func() {}})
	}

	prev := -1.0
	for i := 0; i < n; i++ {
		event := q.Pop()
		if event.Timestamp() < prev {
			t.Fatalf("Pop %d went backwards: %.6f after %.6f", i, event.Timestamp(), prev)
		}
		prev = event.Timestamp()
	}
	if !q.IsEmpty() {
		t.Errorf("Expected drained queue, got length %d", q.Len())
	}
}
