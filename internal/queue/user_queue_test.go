package queue_test

import (
	"testing"

	"github.com/shopease/orderbot/internal/engine"
	"github.com/shopease/orderbot/internal/queue"
)

func event(user, text string) engine.Event {
	return engine.Event{UserID: user, Kind: engine.EventText, Text: text}
}

func TestUserQueue_FIFO(t *testing.T) {
	q := queue.NewUserQueue("u1")

	for _, text := range []string{"first", "second", "third"} {
		if err := q.Enqueue(event("u1", text)); err != nil {
			t.Fatalf("Enqueue() error: %v", err)
		}
	}

	ev, ok := q.Dequeue()
	if !ok || ev.Text != "first" {
		t.Fatalf("expected first event, got %+v ok=%v", ev, ok)
	}
	q.Complete()

	ev, ok = q.Dequeue()
	if !ok || ev.Text != "second" {
		t.Fatalf("expected second event, got %+v ok=%v", ev, ok)
	}
}

func TestUserQueue_OneInFlight(t *testing.T) {
	q := queue.NewUserQueue("u1")
	_ = q.Enqueue(event("u1", "a"))
	_ = q.Enqueue(event("u1", "b"))

	if _, ok := q.Dequeue(); !ok {
		t.Fatal("expected first dequeue to succeed")
	}

	// Second dequeue must block on the in-flight event.
	if _, ok := q.Dequeue(); ok {
		t.Fatal("expected dequeue to fail while an event is in flight")
	}
	if !q.IsProcessing() {
		t.Error("expected queue to report processing")
	}

	q.Complete()
	if _, ok := q.Dequeue(); !ok {
		t.Error("expected dequeue to succeed after completion")
	}
}

func TestUserQueue_RejectsWrongUser(t *testing.T) {
	q := queue.NewUserQueue("u1")
	if err := q.Enqueue(event("u2", "hi")); err == nil {
		t.Error("expected error for mismatched user id")
	}
}

func TestUserQueue_EmptyState(t *testing.T) {
	q := queue.NewUserQueue("u1")

	if !q.IsEmpty() {
		t.Error("new queue should be empty")
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("dequeue on empty queue should fail")
	}

	_ = q.Enqueue(event("u1", "a"))
	if q.IsEmpty() {
		t.Error("queue with an event is not empty")
	}
	if q.Size() != 1 {
		t.Errorf("expected size 1, got %d", q.Size())
	}

	_, _ = q.Dequeue()
	if q.IsEmpty() {
		t.Error("queue with an in-flight event is not empty")
	}

	q.Complete()
	if !q.IsEmpty() {
		t.Error("drained queue should be empty")
	}
}

func TestUserQueue_RequeueRestoresHead(t *testing.T) {
	q := queue.NewUserQueue("u1")
	_ = q.Enqueue(event("u1", "a"))
	_ = q.Enqueue(event("u1", "b"))

	ev, ok := q.Dequeue()
	if !ok {
		t.Fatal("expected dequeue to succeed")
	}
	if err := q.Requeue(ev); err != nil {
		t.Fatalf("Requeue() error: %v", err)
	}
	if q.IsProcessing() {
		t.Error("requeue should clear the in-flight marker")
	}

	ev, ok = q.Dequeue()
	if !ok || ev.Text != "a" {
		t.Fatalf("expected the requeued event back at the head, got %+v ok=%v", ev, ok)
	}
}

func TestUserQueue_RequeueRejectsWrongUser(t *testing.T) {
	q := queue.NewUserQueue("u1")
	if err := q.Requeue(event("u2", "hi")); err == nil {
		t.Error("expected error for mismatched user id")
	}
}
