package queue

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/shopease/orderbot/internal/engine"
)

// UserQueue holds pending events for a single user in FIFO order. At most
// one event is in flight at a time: Dequeue refuses to hand out another
// event until Complete is called.
type UserQueue struct {
	userID   string
	events   *list.List
	mu       sync.Mutex
	inFlight bool
}

// NewUserQueue creates an empty queue for the given user.
func NewUserQueue(userID string) *UserQueue {
	return &UserQueue{
		userID: userID,
		events: list.New(),
	}
}

// Enqueue appends an event. The event must belong to this queue's user.
func (q *UserQueue) Enqueue(ev engine.Event) error {
	if ev.UserID != q.userID {
		return fmt.Errorf("event user %q does not match queue user %q", ev.UserID, q.userID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events.PushBack(ev)
	return nil
}

// Dequeue pops the oldest pending event and marks it in flight. It returns
// false when the queue is empty or an event is already being processed.
func (q *UserQueue) Dequeue() (engine.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.inFlight || q.events.Len() == 0 {
		return engine.Event{}, false
	}

	front := q.events.Front()
	q.events.Remove(front)
	q.inFlight = true

	ev, ok := front.Value.(engine.Event)
	if !ok {
		return engine.Event{}, false
	}
	return ev, true
}

// Requeue returns an in-flight event to the head of the queue and clears
// the in-flight marker, preserving FIFO order for a dispatch that found no
// live worker.
func (q *UserQueue) Requeue(ev engine.Event) error {
	if ev.UserID != q.userID {
		return fmt.Errorf("event user %q does not match queue user %q", ev.UserID, q.userID)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	q.events.PushFront(ev)
	q.inFlight = false
	return nil
}

// Complete clears the in-flight marker, allowing the next event out.
func (q *UserQueue) Complete() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.inFlight = false
}

// Size returns the number of pending events, not counting one in flight.
func (q *UserQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.events.Len()
}

// IsProcessing reports whether an event is currently in flight.
func (q *UserQueue) IsProcessing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.inFlight
}

// IsEmpty reports whether the queue has neither pending nor in-flight events.
func (q *UserQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return !q.inFlight && q.events.Len() == 0
}
