package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopease/orderbot/internal/engine"
)

const (
	incomingBuffer = 100
	requestBuffer  = 10
	submitTimeout  = 5 * time.Second
)

// workerRequest is one worker's wait for an event. respCh is unbuffered so
// a dispatch only succeeds against a worker still receiving; ctx lets the
// manager detect a worker that gave up waiting.
type workerRequest struct {
	respCh chan *engine.Event
	ctx    context.Context
}

// Manager fans inbound events into per-user queues and hands them to
// workers with round-robin fairness across users. A user with an in-flight
// event is skipped until the worker completes it, so no two events for the
// same user ever process concurrently.
type Manager struct {
	ctx            context.Context
	cancel         context.CancelFunc
	queues         map[string]*UserQueue
	incomingCh     chan engine.Event
	requestCh      chan workerRequest
	userOrder      []string
	waitingWorkers []workerRequest
	wg             sync.WaitGroup
	currentIndex   int
	mu             sync.RWMutex
	shutdown       bool
	started        chan struct{}
}

// NewManager creates a queue manager.
func NewManager(ctx context.Context) *Manager {
	ctx, cancel := context.WithCancel(ctx)

	return &Manager{
		queues:         make(map[string]*UserQueue),
		incomingCh:     make(chan engine.Event, incomingBuffer),
		requestCh:      make(chan workerRequest, requestBuffer),
		waitingWorkers: make([]workerRequest, 0),
		userOrder:      make([]string, 0),
		ctx:            ctx,
		cancel:         cancel,
		started:        make(chan struct{}),
	}
}

// Start runs the dispatch loop. Call it in a goroutine.
func (m *Manager) Start() {
	m.wg.Add(1)
	defer m.wg.Done()
	defer m.cleanup()

	close(m.started)

	for {
		select {
		case <-m.ctx.Done():
			return

		case ev := <-m.incomingCh:
			if err := m.enqueue(ev); err == nil {
				m.tryDispatch()
			}

		case req := <-m.requestCh:
			if ev, ok := m.nextEvent(); ok {
				if !m.dispatch(req, ev) {
					m.tryDispatch()
				}
			} else {
				m.mu.Lock()
				m.waitingWorkers = append(m.waitingWorkers, req)
				m.mu.Unlock()
			}
		}
	}
}

// WaitForReady blocks until the dispatch loop is running.
func (m *Manager) WaitForReady() {
	<-m.started
}

// Submit adds an inbound event for processing.
func (m *Manager) Submit(ev engine.Event) error {
	if ev.UserID == "" {
		return fmt.Errorf("cannot submit event without user id")
	}

	m.mu.RLock()
	if m.shutdown {
		m.mu.RUnlock()
		return fmt.Errorf("queue manager shutting down")
	}
	m.mu.RUnlock()

	select {
	case m.incomingCh <- ev:
		return nil
	case <-m.ctx.Done():
		return fmt.Errorf("queue manager shutting down")
	case <-time.After(submitTimeout):
		return fmt.Errorf("timeout submitting event")
	}
}

// Request is called by workers to obtain the next event. A nil event means
// the manager is shutting down.
func (m *Manager) Request(ctx context.Context) (*engine.Event, error) {
	req := workerRequest{respCh: make(chan *engine.Event), ctx: ctx}

	select {
	case m.requestCh <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.ctx.Done():
		return nil, fmt.Errorf("queue manager shutting down")
	}

	select {
	case ev := <-req.respCh:
		return ev, nil
	case <-ctx.Done():
		m.releaseWaiter(req.respCh)
		return nil, ctx.Err()
	case <-m.ctx.Done():
		return nil, fmt.Errorf("queue manager shutting down")
	}
}

// releaseWaiter removes a timed-out request from the waiting list so later
// dispatches never target a worker that already left.
func (m *Manager) releaseWaiter(respCh chan *engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, req := range m.waitingWorkers {
		if req.respCh == respCh {
			m.waitingWorkers = append(m.waitingWorkers[:i], m.waitingWorkers[i+1:]...)
			return
		}
	}
}

// Complete marks the user's in-flight event as done and wakes a waiting
// worker if more work is pending.
func (m *Manager) Complete(userID string) {
	m.mu.Lock()
	queue, exists := m.queues[userID]
	m.mu.Unlock()

	if !exists {
		return
	}

	queue.Complete()

	m.mu.Lock()
	if queue.IsEmpty() {
		m.removeUserLocked(userID)
	}
	m.mu.Unlock()

	m.tryDispatch()
}

// Shutdown stops the manager, waiting up to timeout for the loop to exit.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.mu.Lock()
	m.shutdown = true
	m.mu.Unlock()

	m.cancel()

	select {
	case <-m.started:
	case <-time.After(100 * time.Millisecond):
		// Start was never called; nothing to wait for.
		return nil
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("shutdown timeout after %v", timeout)
	}
}

// Stats returns queue counters for observability.
func (m *Manager) Stats() map[string]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	queued := 0
	processing := 0
	for _, q := range m.queues {
		queued += q.Size()
		if q.IsProcessing() {
			processing++
		}
	}

	return map[string]int{
		"users":           len(m.queues),
		"queued":          queued,
		"processing":      processing,
		"waiting_workers": len(m.waitingWorkers),
	}
}

// enqueue routes an event to its user's queue, creating it on demand.
func (m *Manager) enqueue(ev engine.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	queue, exists := m.queues[ev.UserID]
	if !exists {
		queue = NewUserQueue(ev.UserID)
		m.queues[ev.UserID] = queue
		m.userOrder = append(m.userOrder, ev.UserID)
	}

	return queue.Enqueue(ev)
}

// nextEvent picks the next dispatchable event, round-robin across users.
func (m *Manager) nextEvent() (engine.Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.nextEventLocked()
}

func (m *Manager) nextEventLocked() (engine.Event, bool) {
	attemptsLeft := len(m.userOrder)
	for attemptsLeft > 0 {
		if m.currentIndex >= len(m.userOrder) {
			m.currentIndex = 0
		}

		userID := m.userOrder[m.currentIndex]
		queue, exists := m.queues[userID]
		if !exists {
			m.removeUserAtLocked(m.currentIndex)
			attemptsLeft--
			continue
		}

		// Advance first so the next pick starts at the following user.
		m.currentIndex++

		if queue.IsProcessing() {
			attemptsLeft--
			continue
		}

		if ev, ok := queue.Dequeue(); ok {
			return ev, true
		}

		if queue.IsEmpty() {
			m.removeUserLocked(userID)
		}

		attemptsLeft--
	}

	return engine.Event{}, false
}

// tryDispatch hands an event to a waiting worker if one exists, trying the
// next waiter whenever one turns out to have left.
func (m *Manager) tryDispatch() {
	for {
		m.mu.Lock()
		if len(m.waitingWorkers) == 0 {
			m.mu.Unlock()
			return
		}
		ev, ok := m.nextEventLocked()
		if !ok {
			m.mu.Unlock()
			return
		}
		req := m.waitingWorkers[0]
		m.waitingWorkers = m.waitingWorkers[1:]
		m.mu.Unlock()

		if m.dispatch(req, ev) {
			return
		}
	}
}

// dispatch hands one dequeued event to one worker. The send is unbuffered,
// so it completes only against a worker still receiving; if the worker's
// wait ended first the event goes back to the head of its user's queue.
func (m *Manager) dispatch(req workerRequest, ev engine.Event) bool {
	select {
	case req.respCh <- &ev:
		return true
	case <-req.ctx.Done():
		m.requeue(ev)
		return false
	case <-m.ctx.Done():
		m.requeue(ev)
		return false
	}
}

// requeue restores an undeliverable event to the head of its user's queue.
func (m *Manager) requeue(ev engine.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if queue, exists := m.queues[ev.UserID]; exists {
		_ = queue.Requeue(ev)
	}
}

// removeUserLocked drops a drained user from the rotation.
func (m *Manager) removeUserLocked(userID string) {
	delete(m.queues, userID)
	for i, id := range m.userOrder {
		if id == userID {
			m.removeUserAtLocked(i)
			return
		}
	}
}

func (m *Manager) removeUserAtLocked(i int) {
	m.userOrder = append(m.userOrder[:i], m.userOrder[i+1:]...)
	if m.currentIndex > i {
		m.currentIndex--
	}
	if m.currentIndex >= len(m.userOrder) {
		m.currentIndex = 0
	}
}

// cleanup unblocks any waiting workers at shutdown.
func (m *Manager) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, req := range m.waitingWorkers {
		select {
		case req.respCh <- nil:
		default:
		}
	}
	m.waitingWorkers = nil
}
