package session

import (
	"fmt"
	"log/slog"
	"sync"
)

// Store owns all sessions, keyed by user identifier. Access to one user's
// session is exclusive for the duration of an Update; different users
// proceed in parallel. Sessions are never destroyed, only reset by the
// engine after an idle timeout.
//
// Live sessions are only touched under their user's lock. The store keeps a
// cloned snapshot of each session, refreshed at the end of every Update, so
// persistence never reads a session another user is mutating.
type Store struct {
	sessions    map[string]*Session
	snapshots   map[string]*Session
	userLocks   map[string]*sync.Mutex
	persistence Persistence
	logger      *slog.Logger
	mu          sync.RWMutex
}

// StoreOption configures the store.
type StoreOption func(*Store)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a store backed by the given persistence. The persisted
// state is loaded once here; an unreadable store starts empty rather than
// failing startup.
func NewStore(persistence Persistence, opts ...StoreOption) *Store {
	if persistence == nil {
		persistence = NewNoopPersistence()
	}

	s := &Store{
		userLocks:   make(map[string]*sync.Mutex),
		persistence: persistence,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	sessions, err := persistence.Load()
	if err != nil {
		s.logger.Warn("failed to load sessions, starting empty", "error", err)
		sessions = make(map[string]*Session)
	}

	s.sessions = make(map[string]*Session, len(sessions))
	s.snapshots = make(map[string]*Session, len(sessions))
	for userID, sess := range sessions {
		if sess == nil {
			continue
		}
		if sess.Cart == nil {
			sess.Cart = make(map[string]int)
		}
		s.sessions[userID] = sess
		s.snapshots[userID] = sess.clone()
	}

	return s
}

// Update runs fn with exclusive access to the user's session, creating it
// on first contact. The session is persisted after fn returns, whether or
// not fn errored: a failed outbound send must not lose a stage change.
func (s *Store) Update(userID string, fn func(*Session) error) error {
	if userID == "" {
		return fmt.Errorf("user id cannot be empty")
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	sess, exists := s.sessions[userID]
	if !exists {
		sess = New()
		s.sessions[userID] = sess
	}
	s.mu.Unlock()

	fnErr := fn(sess)

	// Refresh this user's snapshot while still holding their lock, then
	// persist the full snapshot set.
	snap := sess.clone()
	s.mu.Lock()
	s.snapshots[userID] = snap
	toSave := make(map[string]*Session, len(s.snapshots))
	for id, sn := range s.snapshots {
		toSave[id] = sn
	}
	s.mu.Unlock()

	if err := s.persistence.Save(toSave); err != nil {
		s.logger.Warn("failed to persist sessions", "user", userID, "error", err)
	}

	return fnErr
}

// Get returns a copy of the user's last persisted state, or nil if the
// user is unknown.
func (s *Store) Get(userID string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, exists := s.snapshots[userID]
	if !exists {
		return nil
	}
	return snap.clone()
}

// Snapshot returns an independent copy of every session as of its last
// completed update.
func (s *Store) Snapshot() map[string]*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Session, len(s.snapshots))
	for userID, snap := range s.snapshots {
		out[userID] = snap.clone()
	}
	return out
}

// Len returns the number of known sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

// Save persists the current state, used at shutdown.
func (s *Store) Save() error {
	if err := s.persistence.Save(s.Snapshot()); err != nil {
		return fmt.Errorf("failed to save sessions: %w", err)
	}
	return nil
}

// userLock returns the per-user mutex, creating it lazily.
func (s *Store) userLock(userID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, exists := s.userLocks[userID]
	if !exists {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}
