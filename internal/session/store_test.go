package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/shopease/orderbot/internal/session"
)

func TestStore_CreatesSessionOnFirstTouch(t *testing.T) {
	store := session.NewStore(nil)

	err := store.Update("user1", func(s *session.Session) error {
		if s.Stage != session.StageMenu {
			t.Errorf("expected fresh session at menu, got %s", s.Stage)
		}
		if !s.Cart.IsEmpty() {
			t.Error("expected fresh session with empty cart")
		}
		if !s.LastActivity.IsZero() {
			t.Error("expected zero last activity on fresh session")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}
}

func TestStore_UpdateMutationsVisible(t *testing.T) {
	store := session.NewStore(nil)

	_ = store.Update("user1", func(s *session.Session) error {
		s.Stage = session.StageBrowsing
		s.Cart.Add("2", 3)
		return nil
	})

	got := store.Get("user1")
	if got == nil {
		t.Fatal("expected session to exist")
	}
	if got.Stage != session.StageBrowsing {
		t.Errorf("expected browsing stage, got %s", got.Stage)
	}
	if got.Cart.Quantity("2") != 3 {
		t.Errorf("expected quantity 3, got %d", got.Cart.Quantity("2"))
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := session.NewStore(nil)
	_ = store.Update("user1", func(s *session.Session) error {
		s.Cart.Add("1", 1)
		return nil
	})

	got := store.Get("user1")
	got.Cart.Add("1", 99)
	got.Stage = session.StageExit

	again := store.Get("user1")
	if again.Cart.Quantity("1") != 1 {
		t.Error("mutating a Get result leaked into the store")
	}
	if again.Stage != session.StageMenu {
		t.Error("mutating a Get result changed the stored stage")
	}
}

func TestStore_GetUnknownUser(t *testing.T) {
	store := session.NewStore(nil)
	if store.Get("ghost") != nil {
		t.Error("expected nil for unknown user")
	}
}

func TestStore_EmptyUserID(t *testing.T) {
	store := session.NewStore(nil)
	if err := store.Update("", func(*session.Session) error { return nil }); err == nil {
		t.Error("expected error for empty user id")
	}
}

func TestStore_PersistsEvenWhenFnErrors(t *testing.T) {
	p := &recordingPersistence{}
	store := session.NewStore(p)

	wantErr := store.Update("user1", func(s *session.Session) error {
		s.Stage = session.StageCartView
		return errSend
	})
	if wantErr != errSend {
		t.Fatalf("expected fn error to propagate, got %v", wantErr)
	}

	saved := p.last()
	if saved == nil {
		t.Fatal("expected a save despite fn error")
	}
	if saved["user1"].Stage != session.StageCartView {
		t.Error("expected stage change to be persisted despite fn error")
	}
}

func TestStore_ConcurrentSameUserSerialized(t *testing.T) {
	store := session.NewStore(nil)

	const workers = 20
	var wg sync.WaitGroup
	inFlight := 0
	var inFlightMu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Update("user1", func(s *session.Session) error {
				inFlightMu.Lock()
				inFlight++
				if inFlight > 1 {
					t.Error("two updates for the same user ran concurrently")
				}
				inFlightMu.Unlock()

				s.Cart.Add("1", 1)
				time.Sleep(time.Millisecond)

				inFlightMu.Lock()
				inFlight--
				inFlightMu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if got := store.Get("user1").Cart.Quantity("1"); got != workers {
		t.Errorf("expected %d accumulated adds, got %d", workers, got)
	}
}

func TestStore_DifferentUsersIndependent(t *testing.T) {
	store := session.NewStore(nil)

	var wg sync.WaitGroup
	for _, user := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = store.Update(u, func(s *session.Session) error {
					s.Cart.Add("1", 1)
					return nil
				})
			}
		}(user)
	}
	wg.Wait()

	for _, user := range []string{"a", "b", "c", "d"} {
		if got := store.Get(user).Cart.Quantity("1"); got != 50 {
			t.Errorf("user %s: expected 50, got %d", user, got)
		}
	}
}

// recordingPersistence captures the last saved snapshot.
type recordingPersistence struct {
	mu    sync.Mutex
	saved map[string]*session.Session
}

func (r *recordingPersistence) Save(sessions map[string]*session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = sessions
	return nil
}

func (r *recordingPersistence) Load() (map[string]*session.Session, error) {
	return make(map[string]*session.Session), nil
}

func (r *recordingPersistence) last() map[string]*session.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved
}

var errSend = errSentinel("send failed")

type errSentinel string

func (e errSentinel) Error() string { return string(e) }
