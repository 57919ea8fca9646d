package session_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopease/orderbot/internal/session"
)

func TestFilePersistence_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	p := session.NewFilePersistence(path)

	sess := session.New()
	sess.Stage = session.StageAwaitingQuantity
	sess.SelectedProduct = "2"
	sess.Cart.Add("1", 2)
	sess.LastActivity = time.Now().Truncate(time.Second)

	if err := p.Save(map[string]*session.Session{"919876543210": sess}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	got, ok := loaded["919876543210"]
	if !ok {
		t.Fatal("expected session for user")
	}
	if got.Stage != session.StageAwaitingQuantity {
		t.Errorf("expected stage awaiting_quantity, got %s", got.Stage)
	}
	if got.SelectedProduct != "2" {
		t.Errorf("expected selected product 2, got %q", got.SelectedProduct)
	}
	if got.Cart.Quantity("1") != 2 {
		t.Errorf("expected cart quantity 2, got %d", got.Cart.Quantity("1"))
	}
	if !got.LastActivity.Equal(sess.LastActivity) {
		t.Errorf("expected last activity %v, got %v", sess.LastActivity, got.LastActivity)
	}
}

func TestFilePersistence_MissingFileIsEmpty(t *testing.T) {
	p := session.NewFilePersistence(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := p.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty map, got %d sessions", len(loaded))
	}
}

func TestFilePersistence_EmptyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	loaded, err := session.NewFilePersistence(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty map, got %d sessions", len(loaded))
	}
}

func TestFilePersistence_CorruptFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := session.NewFilePersistence(path).Load(); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	// Never fatal: a corrupt store means starting over, not crashing.
	store := session.NewStore(session.NewFilePersistence(path))
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d sessions", store.Len())
	}
}

func TestStage_UnknownNameDecodesToMenu(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	data := `{"u": {"stage": "hyperspace", "cart": {}, "last_activity": "0001-01-01T00:00:00Z"}}`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	loaded, err := session.NewFilePersistence(path).Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if loaded["u"].Stage != session.StageMenu {
		t.Errorf("expected unknown stage to decode to menu, got %s", loaded["u"].Stage)
	}
}
