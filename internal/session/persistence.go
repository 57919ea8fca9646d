package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Persistence handles saving and loading the session map. Implementations
// must treat an unreadable store as recoverable; the worst case is
// starting empty.
type Persistence interface {
	Save(sessions map[string]*Session) error
	Load() (map[string]*Session, error)
}

// FilePersistence stores all sessions in a single JSON file, written
// atomically via a temp file.
type FilePersistence struct {
	path string
}

// NewFilePersistence creates a file-based persistence handler.
func NewFilePersistence(path string) *FilePersistence {
	return &FilePersistence{path: path}
}

// Save writes the session map to disk atomically.
func (f *FilePersistence) Save(sessions map[string]*Session) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	tempFile := f.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}

	if err := os.Rename(tempFile, f.path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to save sessions: %w", err)
	}

	return nil
}

// Load reads the session map from disk. A missing or empty file yields an
// empty map; a corrupt file yields an error the caller downgrades to
// "start empty".
func (f *FilePersistence) Load() (map[string]*Session, error) {
	data, err := os.ReadFile(f.path) // #nosec G304 - path comes from configuration
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Session), nil
		}
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}

	if len(data) == 0 {
		return make(map[string]*Session), nil
	}

	var sessions map[string]*Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}
	if sessions == nil {
		sessions = make(map[string]*Session)
	}

	return sessions, nil
}

// NoopPersistence implements Persistence but does nothing, keeping
// persistence optional in tests and development.
type NoopPersistence struct{}

// NewNoopPersistence creates a no-op persistence handler.
func NewNoopPersistence() *NoopPersistence {
	return &NoopPersistence{}
}

// Save does nothing.
func (n *NoopPersistence) Save(_ map[string]*Session) error {
	return nil
}

// Load returns an empty map.
func (n *NoopPersistence) Load() (map[string]*Session, error) {
	return make(map[string]*Session), nil
}
