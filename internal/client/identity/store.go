package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFileName = "postcard_session.json"

// SessionStore persists the current session between CLI runs
type SessionStore struct {
	path string
}

// NewSessionStore creates a store rooted at dir; empty dir falls back
// to the user config directory.
func NewSessionStore(dir string) *SessionStore {
	if dir == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			dir = filepath.Join(configDir, "postcard")
		} else {
			dir = "."
		}
	}
	return &SessionStore{path: filepath.Join(dir, sessionFileName)}
}

// StoredSession is the persisted session plus the exchanged API token
type StoredSession struct {
	Session  Session `json:"session"`
	APIToken string  `json:"api_token"`
}

// Load reads the stored session; returns nil when none exists
func (s *SessionStore) Load() (*StoredSession, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var stored StoredSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &stored, nil
}

// Save writes the session with owner-only permissions
func (s *SessionStore) Save(stored *StoredSession) error {
	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}

// Clear deletes the stored session
func (s *SessionStore) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return nil
}
