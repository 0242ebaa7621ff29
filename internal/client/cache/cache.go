// Package cache persists the "does the signed-in user have a profile"
// answer between runs so routine auth checks stay off the network. It
// is a single slot: every write replaces the whole record.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"postcard-backend/internal/models"
)

const (
	cacheFileName = "postcard_user_cache.json"
	// Long duration to avoid frequent cache clears; token-change
	// detection handles account switches well before expiry matters.
	cacheDuration = 7 * 24 * time.Hour
)

// CachedUserData is the persisted cache record
type CachedUserData struct {
	Profile   *models.User `json:"profile"`
	Exists    bool         `json:"exists"`
	Timestamp int64        `json:"timestamp"` // epoch millis
	TokenHash string       `json:"tokenHash,omitempty"`
}

// Store is a file-backed single-slot cache. Storage failures of any
// kind degrade to a cache miss and are never surfaced.
type Store struct {
	path string
	now  func() time.Time
}

// New creates a store rooted at dir. An empty dir falls back to the
// user config directory.
func New(dir string) *Store {
	if dir == "" {
		if configDir, err := os.UserConfigDir(); err == nil {
			dir = filepath.Join(configDir, "postcard")
		} else {
			dir = "."
		}
	}
	return &Store{
		path: filepath.Join(dir, cacheFileName),
		now:  time.Now,
	}
}

// HashToken computes a 32-bit rolling hash of a token, rendered as a
// signed decimal string. This detects token identity change between
// runs; it has no security properties and must not be given any.
func HashToken(token string) string {
	var h int32
	for _, r := range token {
		h = h*31 + int32(r)
	}
	return strconv.Itoa(int(h))
}

// Get returns the cached record, or nil when there is no entry, the
// entry is older than the cache duration, or currentToken is non-empty
// and hashes differently from the stored hash. A record stored without
// a token hash is returned regardless of currentToken: the absence of a
// hash does not invalidate, only a disagreeing one does.
func (s *Store) Get(currentToken string) *CachedUserData {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}

	var data CachedUserData
	if err := json.Unmarshal(raw, &data); err != nil {
		// Don't remove the file on parse errors; a later write
		// replaces it anyway.
		return nil
	}

	age := s.now().UnixMilli() - data.Timestamp
	if age > cacheDuration.Milliseconds() {
		return nil
	}

	if currentToken != "" && data.TokenHash != "" && data.TokenHash != HashToken(currentToken) {
		return nil
	}

	return &data
}

// Set overwrites the cache slot, stamping the current time and the hash
// of currentToken when one is supplied.
func (s *Store) Set(profile *models.User, exists bool, currentToken string) {
	data := CachedUserData{
		Profile:   profile,
		Exists:    exists,
		Timestamp: s.now().UnixMilli(),
	}
	if currentToken != "" {
		data.TokenHash = HashToken(currentToken)
	}

	raw, err := json.Marshal(&data)
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(s.path, raw, 0o600)
}

// Clear deletes the slot. Called only on explicit logout or a detected
// 401, never on ordinary fetch failures.
func (s *Store) Clear() {
	_ = os.Remove(s.path)
}

// IsCached reports whether Get would return a record
func (s *Store) IsCached(currentToken string) bool {
	return s.Get(currentToken) != nil
}
