package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard-backend/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(t.TempDir())
}

func TestHashToken(t *testing.T) {
	assert.Equal(t, "0", HashToken(""))
	assert.Equal(t, HashToken("token-a"), HashToken("token-a"))
	assert.NotEqual(t, HashToken("token-a"), HashToken("token-b"))

	// Rolling hash over a long input must wrap within 32 bits and
	// still render as a plain signed decimal.
	long := HashToken("a-token-long-enough-to-overflow-thirty-two-bits-several-times")
	assert.Regexp(t, `^-?\d+$`, long)
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	user := &models.User{ID: "u1", Username: "hanako", Email: "hanako@example.com"}

	s.Set(user, true, "token-a")

	got := s.Get("token-a")
	require.NotNil(t, got)
	assert.True(t, got.Exists)
	assert.Equal(t, "hanako", got.Profile.Username)
	assert.Equal(t, HashToken("token-a"), got.TokenHash)
}

func TestStoreMissWhenEmpty(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.Get("token-a"))
	assert.False(t, s.IsCached("token-a"))
}

func TestStoreExpiry(t *testing.T) {
	s := newTestStore(t)
	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set(nil, false, "token-a")

	current = current.Add(cacheDuration - time.Minute)
	assert.NotNil(t, s.Get("token-a"))

	current = current.Add(2 * time.Minute)
	assert.Nil(t, s.Get("token-a"))
}

func TestStoreTokenChangeInvalidates(t *testing.T) {
	s := newTestStore(t)
	s.Set(&models.User{ID: "u1"}, true, "token-a")

	assert.Nil(t, s.Get("token-b"))
	assert.NotNil(t, s.Get("token-a"))
}

func TestStoreNoTokenQueriesHit(t *testing.T) {
	// A caller without a token in hand still gets the cached record.
	s := newTestStore(t)
	s.Set(&models.User{ID: "u1"}, true, "token-a")

	assert.NotNil(t, s.Get(""))
}

func TestStoreRecordWithoutHashSurvivesAnyToken(t *testing.T) {
	// Records written before a token was available carry no hash;
	// they are served to any caller rather than invalidated.
	s := newTestStore(t)
	s.Set(&models.User{ID: "u1"}, true, "")

	got := s.Get("token-b")
	require.NotNil(t, got)
	assert.Empty(t, got.TokenHash)
}

func TestStoreCorruptFileIsAMiss(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, cacheFileName), []byte("{not json"), 0o600))

	assert.Nil(t, s.Get("token-a"))

	// A later Set replaces the corrupt file.
	s.Set(&models.User{ID: "u1"}, true, "token-a")
	assert.NotNil(t, s.Get("token-a"))
}

func TestStoreClear(t *testing.T) {
	s := newTestStore(t)
	s.Set(&models.User{ID: "u1"}, true, "token-a")

	s.Clear()
	assert.Nil(t, s.Get("token-a"))

	// Clearing an already-empty store is fine.
	s.Clear()
}
