package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard-backend/internal/client/api"
	"postcard-backend/internal/client/cache"
	"postcard-backend/internal/models"
)

type fakeClient struct {
	calls int
	user  *models.User
	err   error
}

func (f *fakeClient) GetMyProfile(ctx context.Context) (*models.User, error) {
	f.calls++
	return f.user, f.err
}

func staticToken(token string) api.TokenProvider {
	return func(ctx context.Context) (string, error) { return token, nil }
}

func newTestChecker(t *testing.T, client *fakeClient, token string) *Checker {
	t.Helper()
	return NewChecker(client, cache.New(t.TempDir()), staticToken(token))
}

func TestCheckUserExistsCachesProfile(t *testing.T) {
	client := &fakeClient{user: &models.User{ID: "u1", Username: "taro"}}
	checker := newTestChecker(t, client, "token-a")

	first := checker.CheckUserExists(context.Background(), false)
	require.NoError(t, first.Err)
	assert.True(t, first.Exists)
	assert.Equal(t, "taro", first.Profile.Username)

	// Second check is answered from the cache without a network call.
	second := checker.CheckUserExists(context.Background(), false)
	require.NoError(t, second.Err)
	assert.True(t, second.Exists)
	assert.Equal(t, 1, client.calls)
	assert.True(t, checker.IsCached(context.Background()))
}

func TestCheckUserExistsCachesNotFound(t *testing.T) {
	// "No profile yet" is a definitive answer and is cached too, so
	// the setup screen does not hammer the API.
	client := &fakeClient{err: api.ErrNotFound}
	checker := newTestChecker(t, client, "token-a")

	first := checker.CheckUserExists(context.Background(), false)
	require.NoError(t, first.Err)
	assert.False(t, first.Exists)

	second := checker.CheckUserExists(context.Background(), false)
	require.NoError(t, second.Err)
	assert.False(t, second.Exists)
	assert.Equal(t, 1, client.calls)
}

func TestCheckUserExistsForceRefreshBypassesCache(t *testing.T) {
	client := &fakeClient{user: &models.User{ID: "u1"}}
	checker := newTestChecker(t, client, "token-a")

	checker.CheckUserExists(context.Background(), false)
	checker.CheckUserExists(context.Background(), true)

	assert.Equal(t, 2, client.calls)
}

func TestCheckUserExistsTransientErrorNotCached(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	checker := newTestChecker(t, client, "token-a")

	result := checker.CheckUserExists(context.Background(), false)
	assert.Error(t, result.Err)
	assert.False(t, result.Exists)
	assert.False(t, checker.IsCached(context.Background()))

	// Every retry goes back to the network.
	checker.CheckUserExists(context.Background(), false)
	assert.Equal(t, 2, client.calls)
}

func TestCheckUserExistsUnauthorizedClearsCache(t *testing.T) {
	store := cache.New(t.TempDir())
	store.Set(&models.User{ID: "u1"}, true, "token-a")

	client := &fakeClient{err: api.ErrUnauthorized}
	checker := NewChecker(client, store, staticToken("token-a"))

	result := checker.CheckUserExists(context.Background(), true)
	assert.ErrorIs(t, result.Err, api.ErrUnauthorized)
	assert.Nil(t, store.Get("token-a"))
}

func TestCheckUserExistsTokenErrorSurfaces(t *testing.T) {
	tokenErr := errors.New("refresh failed")
	client := &fakeClient{}
	checker := NewChecker(client, cache.New(t.TempDir()),
		func(ctx context.Context) (string, error) { return "", tokenErr })

	result := checker.CheckUserExists(context.Background(), false)
	assert.ErrorIs(t, result.Err, tokenErr)
	assert.Zero(t, client.calls)
}

func TestCheckUserExistsDifferentTokenMisses(t *testing.T) {
	client := &fakeClient{user: &models.User{ID: "u1"}}
	store := cache.New(t.TempDir())

	NewChecker(client, store, staticToken("token-a")).CheckUserExists(context.Background(), false)

	// Same store, different signed-in user: the stored hash disagrees
	// and the check goes to the network.
	NewChecker(client, store, staticToken("token-b")).CheckUserExists(context.Background(), false)
	assert.Equal(t, 2, client.calls)
}
