// Package profile answers "does the signed-in user have a profile yet"
// cheaply, consulting the local cache before going to the network.
package profile

import (
	"context"
	"errors"

	"postcard-backend/internal/client/api"
	"postcard-backend/internal/client/cache"
	"postcard-backend/internal/models"
)

// CheckResult is the outcome of a profile-existence check
type CheckResult struct {
	Exists  bool
	Profile *models.User
	Err     error
}

// Client is the slice of the API client the checker needs
type Client interface {
	GetMyProfile(ctx context.Context) (*models.User, error)
}

// Checker composes the profile cache and the API client
type Checker struct {
	client Client
	store  *cache.Store
	token  api.TokenProvider
}

// NewChecker creates a profile checker
func NewChecker(client Client, store *cache.Store, token api.TokenProvider) *Checker {
	return &Checker{
		client: client,
		store:  store,
		token:  token,
	}
}

// CheckUserExists reports whether the signed-in user has completed
// profile setup. Unless forceRefresh is set, a valid cache entry
// answers without a network call. Only definitive answers (a profile,
// or a clean 404) are cached; transient failures return Err without
// touching the cache so a flaky network cannot poison it. A 401 clears
// the cache: the session the entry was keyed to is gone.
func (c *Checker) CheckUserExists(ctx context.Context, forceRefresh bool) CheckResult {
	token, err := c.token(ctx)
	if err != nil {
		return CheckResult{Exists: false, Err: err}
	}

	if !forceRefresh && token != "" {
		if cached := c.store.Get(token); cached != nil {
			return CheckResult{Exists: cached.Exists, Profile: cached.Profile}
		}
	}

	user, err := c.client.GetMyProfile(ctx)
	switch {
	case err == nil:
		if user == nil {
			c.store.Set(nil, false, token)
			return CheckResult{Exists: false}
		}
		c.store.Set(user, true, token)
		return CheckResult{Exists: true, Profile: user}
	case errors.Is(err, api.ErrNotFound):
		c.store.Set(nil, false, token)
		return CheckResult{Exists: false}
	case errors.Is(err, api.ErrUnauthorized):
		c.store.Clear()
		return CheckResult{Exists: false, Err: err}
	default:
		return CheckResult{Exists: false, Err: err}
	}
}

// IsCached reports whether a check would be answered from cache
func (c *Checker) IsCached(ctx context.Context) bool {
	token, err := c.token(ctx)
	if err != nil {
		return false
	}
	return c.store.IsCached(token)
}
