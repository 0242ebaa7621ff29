package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"postcard-backend/internal/client/api"
	"postcard-backend/internal/client/cache"
	"postcard-backend/internal/client/identity"
	"postcard-backend/internal/client/profile"
	"postcard-backend/internal/client/push"
	"postcard-backend/internal/client/session"
	"postcard-backend/internal/config"
)

// App is the interactive CLI. It owns the identity provider, the API
// client and the cached auth state, and dispatches REPL commands.
type App struct {
	cfg      config.ClientConfig
	provider identity.Provider
	store    *identity.SessionStore
	api      *api.Client
	cache    *cache.Store
	checker  *profile.Checker
	session  *session.Manager
	push     *push.Manager
	reader   *bufio.Reader

	mu     sync.Mutex
	stored *identity.StoredSession
}

func NewApp(ctx context.Context, cfg config.ClientConfig) (*App, error) {
	provider, err := identity.NewCognito(ctx, cfg.Cognito.Region, cfg.Cognito.ClientID)
	if err != nil {
		return nil, fmt.Errorf("failed to init identity provider: %w", err)
	}

	a := &App{
		cfg:      cfg,
		provider: provider,
		store:    identity.NewSessionStore(cfg.CacheDir),
		cache:    cache.New(cfg.CacheDir),
		reader:   bufio.NewReader(os.Stdin),
	}
	a.api = api.New(cfg.ServerURL, a.currentToken)
	a.checker = profile.NewChecker(a.api, a.cache, a.currentToken)
	a.session = session.NewManager(a.checker, a)
	a.push = push.NewManager(a.api, cfg.PushEndpoint)

	stored, err := a.store.Load()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load stored session")
	} else {
		a.stored = stored
	}
	return a, nil
}

// HasToken reports whether a session is currently held
func (a *App) HasToken() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stored != nil && a.stored.APIToken != ""
}

// currentToken returns the API token for the current session,
// refreshing the identity session and re-exchanging the ID token when
// it has expired.
func (a *App) currentToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stored == nil || a.stored.APIToken == "" {
		return "", nil
	}
	if !a.stored.Session.Expired() {
		return a.stored.APIToken, nil
	}

	refreshed, err := a.provider.Refresh(ctx, a.stored.Session.RefreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh session: %w", err)
	}
	resp, err := a.api.ExchangeToken(ctx, refreshed.IDToken)
	if err != nil {
		return "", fmt.Errorf("failed to exchange token: %w", err)
	}

	a.stored = &identity.StoredSession{Session: *refreshed, APIToken: resp.AccessToken}
	if err := a.store.Save(a.stored); err != nil {
		log.Warn().Err(err).Msg("failed to persist refreshed session")
	}
	return a.stored.APIToken, nil
}

// setSession installs a freshly authenticated session
func (a *App) setSession(sess *identity.Session, apiToken string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stored = &identity.StoredSession{Session: *sess, APIToken: apiToken}
	return a.store.Save(a.stored)
}

// clearSession drops the session and all cached auth state
func (a *App) clearSession() {
	a.mu.Lock()
	a.stored = nil
	a.mu.Unlock()

	if err := a.store.Clear(); err != nil {
		log.Warn().Err(err).Msg("failed to clear stored session")
	}
	a.cache.Clear()
	a.session.Logout()
}

// accessToken returns the identity provider access token, if any
func (a *App) accessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stored == nil {
		return ""
	}
	return a.stored.Session.AccessToken
}
