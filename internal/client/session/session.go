package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"postcard-backend/internal/client/profile"
)

// State describes where the user currently stands in the auth flow
type State string

const (
	// StateLoading is the initial state before the first check finishes
	StateLoading State = "loading"
	// StateAuthenticated means a valid token and an existing profile
	StateAuthenticated State = "authenticated"
	// StateUnauthenticated means no usable token
	StateUnauthenticated State = "unauthenticated"
	// StateNeedsProfileSetup means a valid token but no profile yet
	StateNeedsProfileSetup State = "needs-profile-setup"
)

// recheckInterval throttles repeated profile checks while a result
// is already known.
const recheckInterval = 5 * time.Minute

// Checker verifies whether the authenticated user has a profile
type Checker interface {
	CheckUserExists(ctx context.Context, forceRefresh bool) profile.CheckResult
	IsCached(ctx context.Context) bool
}

// TokenSource reports whether a usable token is currently held
type TokenSource interface {
	HasToken() bool
}

// Manager tracks the auth state and guards against stale check
// results overwriting newer ones.
type Manager struct {
	checker Checker
	tokens  TokenSource

	mu         sync.Mutex
	state      State
	profile    *profile.CheckResult
	generation uint64
	lastCheck  time.Time
	now        func() time.Time
}

func NewManager(checker Checker, tokens TokenSource) *Manager {
	return &Manager{
		checker: checker,
		tokens:  tokens,
		state:   StateLoading,
		now:     time.Now,
	}
}

// State returns the current auth state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Refresh runs a profile check and updates the state. Each call bumps
// the generation counter; a check whose generation is no longer
// current discards its result instead of applying it.
func (m *Manager) Refresh(ctx context.Context, force bool) State {
	m.mu.Lock()
	if !m.tokens.HasToken() {
		m.state = StateUnauthenticated
		m.profile = nil
		m.mu.Unlock()
		return StateUnauthenticated
	}
	if !force && !m.shouldRecheckLocked(ctx) {
		state := m.state
		m.mu.Unlock()
		return state
	}
	m.generation++
	gen := m.generation
	m.mu.Unlock()

	result := m.checker.CheckUserExists(ctx, force)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.generation {
		log.Debug().Uint64("generation", gen).Msg("discarding stale auth check result")
		return m.state
	}
	m.lastCheck = m.now()

	switch {
	case result.Err != nil:
		// An errored check never downgrades an established state
		if m.state == StateLoading {
			m.state = StateUnauthenticated
		}
		log.Warn().Err(result.Err).Msg("auth check failed")
	case result.Exists:
		m.state = StateAuthenticated
		m.profile = &result
	default:
		m.state = StateNeedsProfileSetup
		m.profile = &result
	}
	return m.state
}

// shouldRecheckLocked reports whether a fresh check is due. A cached
// profile answer suppresses rechecks entirely; otherwise checks are
// spaced by recheckInterval.
func (m *Manager) shouldRecheckLocked(ctx context.Context) bool {
	if m.state == StateLoading {
		return true
	}
	if m.checker.IsCached(ctx) {
		return false
	}
	return m.now().Sub(m.lastCheck) >= recheckInterval
}

// Invalidate forces the next Refresh to run a real check
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.lastCheck = time.Time{}
}

// Logout resets to the unauthenticated state and invalidates any
// in-flight check.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.state = StateUnauthenticated
	m.profile = nil
	m.lastCheck = time.Time{}
}

// Profile returns the last successful check result, if any
func (m *Manager) Profile() *profile.CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// NextDestination maps the current state to the screen the user
// should land on. The loading state stays put to avoid bouncing the
// user between screens before the first check finishes.
func (m *Manager) NextDestination() string {
	switch m.State() {
	case StateAuthenticated:
		return "/map"
	case StateNeedsProfileSetup:
		return "/profile/setup"
	case StateUnauthenticated:
		return "/login"
	default:
		return ""
	}
}
