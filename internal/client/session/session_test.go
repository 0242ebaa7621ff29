package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard-backend/internal/client/profile"
	"postcard-backend/internal/models"
)

type fakeChecker struct {
	calls  int
	result profile.CheckResult
	cached bool
}

func (f *fakeChecker) CheckUserExists(ctx context.Context, forceRefresh bool) profile.CheckResult {
	f.calls++
	return f.result
}

func (f *fakeChecker) IsCached(ctx context.Context) bool { return f.cached }

type fakeTokens struct{ has bool }

func (f *fakeTokens) HasToken() bool { return f.has }

func TestRefreshNoToken(t *testing.T) {
	checker := &fakeChecker{}
	m := NewManager(checker, &fakeTokens{has: false})

	assert.Equal(t, StateLoading, m.State())
	assert.Equal(t, StateUnauthenticated, m.Refresh(context.Background(), false))
	assert.Zero(t, checker.calls)
	assert.Equal(t, "/login", m.NextDestination())
}

func TestRefreshAuthenticated(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{
		Exists:  true,
		Profile: &models.User{ID: "u1", Username: "taro"},
	}}
	m := NewManager(checker, &fakeTokens{has: true})

	assert.Equal(t, StateAuthenticated, m.Refresh(context.Background(), false))
	require.NotNil(t, m.Profile())
	assert.Equal(t, "taro", m.Profile().Profile.Username)
	assert.Equal(t, "/map", m.NextDestination())
}

func TestRefreshNeedsProfileSetup(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: false}}
	m := NewManager(checker, &fakeTokens{has: true})

	assert.Equal(t, StateNeedsProfileSetup, m.Refresh(context.Background(), false))
	assert.Equal(t, "/profile/setup", m.NextDestination())
}

func TestRefreshErrorKeepsEstablishedState(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: true}}
	m := NewManager(checker, &fakeTokens{has: true})
	require.Equal(t, StateAuthenticated, m.Refresh(context.Background(), false))

	// A flaky network check must not bounce an authenticated user.
	checker.result = profile.CheckResult{Err: errors.New("timeout")}
	assert.Equal(t, StateAuthenticated, m.Refresh(context.Background(), true))
}

func TestRefreshErrorDuringLoading(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Err: errors.New("timeout")}}
	m := NewManager(checker, &fakeTokens{has: true})

	assert.Equal(t, StateUnauthenticated, m.Refresh(context.Background(), false))
}

func TestRefreshThrottledWhileCached(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: true}, cached: true}
	m := NewManager(checker, &fakeTokens{has: true})

	m.Refresh(context.Background(), false)
	m.Refresh(context.Background(), false)
	m.Refresh(context.Background(), false)

	// The first call establishes the state; later unforced calls are
	// answered without running a check while the cache holds.
	assert.Equal(t, 1, checker.calls)
}

func TestRefreshRecheckAfterInterval(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: true}}
	m := NewManager(checker, &fakeTokens{has: true})

	current := time.Now()
	m.now = func() time.Time { return current }

	m.Refresh(context.Background(), false)
	m.Refresh(context.Background(), false)
	assert.Equal(t, 1, checker.calls)

	current = current.Add(recheckInterval + time.Second)
	m.Refresh(context.Background(), false)
	assert.Equal(t, 2, checker.calls)
}

func TestRefreshForceAlwaysChecks(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: true}, cached: true}
	m := NewManager(checker, &fakeTokens{has: true})

	m.Refresh(context.Background(), true)
	m.Refresh(context.Background(), true)
	assert.Equal(t, 2, checker.calls)
}

func TestLogout(t *testing.T) {
	checker := &fakeChecker{result: profile.CheckResult{Exists: true, Profile: &models.User{ID: "u1"}}}
	m := NewManager(checker, &fakeTokens{has: true})
	m.Refresh(context.Background(), false)

	m.Logout()
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Nil(t, m.Profile())
}

// A check that started before Logout must not resurrect the session
// when its response lands afterwards.
func TestStaleCheckResultDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	checker := &blockingChecker{started: started, release: release}
	m := NewManager(checker, &fakeTokens{has: true})

	done := make(chan State)
	go func() {
		done <- m.Refresh(context.Background(), true)
	}()

	<-started
	m.Logout()
	close(release)

	assert.Equal(t, StateUnauthenticated, <-done)
	assert.Equal(t, StateUnauthenticated, m.State())
}

type blockingChecker struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingChecker) CheckUserExists(ctx context.Context, forceRefresh bool) profile.CheckResult {
	close(b.started)
	<-b.release
	return profile.CheckResult{Exists: true, Profile: &models.User{ID: "u1"}}
}

func (b *blockingChecker) IsCached(ctx context.Context) bool { return false }
