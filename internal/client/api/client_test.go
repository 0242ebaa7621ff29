package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, func(ctx context.Context) (string, error) { return token, nil })
}

func TestGetMyProfile(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/me", r.URL.Path)
		assert.Equal(t, "Bearer token-a", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"user_id":"u1","username":"taro","email":"taro@example.com"}`))
	}, "token-a")

	user, err := c.GetMyProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "taro", user.Username)
}

func TestStatusErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
	}
	for _, tt := range tests {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}, "token-a")

		_, err := c.GetMyProfile(context.Background())
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)
	}
}

func TestNoTokenSendsNoAuthorizationHeader(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusUnauthorized)
	}, "")

	_, err := c.GetMyProfile(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestExchangeToken(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/token", r.URL.Path)
		// Token exchange happens before a session exists.
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"access_token":"api-token","user_id":"u1"}`))
	}, "")

	resp, err := c.ExchangeToken(context.Background(), "cognito-id-token")
	require.NoError(t, err)
	assert.Equal(t, "api-token", resp.AccessToken)
	assert.Equal(t, "u1", resp.UserID)
}

func TestGetNearbyQueryParams(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "35.6812", q.Get("lat"))
		assert.Equal(t, "139.7671", q.Get("lon"))
		assert.Equal(t, "2000", q.Get("radius"))
		w.Write([]byte(`[{"postcard_id":"p1","current_position":{"lat":"35.7","lon":"139.8"}}]`))
	}, "token-a")

	postcards, err := c.GetNearby(context.Background(), 35.6812, 139.7671, 2000)
	require.NoError(t, err)
	require.Len(t, postcards, 1)
	assert.Equal(t, "p1", postcards[0].ID)
	assert.InDelta(t, 35.7, postcards[0].CurrentPosition.Lat.Float64(), 1e-9)
}

func TestGetNearbyOmitsZeroRadius(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("radius"))
		w.Write([]byte(`[]`))
	}, "token-a")

	postcards, err := c.GetNearby(context.Background(), 35.0, 135.0, 0)
	require.NoError(t, err)
	assert.Empty(t, postcards)
}

func TestGetMyPostcardsUnwrapsEnvelope(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/postcards/my", r.URL.Path)
		w.Write([]byte(`{"postcards":[{"postcard_id":"p1"},{"postcard_id":"p2"}]}`))
	}, "token-a")

	postcards, err := c.GetMyPostcards(context.Background())
	require.NoError(t, err)
	assert.Len(t, postcards, 2)
}

func TestGetDetail(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/postcards/p1", r.URL.Path)
		w.Write([]byte(`{
			"postcard_id":"p1","text":"hello","likes_count":3,
			"current_position":{"lat":35.02,"lon":135.75},
			"path":[{"prefecture":"京都府","lat":35.02,"lon":135.75,"arrival_time":"2026-08-30T10:00:00Z"}]
		}`))
	}, "token-a")

	detail, err := c.GetDetail(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, detail.LikesCount)
	require.Len(t, detail.Path, 1)
	assert.Equal(t, "京都府", detail.Path[0].Prefecture)
}

func TestTokenProviderErrorAborts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, func(ctx context.Context) (string, error) {
		return "", assert.AnError
	})

	_, err := c.GetMyProfile(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, called, "request must not be sent when the token provider fails")
}
