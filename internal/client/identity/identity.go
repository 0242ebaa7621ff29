// Package identity orchestrates calls into the managed identity
// provider. The Provider interface keeps the backend swappable; the
// production implementation talks to Cognito.
package identity

import (
	"context"
	"time"
)

// Session holds the tokens of a signed-in user
type Session struct {
	IDToken      string    `json:"id_token"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Expired reports whether the session's tokens are past their lifetime
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Provider is the identity backend behind login, registration,
// confirmation codes, password reset and logout.
type Provider interface {
	Register(ctx context.Context, email, password string) error
	ConfirmRegistration(ctx context.Context, email, code string) error
	ResendConfirmationCode(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*Session, error)
	Refresh(ctx context.Context, refreshToken string) (*Session, error)
	ForgotPassword(ctx context.Context, email string) error
	ConfirmForgotPassword(ctx context.Context, email, code, newPassword string) error
	Logout(ctx context.Context, accessToken string) error
}
