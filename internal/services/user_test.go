package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	s := NewUserService(nil, "test-secret", nil)

	token, err := s.GenerateJWT("user-1", "taro@example.com")
	require.NoError(t, err)

	userID, email, err := s.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "taro@example.com", email)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	issuer := NewUserService(nil, "secret-a", nil)
	verifier := NewUserService(nil, "secret-b", nil)

	token, err := issuer.GenerateJWT("user-1", "taro@example.com")
	require.NoError(t, err)

	_, _, err = verifier.ValidateJWT(token)
	assert.Error(t, err)
}

func TestValidateJWTRejectsUnsignedToken(t *testing.T) {
	s := NewUserService(nil, "test-secret", nil)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": "user-1",
	})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = s.ValidateJWT(raw)
	assert.Error(t, err)
}

func TestValidateJWTGarbage(t *testing.T) {
	s := NewUserService(nil, "test-secret", nil)
	_, _, err := s.ValidateJWT("not.a.token")
	assert.Error(t, err)
}

type fakeVerifier struct {
	subject string
	email   string
	err     error
}

func (f *fakeVerifier) Verify(ctx context.Context, token string) (string, string, error) {
	return f.subject, f.email, f.err
}

func TestExchangeToken(t *testing.T) {
	s := NewUserService(nil, "test-secret", &fakeVerifier{subject: "sub-123", email: "taro@example.com"})

	apiToken, userID, err := s.ExchangeToken(context.Background(), "external-id-token")
	require.NoError(t, err)
	assert.Equal(t, "sub-123", userID)

	// The minted token is bound to the verified subject.
	gotID, gotEmail, err := s.ValidateJWT(apiToken)
	require.NoError(t, err)
	assert.Equal(t, "sub-123", gotID)
	assert.Equal(t, "taro@example.com", gotEmail)
}

func TestExchangeTokenRejected(t *testing.T) {
	s := NewUserService(nil, "test-secret", &fakeVerifier{err: errors.New("bad signature")})

	_, _, err := s.ExchangeToken(context.Background(), "tampered")
	assert.Error(t, err)
}
