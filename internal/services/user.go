package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"postcard-backend/internal/models"
	"postcard-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
)

const jwtExpDays = 30

// ErrForbidden is returned when a user acts on a resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ExternalTokenVerifier verifies an identity-provider token and returns
// the stable subject and email it asserts. The production implementation
// checks Cognito ID tokens against the pool's JWKS; tests substitute a stub.
type ExternalTokenVerifier interface {
	Verify(ctx context.Context, token string) (subject, email string, err error)
}

// UserService handles user-related business logic
type UserService struct {
	userRepo    *repository.UserRepository
	jwtSecret   string
	extVerifier ExternalTokenVerifier
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, jwtSecret string, extVerifier ExternalTokenVerifier) *UserService {
	return &UserService{
		userRepo:    userRepo,
		jwtSecret:   jwtSecret,
		extVerifier: extVerifier,
	}
}

// GenerateJWT generates an API token carrying the user's identity.
// The email claim rides along so profile setup can record it without a
// second trip to the identity provider.
func (s *UserService) GenerateJWT(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().AddDate(0, 0, jwtExpDays).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateJWT validates a JWT token and returns the user ID and email
func (s *UserService) ValidateJWT(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return "", "", fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return "", "", fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return "", "", fmt.Errorf("user_id not found in token")
	}
	email, _ := claims["email"].(string)

	return userID, email, nil
}

// ExchangeToken verifies an identity-provider token and mints an API
// token bound to the same subject. The subject becomes the user ID, so
// a user keeps their identity across profile deletion and re-setup.
func (s *UserService) ExchangeToken(ctx context.Context, externalToken string) (apiToken, userID string, err error) {
	subject, email, err := s.extVerifier.Verify(ctx, externalToken)
	if err != nil {
		return "", "", fmt.Errorf("external token rejected: %w", err)
	}

	apiToken, err = s.GenerateJWT(subject, email)
	if err != nil {
		return "", "", err
	}
	return apiToken, subject, nil
}

// CreateProfile creates the profile for a user. Profile setup is a
// mandatory onboarding step; until it happens GetProfile reports not found.
func (s *UserService) CreateProfile(ctx context.Context, userID, email, username, profileImageURL string) (*models.User, error) {
	user := &models.User{
		ID:              userID,
		Username:        username,
		Email:           email,
		ProfileImageURL: profileImageURL,
		CreatedAt:       time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return user, nil
}

// GetProfile retrieves a user's own profile
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetPublicProfile retrieves the public view of any user
func (s *UserService) GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// UpdateProfile updates a user's own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID, username, profileImageURL string) error {
	return s.userRepo.Update(ctx, userID, username, profileImageURL)
}

// DeleteProfile removes a user's own profile
func (s *UserService) DeleteProfile(ctx context.Context, userID string) error {
	return s.userRepo.Delete(ctx, userID)
}
