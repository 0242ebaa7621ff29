// Package api is a typed HTTP client for the Postcard backend. Every
// call is authenticated with a bearer token obtained from a pluggable
// token provider, so the identity backend never leaks into call sites.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"postcard-backend/internal/models"
)

// Sentinel errors mapped from response status codes.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
)

// TokenProvider returns the current bearer token. An empty token with a
// nil error means "no session"; requests are then sent unauthenticated
// and the server answers 401.
type TokenProvider func(ctx context.Context) (string, error)

// Client is a Postcard API client
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenProvider
}

// New creates a client for the given base URL
func New(baseURL string, token TokenProvider) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// TokenResponse is the result of a token exchange
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
}

// ExchangeToken trades an identity-provider ID token for an API token
func (c *Client) ExchangeToken(ctx context.Context, idToken string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/token",
		map[string]string{"id_token": idToken}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyProfile fetches the signed-in user's profile. Returns
// ErrNotFound until profile setup has been completed.
func (c *Client) GetMyProfile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProfileRequest is the body for profile create/update
type ProfileRequest struct {
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// CreateProfile completes profile setup
func (c *Client) CreateProfile(ctx context.Context, req ProfileRequest) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodPost, "/api/users", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile updates the signed-in user's profile
func (c *Client) UpdateProfile(ctx context.Context, req ProfileRequest) error {
	return c.do(ctx, http.MethodPut, "/api/users/me", req, nil, true)
}

// GetPublicProfile fetches another user's public profile
func (c *Client) GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	var out models.PublicProfile
	err := c.do(ctx, http.MethodGet, "/api/users/"+url.PathEscape(userID), nil, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePostcardRequest is the body of postcard creation
type CreatePostcardRequest struct {
	ImageURL string  `json:"image_url"`
	Text     string  `json:"text"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
}

// CreatePostcardResponse is the result of postcard creation
type CreatePostcardResponse struct {
	PostcardID string    `json:"postcard_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreatePostcard creates a new postcard at the given position
func (c *Client) CreatePostcard(ctx context.Context, req CreatePostcardRequest) (*CreatePostcardResponse, error) {
	var out CreatePostcardResponse
	if err := c.do(ctx, http.MethodPost, "/api/postcards", req, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMyPostcards lists the signed-in user's postcards
func (c *Client) GetMyPostcards(ctx context.Context) ([]*models.Postcard, error) {
	var out struct {
		Postcards []*models.Postcard `json:"postcards"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/postcards/my", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Postcards, nil
}

// GetNearby lists traveling postcards within radius meters of a point
func (c *Client) GetNearby(ctx context.Context, lat, lon float64, radius int) ([]*models.Postcard, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	if radius > 0 {
		q.Set("radius", strconv.Itoa(radius))
	}

	var out []*models.Postcard
	err := c.do(ctx, http.MethodGet, "/api/postcards/nearby?"+q.Encode(), nil, &out, true)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PostcardDetail is the full view of one postcard
type PostcardDetail struct {
	PostcardID      string             `json:"postcard_id"`
	ImageURL        string             `json:"image_url"`
	Text            string             `json:"text"`
	CreatedAt       time.Time          `json:"created_at"`
	AuthorID        string             `json:"author_id"`
	LikesCount      int                `json:"likes_count"`
	CurrentPosition models.Position    `json:"current_position"`
	Path            []models.PathPoint `json:"path"`
}

// GetDetail fetches one postcard with its travel path
func (c *Client) GetDetail(ctx context.Context, postcardID string) (*PostcardDetail, error) {
	var out PostcardDetail
	err := c.do(ctx, http.MethodGet, "/api/postcards/"+url.PathEscape(postcardID), nil, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Collect adds a postcard to the signed-in user's collection
func (c *Client) Collect(ctx context.Context, postcardID string) error {
	return c.do(ctx, http.MethodPost, "/api/postcards/"+url.PathEscape(postcardID)+"/collect", nil, nil, true)
}

// Like likes a postcard; ErrConflict when already liked
func (c *Client) Like(ctx context.Context, postcardID string) error {
	return c.do(ctx, http.MethodPost, "/api/postcards/"+url.PathEscape(postcardID)+"/like", nil, nil, true)
}

// GetCollection lists the signed-in user's collected postcards
func (c *Client) GetCollection(ctx context.Context) ([]*models.CollectionItem, error) {
	var out struct {
		Postcards []*models.CollectionItem `json:"postcards"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/collection", nil, &out, true); err != nil {
		return nil, err
	}
	return out.Postcards, nil
}

// PushSubscription is the serialized form sent to the backend
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// RegisterPushSubscription forwards a push subscription to the backend
func (c *Client) RegisterPushSubscription(ctx context.Context, sub *PushSubscription) error {
	return c.do(ctx, http.MethodPost, "/api/users/me/push-subscription", sub, nil, true)
}

// RemovePushSubscription tells the backend to drop the subscription
func (c *Client) RemovePushSubscription(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/users/me/push-subscription", nil, nil, true)
}

// UploadResponse carries a pre-signed upload URL
type UploadResponse struct {
	UploadURL string `json:"upload_url"`
	ImageURL  string `json:"image_url"`
	ExpiresIn int    `json:"expires_in"`
}

// RequestUpload asks the backend for a pre-signed image upload URL
func (c *Client) RequestUpload(ctx context.Context, contentType string) (*UploadResponse, error) {
	var out UploadResponse
	err := c.do(ctx, http.MethodPost, "/api/uploads",
		map[string]string{"content_type": contentType}, &out, true)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage PUTs image bytes to a pre-signed URL
func (c *Client) UploadImage(ctx context.Context, uploadURL, contentType string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if authed && c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("failed to obtain token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return err
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func statusError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	}

	var body ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return fmt.Errorf("server error (status %d): %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server error (status %d)", resp.StatusCode)
}

// ErrorResponse is the server's error body shape
type ErrorResponse struct {
	Error string `json:"error"`
}
