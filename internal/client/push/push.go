package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"postcard-backend/internal/client/api"
)

// defaultTitle is shown when an incoming payload carries no title
const defaultTitle = "絵葉書通知"

// defaultURL is opened when a notification carries no target URL
const defaultURL = "/collection"

// DecodeVAPIDKey decodes a base64url-encoded VAPID public key into
// raw bytes. Both padded and unpadded inputs are accepted.
func DecodeVAPIDKey(key string) ([]byte, error) {
	trimmed := strings.TrimRight(key, "=")
	raw, err := base64.RawURLEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode VAPID key: %w", err)
	}
	return raw, nil
}

// NewSubscription generates the client half of a push subscription:
// a P-256 key pair plus a 16-byte auth secret, encoded the way the
// push service expects them.
func NewSubscription(endpoint string) (*api.PushSubscription, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subscription key: %w", err)
	}

	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		return nil, fmt.Errorf("failed to generate auth secret: %w", err)
	}

	sub := &api.PushSubscription{Endpoint: endpoint}
	sub.Keys.P256dh = base64.RawURLEncoding.EncodeToString(priv.PublicKey().Bytes())
	sub.Keys.Auth = base64.RawURLEncoding.EncodeToString(auth)
	return sub, nil
}

// Notification is a parsed push payload ready for display
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon,omitempty"`
	Badge string `json:"badge,omitempty"`
	URL   string `json:"url,omitempty"`
}

// snsEnvelope is the wrapper SNS puts around a published message
type snsEnvelope struct {
	Message string `json:"Message"`
}

// ParsePayload turns a raw push payload into a Notification. JSON
// payloads are used directly; an SNS envelope is unwrapped and its
// inner Message parsed again; anything unparseable becomes the body
// of a notification with the default title.
func ParsePayload(payload []byte) Notification {
	var n Notification
	if err := json.Unmarshal(payload, &n); err == nil && (n.Title != "" || n.Body != "") {
		return applyDefaults(n)
	}

	var envelope snsEnvelope
	if err := json.Unmarshal(payload, &envelope); err == nil && envelope.Message != "" {
		inner := Notification{}
		if err := json.Unmarshal([]byte(envelope.Message), &inner); err == nil && (inner.Title != "" || inner.Body != "") {
			return applyDefaults(inner)
		}
		return applyDefaults(Notification{Body: envelope.Message})
	}

	return applyDefaults(Notification{Body: string(payload)})
}

func applyDefaults(n Notification) Notification {
	if n.Title == "" {
		n.Title = defaultTitle
	}
	if n.URL == "" {
		n.URL = defaultURL
	}
	return n
}

// Registrar registers and removes push subscriptions on the server
type Registrar interface {
	RegisterPushSubscription(ctx context.Context, sub *api.PushSubscription) error
	RemovePushSubscription(ctx context.Context) error
}

// Manager handles the subscribe lifecycle. Subscription is attempted
// at most once per session; a failed attempt is logged and not
// retried until the next session.
type Manager struct {
	client   Registrar
	endpoint string

	mu         sync.Mutex
	sub        *api.PushSubscription
	attempted  bool
	subscribed bool
}

func NewManager(client Registrar, endpoint string) *Manager {
	return &Manager{client: client, endpoint: endpoint}
}

// EnsureSubscribed subscribes on the first call and is a no-op
// afterwards, whether or not the first attempt succeeded.
func (m *Manager) EnsureSubscribed(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.attempted {
		return
	}
	m.attempted = true

	if err := m.subscribeLocked(ctx); err != nil {
		log.Warn().Err(err).Msg("push subscription failed")
	}
}

// Subscribe generates a subscription and registers it with the server
func (m *Manager) Subscribe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempted = true
	return m.subscribeLocked(ctx)
}

func (m *Manager) subscribeLocked(ctx context.Context) error {
	sub, err := NewSubscription(m.endpoint)
	if err != nil {
		return err
	}
	if err := m.client.RegisterPushSubscription(ctx, sub); err != nil {
		return fmt.Errorf("failed to register subscription: %w", err)
	}
	m.sub = sub
	m.subscribed = true
	log.Info().Str("endpoint", sub.Endpoint).Msg("push subscription registered")
	return nil
}

// Unsubscribe removes the server-side subscription
func (m *Manager) Unsubscribe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.client.RemovePushSubscription(ctx); err != nil {
		return fmt.Errorf("failed to remove subscription: %w", err)
	}
	m.sub = nil
	m.subscribed = false
	return nil
}

// Subscribed reports whether a subscription is currently registered
func (m *Manager) Subscribed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subscribed
}
