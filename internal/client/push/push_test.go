package push

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postcard-backend/internal/client/api"
)

func TestDecodeVAPIDKey(t *testing.T) {
	// Padded and unpadded forms of the same key decode identically.
	raw := []byte{0x04, 0xde, 0xad, 0xbe, 0xef}
	unpadded := base64.RawURLEncoding.EncodeToString(raw)
	padded := base64.URLEncoding.EncodeToString(raw)

	got, err := DecodeVAPIDKey(unpadded)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeVAPIDKey(padded)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestDecodeVAPIDKeyURLSafeAlphabet(t *testing.T) {
	got, err := DecodeVAPIDKey("AbC-_12==")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	_, err = DecodeVAPIDKey("not+url+safe/")
	assert.Error(t, err)
}

func TestNewSubscriptionShape(t *testing.T) {
	sub, err := NewSubscription("https://push.example.com/ep")
	require.NoError(t, err)
	assert.Equal(t, "https://push.example.com/ep", sub.Endpoint)

	// Uncompressed P-256 point: 65 bytes, leading 0x04.
	p256dh, err := base64.RawURLEncoding.DecodeString(sub.Keys.P256dh)
	require.NoError(t, err)
	require.Len(t, p256dh, 65)
	assert.Equal(t, byte(0x04), p256dh[0])

	auth, err := base64.RawURLEncoding.DecodeString(sub.Keys.Auth)
	require.NoError(t, err)
	assert.Len(t, auth, 16)
}

func TestParsePayloadJSON(t *testing.T) {
	n := ParsePayload([]byte(`{"title":"届きました","body":"新しい絵葉書","url":"/postcards/1"}`))
	assert.Equal(t, "届きました", n.Title)
	assert.Equal(t, "新しい絵葉書", n.Body)
	assert.Equal(t, "/postcards/1", n.URL)
}

func TestParsePayloadSNSEnvelope(t *testing.T) {
	n := ParsePayload([]byte(`{"Message":"{\"title\":\"到着\",\"body\":\"京都に到着しました\"}"}`))
	assert.Equal(t, "到着", n.Title)
	assert.Equal(t, "京都に到着しました", n.Body)
}

func TestParsePayloadSNSEnvelopePlainMessage(t *testing.T) {
	n := ParsePayload([]byte(`{"Message":"Hello"}`))
	assert.Equal(t, "絵葉書通知", n.Title)
	assert.Equal(t, "Hello", n.Body)
	assert.Equal(t, "/collection", n.URL)
}

func TestParsePayloadRawText(t *testing.T) {
	n := ParsePayload([]byte("Hello"))
	assert.Equal(t, "絵葉書通知", n.Title)
	assert.Equal(t, "Hello", n.Body)
	assert.Equal(t, "/collection", n.URL)
}

func TestParsePayloadDefaultsOnMissingFields(t *testing.T) {
	n := ParsePayload([]byte(`{"body":"only a body"}`))
	assert.Equal(t, "絵葉書通知", n.Title)
	assert.Equal(t, "/collection", n.URL)
}

type fakeRegistrar struct {
	registers int
	removes   int
	err       error
}

func (f *fakeRegistrar) RegisterPushSubscription(ctx context.Context, sub *api.PushSubscription) error {
	f.registers++
	return f.err
}

func (f *fakeRegistrar) RemovePushSubscription(ctx context.Context) error {
	f.removes++
	return f.err
}

func TestEnsureSubscribedRunsOnce(t *testing.T) {
	reg := &fakeRegistrar{}
	m := NewManager(reg, "https://push.example.com/ep")

	m.EnsureSubscribed(context.Background())
	m.EnsureSubscribed(context.Background())

	assert.Equal(t, 1, reg.registers)
	assert.True(t, m.Subscribed())
}

func TestEnsureSubscribedDoesNotRetryFailure(t *testing.T) {
	reg := &fakeRegistrar{err: errors.New("boom")}
	m := NewManager(reg, "https://push.example.com/ep")

	m.EnsureSubscribed(context.Background())
	m.EnsureSubscribed(context.Background())

	assert.Equal(t, 1, reg.registers)
	assert.False(t, m.Subscribed())
}

func TestUnsubscribe(t *testing.T) {
	reg := &fakeRegistrar{}
	m := NewManager(reg, "https://push.example.com/ep")

	require.NoError(t, m.Subscribe(context.Background()))
	require.True(t, m.Subscribed())

	require.NoError(t, m.Unsubscribe(context.Background()))
	assert.Equal(t, 1, reg.removes)
	assert.False(t, m.Subscribed())
}
