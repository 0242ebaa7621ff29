package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hubPair dials a real WebSocket through an httptest server and hands
// both ends back, with the server side registered in the hub.
func hubPair(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	var once sync.Once
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		once.Do(func() { hub.Register(userID, conn) })
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	// Registration happens in the handler goroutine.
	require.Eventually(t, func() bool { return hub.IsOnline(userID) },
		time.Second, 10*time.Millisecond)
	return client
}

func TestHubSendToUser(t *testing.T) {
	hub := NewHub()
	client := hubPair(t, hub, "u1")

	err := hub.SendToUser("u1", Event{Type: EventPostcardCollected, PostcardID: "p1", CollectorID: "u2"})
	require.NoError(t, err)

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, raw, err := client.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, EventPostcardCollected, event.Type)
	assert.Equal(t, "p1", event.PostcardID)
	assert.Equal(t, "u2", event.CollectorID)
	assert.NotZero(t, event.Timestamp)
}

func TestHubSendToDisconnectedUser(t *testing.T) {
	hub := NewHub()
	err := hub.SendToUser("nobody", Event{Type: EventPostcardMoved})
	assert.Error(t, err)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	c1 := hubPair(t, hub, "u1")
	c2 := hubPair(t, hub, "u2")

	hub.Broadcast(Event{Type: EventPostcardArrived, Prefecture: "京都府"})

	for _, client := range []*websocket.Conn{c1, c2} {
		client.SetReadDeadline(time.Now().Add(time.Second))
		_, raw, err := client.ReadMessage()
		require.NoError(t, err)

		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, "京都府", event.Prefecture)
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	hubPair(t, hub, "u1")

	hub.Unregister("u1")
	assert.False(t, hub.IsOnline("u1"))
	assert.Error(t, hub.SendToUser("u1", Event{Type: EventPostcardMoved}))
}
