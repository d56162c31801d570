package health

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/nba-comps/internal/logger"
)

func dialEvents(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestEventHubPublish(t *testing.T) {
	hub := NewEventHub(logger.Discard())
	ts := newTestServer(Config{Events: hub})
	defer ts.Close()

	conn := dialEvents(t, ts)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish("refresh", map[string]any{"season": "2016-17", "projected": 412})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "refresh", ev.Type)
	assert.Equal(t, "2016-17", ev.Data["season"])
	assert.Equal(t, float64(412), ev.Data["projected"])
}

func TestEventHubRemovesClosedClients(t *testing.T) {
	hub := NewEventHub(logger.Discard())
	ts := newTestServer(Config{Events: hub})
	defer ts.Close()

	conn := dialEvents(t, ts)
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEventHubClose(t *testing.T) {
	hub := NewEventHub(logger.Discard())
	ts := newTestServer(Config{Events: hub})
	defer ts.Close()

	conn := dialEvents(t, ts)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.Subscribers())

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestEventHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewEventHub(logger.Discard())
	hub.Publish("refresh", nil)
	assert.Equal(t, 0, hub.Subscribers())
}
