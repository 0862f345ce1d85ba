package realtime

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testOrigin = "http://localhost:5173"

// Pumps outlive the handler, so they must not log through a test-bound logger.
func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	verify := func(token string) (string, error) {
		if token == "good" {
			return "user-1", nil
		}
		return "", errors.New("bad token")
	}
	srv := NewServer("127.0.0.1:0", hub, verify, []string{testOrigin + "/"}, zap.NewNop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return hub, ts
}

func wsURL(ts *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + token
}

// dial connects as user-1 and waits for the session; cleanup closes the
// socket and waits until the server side has unregistered it.
func dial(t *testing.T, hub *Hub, ts *httptest.Server, header http.Header) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "good"), header)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = conn.Close()
		require.Eventually(t, func() bool { return hub.Sessions("user-1") == 0 }, 2*time.Second, 10*time.Millisecond)
	})
	require.Eventually(t, func() bool { return hub.Sessions("user-1") == 1 }, time.Second, 10*time.Millisecond)
	return conn
}

func TestServerRejectsInvalidToken(t *testing.T) {
	_, ts := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "bad"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServerDeliversNotifications(t *testing.T) {
	hub, ts := newTestServer(t)
	conn := dial(t, hub, ts, nil)

	require.NoError(t, hub.EmitToUser("user-1", map[string]string{"id": "n-1"}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	assert.Equal(t, TypeNotification, msg.Type)
}

func TestServerAnswersPing(t *testing.T) {
	hub, ts := newTestServer(t)
	conn := dial(t, hub, ts, nil)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"pong"`)
}

func TestServerUnregistersClosedSessions(t *testing.T) {
	hub, ts := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, "good"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Sessions("user-1") == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.Sessions("user-1") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, hub.EmitToUser("user-1", "late"), ErrNoSubscribers)
}

func TestServerChecksOrigin(t *testing.T) {
	hub, ts := newTestServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, "good"), http.Header{"Origin": {"https://evil.example.com"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, hub.Sessions("user-1"))

	dial(t, hub, ts, http.Header{"Origin": {"HTTP://localhost:5173"}})
}
