package ws_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/finsight/internal/ws"
)

type message struct {
	Title string `json:"title"`
}

func newServer(t *testing.T, reg *ws.Registry) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reg.Serve(w, r, uuid.MustParse(r.URL.Query().Get("user")))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + userID.String()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestRegistry_Send(t *testing.T) {
	reg := ws.NewRegistry(nil)
	t.Cleanup(reg.Close)

	srv := newServer(t, reg)
	userID := uuid.New()

	assert.False(t, reg.Send(userID, message{Title: "nobody home"}))

	conn := dial(t, srv, userID)
	require.Eventually(t, func() bool { return reg.Connected(userID) }, time.Second, 10*time.Millisecond)

	assert.True(t, reg.Send(userID, message{Title: "Budget exceeded"}))

	var got message

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "Budget exceeded", got.Title)
}

func TestRegistry_LastConnectWins(t *testing.T) {
	reg := ws.NewRegistry(nil)
	t.Cleanup(reg.Close)

	srv := newServer(t, reg)
	userID := uuid.New()

	first := dial(t, srv, userID)
	require.Eventually(t, func() bool { return reg.Connected(userID) }, time.Second, 10*time.Millisecond)

	second := dial(t, srv, userID)

	require.NoError(t, first.SetReadDeadline(time.Now().Add(time.Second)))
	_, _, err := first.ReadMessage()
	require.Error(t, err)

	require.Eventually(t, func() bool {
		return reg.Send(userID, message{Title: "hello"})
	}, time.Second, 10*time.Millisecond)

	var got message

	require.NoError(t, second.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, second.ReadJSON(&got))
	assert.Equal(t, "hello", got.Title)
}

func TestRegistry_Disconnect(t *testing.T) {
	reg := ws.NewRegistry(nil)
	t.Cleanup(reg.Close)

	srv := newServer(t, reg)
	userID := uuid.New()

	conn := dial(t, srv, userID)
	require.Eventually(t, func() bool { return reg.Connected(userID) }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return !reg.Connected(userID) }, time.Second, 10*time.Millisecond)
}
