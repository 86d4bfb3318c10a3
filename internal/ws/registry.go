// Package ws keeps one live WebSocket connection per user and pushes JSON
// messages to it.
package ws

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

type client struct {
	conn *websocket.Conn
	send chan any
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Registry maps users to their connection. A new connection for the same
// user replaces and closes the previous one.
type Registry struct {
	mu       sync.Mutex
	clients  map[uuid.UUID]*client
	upgrader websocket.Upgrader
}

func NewRegistry(allowedOrigins []string) *Registry {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return &Registry{
		clients: make(map[uuid.UUID]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}

				_, ok := origins[origin]
				_, wildcard := origins["*"]

				return ok || wildcard
			},
		},
	}
}

// Send queues msg for userID. It never blocks: the message is dropped when
// the user is not connected or their buffer is full.
func (r *Registry) Send(userID uuid.UUID, msg any) bool {
	r.mu.Lock()
	c, ok := r.clients[userID]
	r.mu.Unlock()

	if !ok {
		return false
	}

	select {
	case <-c.done:
		return false
	case c.send <- msg:
		return true
	default:
		slog.Warn("dropping websocket message, client buffer full", "user_id", userID)
		return false
	}
}

// Connected reports whether userID has a registered connection.
func (r *Registry) Connected(userID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.clients[userID]

	return ok
}

// Serve upgrades the request and blocks until the connection ends.
func (r *Registry) Serve(w http.ResponseWriter, req *http.Request, userID uuid.UUID) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan any, sendBuffer),
		done: make(chan struct{}),
	}

	r.register(userID, c)
	defer r.unregister(userID, c)

	go r.writeLoop(userID, c)

	r.readLoop(c)
}

func (r *Registry) register(userID uuid.UUID, c *client) {
	r.mu.Lock()
	prev := r.clients[userID]
	r.clients[userID] = c
	r.mu.Unlock()

	if prev != nil {
		prev.close()
	}

	slog.Info("websocket connected", "user_id", userID)
}

// unregister removes c only if it is still the user's current connection.
func (r *Registry) unregister(userID uuid.UUID, c *client) {
	r.mu.Lock()
	if r.clients[userID] == c {
		delete(r.clients, userID)
	}
	r.mu.Unlock()

	c.close()

	slog.Info("websocket disconnected", "user_id", userID)
}

// readLoop drains client frames so control messages are processed.
func (r *Registry) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (r *Registry) writeLoop(userID uuid.UUID, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Warn("websocket write failed", "user_id", userID, "error", err)
				c.close()

				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.close()
				return
			}
		}
	}
}

// Close drops every connection.
func (r *Registry) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[uuid.UUID]*client)
	r.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
