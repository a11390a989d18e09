// Package kissfeed pushes newly sent kisses to the couple's open browsers
// over WebSocket.
package kissfeed

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"ourforever/internal/store"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	sendBuffer = 32
)

// Event is the message written to listeners.
type Event struct {
	Type string     `json:"type"`
	Kiss store.Kiss `json:"kiss"`
}

// Hub tracks live connections per user account.
type Hub struct {
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// NewHub builds a Hub. checkOrigin may be nil to require same-origin requests.
func NewHub(logger zerolog.Logger, checkOrigin func(*http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		logger: logger,
		rooms:  make(map[string]map[*client]struct{}),
	}
}

// Publish sends kiss to every listener of userID. Slow listeners are dropped.
func (h *Hub) Publish(userID string, kiss store.Kiss) {
	payload, err := json.Marshal(Event{Type: "kiss", Kiss: kiss})
	if err != nil {
		h.logger.Error().Err(err).Msg("encode kiss event")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.rooms[userID] {
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.leave(c)
	}
}

// Listeners returns the number of open connections for userID.
func (h *Hub) Listeners(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Serve upgrades the request and streams kisses for userID until the
// connection closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	c := &client{hub: h, conn: conn, userID: userID, send: make(chan []byte, sendBuffer)}
	h.join(c)
	go c.writePump()
	go c.readPump()
}

func (h *Hub) join(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[c.userID] == nil {
		h.rooms[c.userID] = make(map[*client]struct{})
	}
	h.rooms[c.userID][c] = struct{}{}
}

// leave removes c and closes its send channel exactly once.
func (h *Hub) leave(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room := h.rooms[c.userID]
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, c.userID)
	}
	close(c.send)
}

type client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
}

// readPump discards client messages and keeps the read deadline fresh.
func (c *client) readPump() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(1024)
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

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
