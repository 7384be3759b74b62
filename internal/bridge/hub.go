package bridge

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Message is the envelope pushed to connected clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// wsConn serializes writes: gorilla allows only one concurrent writer per
// connection, and pushes arrive from independent bus callback goroutines.
type wsConn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *wsConn) write(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(msg)
}

// Hub tracks one websocket connection per user. Pushes to users who are
// not connected are dropped; they re-read their views on reconnect.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*wsConn
}

func NewHub() *Hub {
	return &Hub{conns: make(map[string]*wsConn)}
}

// Attach registers ws for userID, displacing any previous connection.
func (h *Hub) Attach(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	if old, ok := h.conns[userID]; ok {
		old.ws.Close()
	}
	h.conns[userID] = &wsConn{ws: ws}
	h.mu.Unlock()
	log.Printf("ws: user %s connected", userID)
}

// Detach drops the connection for userID if ws is still the active one.
func (h *Hub) Detach(userID string, ws *websocket.Conn) {
	h.mu.Lock()
	if c, ok := h.conns[userID]; ok && c.ws == ws {
		delete(h.conns, userID)
	}
	h.mu.Unlock()
	log.Printf("ws: user %s disconnected", userID)
}

func (h *Hub) Connected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.conns[userID]
	return ok
}

// Users returns the ids of all connected users.
func (h *Hub) Users() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]string, 0, len(h.conns))
	for id := range h.conns {
		out = append(out, id)
	}
	return out
}

// Push writes one message to userID's connection. Write failures only log;
// the read loop tears the connection down.
func (h *Hub) Push(userID string, msg Message) {
	h.mu.RLock()
	c, ok := h.conns[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.write(msg); err != nil {
		log.Printf("ws: push to %s: %v", userID, err)
	}
}
