package notify

import (
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	// sendBufferSize bounds per-client backlog; clients that fall behind
	// are dropped rather than blocking the hub.
	sendBufferSize = 16
)

// Hub fans out notification payloads to the websocket connections of each
// user. A user may hold several connections (multiple tabs or devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Client is one websocket connection owned by a user.
type Client struct {
	hub    *Hub
	userID uint
	conn   *websocket.Conn

	// mu guards closed and the close of send, so a concurrent push can
	// never land on a just-closed channel.
	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// NewClient wraps an upgraded connection and registers it with the hub.
// The caller must start the client's pumps with Run.
func (h *Hub) NewClient(userID uint, conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
	}
	h.register(client)
	return client
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if set, ok := h.clients[c.userID]; ok {
		if _, member := set[c]; member {
			delete(set, c)
			if len(set) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
	h.mu.Unlock()

	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
}

// trySend queues a payload unless the client is already closed or its
// buffer is full.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Push delivers a payload to every connection of the user. Connections
// whose send buffer is full are dropped. It returns the number of
// connections the payload was queued on.
func (h *Hub) Push(userID uint, payload []byte) int {
	h.mu.RLock()
	set := h.clients[userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, c := range clients {
		if c.trySend(payload) {
			delivered++
		} else {
			h.unregister(c)
			c.conn.Close()
		}
	}
	return delivered
}

// ConnectionCount returns the number of open connections across all users.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Run starts the client's read and write pumps. It returns when the
// connection closes.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

// readPump discards inbound frames and keeps the pong deadline fresh.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("Websocket read error for user %d: %v", c.userID, err)
			}
			return
		}
	}
}

// writePump forwards queued payloads and pings the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
