// Package realtime pushes notification events to connected browser sessions.
package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoSubscribers is returned when the user has no open connection.
var ErrNoSubscribers = errors.New("realtime: user has no open connections")

// Emitter pushes a payload to every session of one user.
type Emitter interface {
	EmitToUser(userID string, payload any) error
}

// MessageType identifies the kind of envelope sent to clients.
type MessageType string

const (
	TypeNotification MessageType = "notification"
	TypePong         MessageType = "pong"
)

// Message is the envelope written to the socket.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload,omitempty"`
}

// Hub tracks open clients per user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client for its user.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.logger.Debug("realtime client connected", zap.String("user_id", c.userID), zap.Int("sessions", len(set)))
}

// Unregister removes a client and closes its send queue once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// EmitToUser implements Emitter. Clients whose queue is full are dropped.
func (h *Hub) EmitToUser(userID string, payload any) error {
	data, err := json.Marshal(Message{Type: TypeNotification, Timestamp: time.Now().UTC(), Payload: payload})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[userID]
	if len(set) == 0 {
		return ErrNoSubscribers
	}
	for c := range set {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("realtime client queue full, dropping", zap.String("user_id", userID))
			h.removeLocked(c)
		}
	}
	return nil
}

// deliver queues data for a single client if it is still registered.
func (h *Hub) deliver(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c.userID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// Sessions returns the number of open connections for a user.
func (h *Hub) Sessions(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
