package websocket

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukerupert/liste/internal/model"
)

// ActionSnapshot is the only action the hub emits: a full collection.
const ActionSnapshot = "snapshot"

// Message carries a full snapshot of one collection. Clients keep the
// highest Version they have seen per entity and ignore older ones.
type Message struct {
	Type    string `json:"type"`
	Entity  string `json:"entity"`
	Action  string `json:"action"`
	Version uint64 `json:"version"`
	Items   any    `json:"items"`
}

// NewMessage creates a Message with the Type field derived from entity and action.
func NewMessage(entity, action string, version uint64, items any) Message {
	return Message{
		Type:    fmt.Sprintf("%s_%s", entity, action),
		Entity:  entity,
		Action:  action,
		Version: version,
		Items:   items,
	}
}

// SnapshotMessage wraps a feed snapshot.
func SnapshotMessage(snap model.Snapshot) Message {
	var items any = snap.Shopping
	if snap.Collection == model.CollectionGifts {
		items = snap.Gifts
	}
	return NewMessage(snap.Collection, ActionSnapshot, snap.Version, items)
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

// NewHub creates a new Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.RegisterWith(c, nil)
}

// RegisterWith adds a client and queues the messages returned by initial.
// initial runs without the hub lock, since producing a snapshot may publish
// through the hub. A broadcast can then reach the client before its initial
// messages; clients drop anything older than the version they hold.
func (h *Hub) RegisterWith(c *Client, initial func() []Message) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if initial == nil {
		return
	}
	msgs := initial()

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Error("marshal initial message", "error", err)
			continue
		}
		select {
		case c.send <- data:
		default:
		}
	}
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full, drop message to avoid blocking
		}
	}
}

// Publish broadcasts a snapshot. It has the shape of a feed publish hook.
func (h *Hub) Publish(snap model.Snapshot) {
	h.Broadcast(SnapshotMessage(snap))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
