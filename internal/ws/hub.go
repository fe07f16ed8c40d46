// Package ws pushes live platform events to connected browsers. Each
// account may hold several connections (multiple tabs); the hub fans out
// by account id and drops slow consumers instead of blocking.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/ethioska/sqboom/internal/logger"
)

// Envelope is the wire frame for every push.
type Envelope struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Push event types.
const (
	EventChat     = "chat"
	EventRate     = "rate"
	EventSettings = "settings"
	EventTheme    = "theme"
	EventBan      = "ban"
)

// Inbound is a decoded client frame.
type Inbound struct {
	Type       string `json:"type"`
	ReceiverID string `json:"receiverId,omitempty"`
	Text       string `json:"text,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool

	// onChat handles inbound chat frames. Installed once at startup.
	onChat func(senderID, receiverID, text string)
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]bool)}
}

// OnChat installs the inbound chat handler. Must be set before Serve is
// first called.
func (h *Hub) OnChat(fn func(senderID, receiverID, text string)) {
	h.onChat = fn
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.AccountID]
	if !ok {
		set = make(map[*Client]bool)
		h.clients[c.AccountID] = set
	}
	set[c] = true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.AccountID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.AccountID)
	}
}

// SendTo queues an event for every connection of one account.
func (h *Hub) SendTo(accountID, event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		logger.Error("failed to marshal push", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[accountID] {
		c.queue(data)
	}
}

// Broadcast queues an event for every connection.
func (h *Hub) Broadcast(event string, payload interface{}) {
	data, err := json.Marshal(Envelope{Type: event, Payload: payload})
	if err != nil {
		logger.Error("failed to marshal push", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.clients {
		for c := range set {
			c.queue(data)
		}
	}
}

// Connections reports how many live connections an account holds.
func (h *Hub) Connections(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

func (h *Hub) handleInbound(senderID string, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		logger.Debug("dropping malformed ws frame", "account", senderID, "error", err)
		return
	}
	if in.Type == EventChat && h.onChat != nil {
		h.onChat(senderID, in.ReceiverID, in.Text)
	}
}
