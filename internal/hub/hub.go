package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"socialnet/backend/internal/events"
)

// Event is what a connected client receives.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one open stream (an SSE response or a websocket) of a user.
type Client chan []byte

// Hub tracks the open streams of every online user. A user may have several.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe registers a new stream for userID. buffer is the number of
// events that may queue before further ones are dropped for this client.
func (h *Hub) Subscribe(userID uint, buffer int) Client {
	client := make(Client, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
	return client
}

// Unsubscribe removes a stream and closes its channel.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client)
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// Online reports how many streams userID has open.
func (h *Hub) Online(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Send delivers an event to every stream of userID.
func (h *Hub) Send(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}
	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub: marshal %s: %v", event.Type, err)
		return
	}

	for client := range clients {
		// A full buffer means the client is not reading; drop rather than block.
		select {
		case client <- messageBytes:
		default:
		}
	}
}

// Publish delivers a domain event to each of its recipients.
func (h *Hub) Publish(_ context.Context, e events.Event) {
	for _, userID := range e.Recipients {
		h.Send(userID, Event{Type: e.Type, Payload: e.Payload})
	}
}
