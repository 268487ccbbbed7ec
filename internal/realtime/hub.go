package realtime

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
)

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

// Hub fans events out to connected websocket clients. Clients are addressable
// by user id and by subscribed topic ("project:<id>", "user:<id>"). Delivery is
// fire-and-forget: a client whose send buffer is full is skipped.
type Hub struct {
	clients map[string]*Client            // client id -> client
	topics  map[string]map[string]*Client // topic -> client id -> client

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		topics:  make(map[string]map[string]*Client),
	}
}

// RegisterClient adds the client synchronously, so a Subscribe right after
// always sees it.
func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()
	log.Printf("hub: client registered %s (user %s)", client.ID, client.UserID)
}

// UnregisterClient removes the client, drops its topic subscriptions and
// closes its send channel.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	if old, ok := h.clients[client.ID]; ok {
		delete(h.clients, client.ID)
		for topic, subs := range h.topics {
			delete(subs, client.ID)
			if len(subs) == 0 {
				delete(h.topics, topic)
			}
		}
		close(old.Send)
		log.Printf("hub: client unregistered %s", client.ID)
	}
	h.mu.Unlock()
}

// Subscribe adds the client to a topic. Safe to call from connection readers.
func (h *Hub) Subscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]*Client)
	}
	h.topics[topic][client.ID] = client
}

func (h *Hub) Unsubscribe(client *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, client.ID)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// SendToUser sends to every connection of the given user.
func (h *Hub) SendToUser(userID uuid.UUID, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("hub: marshal payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.UserID == userID {
			select {
			case client.Send <- payload:
			default:
				// full buffer, drop instead of blocking
			}
		}
	}
}

// Publish sends to every subscriber of a topic.
func (h *Hub) Publish(topic string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("hub: marshal payload: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.topics[topic] {
		select {
		case client.Send <- payload:
		default:
		}
	}
}
