package live

import (
	"log"
	"sync"

	"github.com/vigia/backend/internal/cache"
)

// Hub maintains the set of connected dashboard clients and fans out the
// moderation event feed to them. The feed is broadcast-only; clients
// never send data upstream.
type Hub struct {
	clients map[*Client]bool

	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	redis *cache.RedisClient

	mu sync.RWMutex
}

func NewHub(redis *cache.RedisClient) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		redis:      redis,
	}
}

// Run starts the hub loop
func (h *Hub) Run() {
	go h.subscribeToRedis()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[FEED] Dashboard client connected (%s)", client.username)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[FEED] Dashboard client disconnected (%s)", client.username)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

// fanOut delivers one event to every connected client, dropping clients
// whose send buffer is full.
func (h *Hub) fanOut(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// subscribeToRedis relays the moderation event channel into the hub
func (h *Hub) subscribeToRedis() {
	pubsub := h.redis.SubscribeToEvents()
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.broadcast <- []byte(msg.Payload)
	}
}

// ClientCount reports how many dashboard clients are connected
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
