package api

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub maintains the set of active websocket clients and fans out messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	log        *zap.Logger

	mu sync.RWMutex
}

// NewHub creates a hub. Call Run to start it.
func NewHub(log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run services registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.log.Debug("websocket client registered", zap.String("remote", c.remote()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				h.log.Debug("websocket client unregistered", zap.String("remote", c.remote()))
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// Slow consumer; drop it rather than stall the tick.
					h.log.Warn("websocket client too slow, removing", zap.String("remote", c.remote()))
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// add hands c to the Run loop. It fails when the hub has stopped or ctx
// ends first, for example because Run was never started.
func (h *Hub) add(ctx context.Context, c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (h *Hub) remove(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a typed message for every client. It never blocks; when
// the queue is full the message is dropped.
func (h *Hub) Broadcast(kind string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{"type": kind, "payload": payload})
	if err != nil {
		h.log.Warn("websocket marshal failed", zap.String("type", kind), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Debug("websocket broadcast dropped", zap.String("type", kind))
	}
}
