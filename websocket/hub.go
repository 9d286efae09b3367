package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"jukebox/types"
)

// Hub interface defines the methods for managing WebSocket connections
type Hub interface {
	Run(ctx context.Context)
	Broadcast(snapshot types.Snapshot)
	Watch(ctx context.Context, interval time.Duration, source func() types.Snapshot)
	RegisterClient(client *Client)
	UnregisterClient(client *Client)
	ClientCount() int
}

// hub maintains the set of active clients and broadcasts snapshots to them
type hub struct {
	// Registered clients
	clients map[*Client]bool

	// Broadcast channel for sending messages to all clients
	broadcast chan types.StateMessage

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	mu sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() Hub {
	return &hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan types.StateMessage, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main event loop
func (h *hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Debug().Str("client", client.id).Msg("WebSocket client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Debug().Str("client", client.id).Msg("WebSocket client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a snapshot to every connected client
func (h *hub) Broadcast(snapshot types.Snapshot) {
	message := NewStateMessage(snapshot)

	select {
	case h.broadcast <- message:
	default:
		log.Warn().Msg("WebSocket broadcast channel full, dropping snapshot")
	}
}

// Watch polls source and broadcasts whenever the snapshot changes
func (h *hub) Watch(ctx context.Context, interval time.Duration, source func() types.Snapshot) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := source()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := source()
			if !current.Equal(last) {
				h.Broadcast(current)
				last = current
			}
		}
	}
}

// RegisterClient registers a new client with the hub
func (h *hub) RegisterClient(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// UnregisterClient unregisters a client from the hub
func (h *hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients
func (h *hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NewStateMessage wraps a snapshot for the wire
func NewStateMessage(snapshot types.Snapshot) types.StateMessage {
	return types.StateMessage{
		Type:      "snapshot",
		Snapshot:  snapshot,
		Timestamp: time.Now(),
	}
}
