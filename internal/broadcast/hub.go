package broadcast

import (
	"context"
	"log/slog"
	"sync"
)

// Message is the wire shape pushed to every connected session.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

var _ Notifier = (*Hub)(nil)

// Hub maintains the set of active websocket clients and fans every published
// message out to all of them. There is one hub per process.
type Hub struct {
	logger     *slog.Logger
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger,
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run processes client lifecycle events and broadcasts until ctx is
// cancelled, then closes every remaining client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Websocket client connected", slog.Int("total_clients", total))

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Notify publishes one message to all currently connected sessions. It never
// blocks: when the buffer is full the message is dropped, matching the
// channel's no-delivery-guarantee contract.
func (h *Hub) Notify(event string, payload any) {
	message := Message{Type: event, Data: payload}
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("Broadcast channel full, dropping message", slog.String("event", event))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.logger.Info("Websocket client disconnected", slog.Int("total_clients", len(h.clients)))
	}
}

func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Slow consumer, drop it rather than stall the fan-out.
			close(client.send)
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.logger.Info("Closed all websocket clients during shutdown")
}
