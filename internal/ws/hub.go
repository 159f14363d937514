package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"whatsapp-engine/internal/message"
	"whatsapp-engine/internal/window"
	"whatsapp-engine/pkg/logger"
)

const (
	EventNewMessage   = "new_message"
	EventStatusUpdate = "status_update"
	EventWindowUpdate = "window_update"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS middleware guards the HTTP surface
	},
}

// Client represents a connected WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts events to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
	}
}

// Run dispatches events until ctx is cancelled. On return every client's
// send channel is closed, which closes its connection.
func (h *Hub) Run(ctx context.Context) {
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
			logger.Debug().Msg("WebSocket client registered")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			logger.Debug().Msg("WebSocket client unregistered")
		case payload := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- payload:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount reports how many clients are connected
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

type WSEvent struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// BroadcastEvent queues an event; it drops the event when the hub is saturated
func (h *Hub) BroadcastEvent(eventType string, data any) {
	payload, err := json.Marshal(WSEvent{Type: eventType, Data: data})
	if err != nil {
		logger.Error().Err(err).Str("event", eventType).Msg("Error marshaling WS event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		logger.Warn().Str("event", eventType).Msg("WebSocket hub saturated, dropping event")
	}
}

type messageEvent struct {
	Message message.Classified `json:"message"`
	Window  window.Snapshot    `json:"window"`
}

func (h *Hub) NotifyMessage(msg message.Classified, snapshot window.Snapshot) {
	h.BroadcastEvent(EventNewMessage, messageEvent{Message: msg, Window: snapshot})
}

func (h *Hub) NotifyStatus(id string, status message.Status, at time.Time) {
	h.BroadcastEvent(EventStatusUpdate, map[string]any{
		"id":        id,
		"status":    status,
		"timestamp": at.UTC().Format(time.RFC3339),
	})
}

func (h *Hub) NotifyWindow(contactID string, snapshot window.Snapshot) {
	h.BroadcastEvent(EventWindowUpdate, map[string]any{
		"contact_id": contactID,
		"window":     snapshot,
	})
}

func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	for {
		// Inbound frames are ignored; reading keeps close frames flowing.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
