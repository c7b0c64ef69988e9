package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/brk3/habitcal/internal/logger"
	"github.com/brk3/habitcal/internal/syncer"

	"github.com/coder/websocket"
)

const EventRender = "render"

// Event is pushed to every websocket client. Clients re-read whatever they
// display when they receive a render event.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans render notifications out to websocket clients. It satisfies
// syncer.Renderer.
type Hub struct {
	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]bool

	broadcast chan Event
}

var _ syncer.Renderer = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Event, 64),
	}
}

// Render queues a render event. It never blocks; when the queue is full the
// event is dropped since a queued one already tells clients to re-read.
func (h *Hub) Render() {
	select {
	case h.broadcast <- Event{Type: EventRender, Timestamp: time.Now()}:
	default:
	}
}

// Run delivers queued events until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.broadcast:
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Error("Failed to marshal event", "error", err)
				continue
			}

			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range clients {
				writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
				err := conn.Write(writeCtx, websocket.MessageText, data)
				cancel()
				if err != nil {
					logger.Debug("Dropping websocket client", "error", err)
					h.remove(conn)
				}
			}
		}
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.clientsMu.Unlock()
	logger.Debug("Client connected", "clients", count)

	// Clients only listen; CloseRead discards anything they send and cancels
	// ctx once the connection goes away.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()
	h.remove(conn)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	logger.Debug("Client disconnected", "clients", count)
}

func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
}
