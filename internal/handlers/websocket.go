// -----------------------------------------------------------------------
// WebSocket Handler - live streaming of run progress events
// -----------------------------------------------------------------------

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/herrold/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsClient is the per-connection state: a write mutex (gorilla allows one
// concurrent writer per conn) and this client's own step-event limiter
type wsClient struct {
	writeMu     sync.Mutex
	stepLimiter *rate.Limiter
}

// WebSocketHandler pushes run progress to connected clients: connected on
// join, then step/complete events per scenario and all-complete per suite
// run. Step events are throttled per client so a chatty scenario cannot
// flood a slow client without starving the others; connected, complete and
// all-complete events are always delivered.
type WebSocketHandler struct {
	logger           arbor.ILogger
	clients          map[*websocket.Conn]*wsClient
	mu               sync.RWMutex
	serverInstanceID string // clients use this to detect server restart
}

// NewWebSocketHandler creates the streaming handler
func NewWebSocketHandler(logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		logger:           logger,
		clients:          make(map[*websocket.Conn]*wsClient),
		serverInstanceID: uuid.New().String(),
	}
}

// HandleWebSocket handles GET /ws - upgrades and registers the client
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = &wsClient{
		stepLimiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 10),
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	h.send(conn, models.StreamEvent{
		Type:      models.EventConnected,
		Message:   h.serverInstanceID,
		Timestamp: time.Now(),
	})

	// Read pump exists only to notice the client going away
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast pushes one event to every connected client. Step events that
// exceed a client's limiter are dropped for that client only.
func (h *WebSocketHandler) Broadcast(event models.StreamEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		h.send(conn, event)
	}
}

// send writes one event to a client, dropping the client on write failure
func (h *WebSocketHandler) send(conn *websocket.Conn, event models.StreamEvent) {
	h.mu.RLock()
	client, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if event.Type == models.EventStep && !client.stepLimiter.Allow() {
		return
	}

	client.writeMu.Lock()
	err := conn.WriteJSON(event)
	client.writeMu.Unlock()

	if err != nil {
		h.logger.Debug().Err(err).Msg("WebSocket write failed, dropping client")
		h.remove(conn)
	}
}

func (h *WebSocketHandler) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}

// ClientCount returns the number of connected streaming clients
func (h *WebSocketHandler) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
