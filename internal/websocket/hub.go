package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/freelancer-ai/analysis-api/internal/logger"
	"github.com/freelancer-ai/analysis-api/internal/metrics"
)

// Hub maintains the set of active clients and delivers analysis progress to
// every connection of a session
type Hub struct {
	// Registered clients by session ID
	clients map[string]map[*Client]bool

	// Inbound messages from the clients
	broadcast chan []byte

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Fechado por Stop; encerra Run e desbloqueia quem envia ao hub
	done     chan struct{}
	stopOnce sync.Once

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Logger
	logger *zerolog.Logger
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	// The websocket connection
	conn *websocket.Conn

	// Buffered channel of outbound messages
	Send chan []byte

	// Session that receives progress for its analyses
	SessionID string
	ClientIP  string

	// Hub reference
	Hub *Hub

	// Connection metadata
	ConnectedAt time.Time
	LastPing    time.Time

	closeOnce sync.Once
}

// StageUpdate is one step of an analysis in progress
type StageUpdate struct {
	Type       string    `json:"type"`
	AnalysisID string    `json:"analysis_id,omitempty"`
	Stage      string    `json:"stage"`
	Step       int       `json:"step"`
	TotalSteps int       `json:"total_steps"`
	Message    string    `json:"message,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Progress   float64   `json:"progress"` // 0-100 percentage
}

// Message represents a generic WebSocket message
type Message struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512

	sendBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.Global(),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// Stop ends Run and closes every client. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
	h.logger.Info().Msg("WebSocket hub stopped")
}

// join entrega o cliente ao laço; falso quando o hub já parou
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// registerClient registers a new client
func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.clients[client.SessionID] == nil {
		h.clients[client.SessionID] = make(map[*Client]bool)
	}
	h.clients[client.SessionID][client] = true

	metrics.Get().IncrementWSConnection()

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("session_connections", len(h.clients[client.SessionID])).
		Msg("WebSocket client registered")

	welcome := Message{
		Type:      "connection",
		Data:      map[string]string{"status": "connected", "session_id": client.SessionID},
		Timestamp: time.Now(),
	}
	client.SendMessage(welcome)
}

// unregisterClient unregisters a client
func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.removeLocked(client)
}

// removeLocked remove o cliente; exige h.mutex travado para escrita
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}

	delete(clients, client)
	client.closeSend()
	metrics.Get().DecrementWSConnection()

	if len(clients) == 0 {
		delete(h.clients, client.SessionID)
	}

	h.logger.Info().
		Str("session_id", client.SessionID).
		Int("remaining_connections", len(clients)).
		Msg("WebSocket client unregistered")
}

// broadcastMessage broadcasts a message to all connected clients
func (h *Hub) broadcastMessage(message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sessionID, clients := range h.clients {
		for client := range clients {
			select {
			case client.Send <- message:
			default:
				h.logger.Warn().
					Str("session_id", sessionID).
					Msg("Failed to send message to client, closing connection")
				h.removeLocked(client)
			}
		}
	}
}

// Broadcast queues a message for every connected client
func (h *Hub) Broadcast(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to marshal broadcast message")
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// SendToSession sends a message to all connections of a session
func (h *Hub) SendToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to marshal message for session")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	clients, exists := h.clients[sessionID]
	if !exists {
		h.logger.Debug().
			Str("session_id", sessionID).
			Msg("No WebSocket connections found for session")
		return
	}

	for client := range clients {
		select {
		case client.Send <- data:
			metrics.Get().IncrementWSMessageOut()
		default:
			h.logger.Warn().
				Str("session_id", sessionID).
				Msg("Failed to send message to session client, closing connection")
			h.removeLocked(client)
		}
	}
}

// SendProgress sends a stage update to a session
func (h *Hub) SendProgress(sessionID string, update StageUpdate) {
	update.Type = "progress"
	update.Timestamp = time.Now()

	if update.TotalSteps > 0 {
		update.Progress = float64(update.Step) / float64(update.TotalSteps) * 100
	}

	h.SendToSession(sessionID, update)
}

// GetConnectedSessions returns the sessions with at least one connection
func (h *Hub) GetConnectedSessions() []string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	sessions := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// GetConnectionCount returns the total number of active connections
func (h *Hub) GetConnectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}

// GetSessionConnectionCount returns the number of connections of a session
func (h *Hub) GetSessionConnectionCount(sessionID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients[sessionID])
}

// RegisterClient is a public method to register a client (for testing)
func (h *Hub) RegisterClient(client *Client) {
	h.registerClient(client)
}

// UnregisterClient is a public method to unregister a client (for testing)
func (h *Hub) UnregisterClient(client *Client) {
	h.unregisterClient(client)
}
