package websocket

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Charlescifix/gdpr-safe-rag/internal/config"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is a single event feed subscriber.
type Client struct {
	ID           string
	conn         *websocket.Conn
	send         chan Event
	subscription *SubscriptionRequest
	mu           sync.Mutex
}

// Hub maintains the set of subscribers and fans events out to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Event
	register   chan *Client
	unregister chan *Client
	upgrader   websocket.Upgrader
	config     config.WebSocketConfig
	logger     *zap.Logger
	mu         sync.RWMutex

	totalConnections int64
	totalBroadcasts  int64
}

// Stats reports hub activity.
type Stats struct {
	ActiveConnections int   `json:"active_connections"`
	TotalConnections  int64 `json:"total_connections"`
	TotalBroadcasts   int64 `json:"total_broadcasts"`
}

// NewHub creates an event feed hub.
func NewHub(cfg config.WebSocketConfig, logger *zap.Logger) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		config:     cfg,
		logger:     logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// Run processes registrations and broadcasts until the process exits.
func (h *Hub) Run() {
	h.logger.Info("Starting event feed hub", zap.String("component", "websocket"))

	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case event := <-h.broadcast:
			h.broadcastEvent(event)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.totalConnections++
	active := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("Feed client connected",
		zap.String("component", "websocket"),
		zap.String("client_id", client.ID),
		zap.Int("active_connections", active))

	h.Broadcast(Event{
		Type:      EventTypeConnection,
		Timestamp: time.Now().UTC(),
		Data:      ConnectionEvent{Action: "connected", ClientID: client.ID},
	})
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	active := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}

	h.logger.Info("Feed client disconnected",
		zap.String("component", "websocket"),
		zap.String("client_id", client.ID),
		zap.Int("active_connections", active))

	h.Broadcast(Event{
		Type:      EventTypeConnection,
		Timestamp: time.Now().UTC(),
		Data:      ConnectionEvent{Action: "disconnected", ClientID: client.ID},
	})
}

func (h *Hub) broadcastEvent(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.totalBroadcasts++
	for client := range h.clients {
		if !client.wants(event.Type) {
			continue
		}
		select {
		case client.send <- event:
		default:
			// Slow consumer, drop the connection.
			h.logger.Warn("Feed client send buffer full, closing",
				zap.String("component", "websocket"),
				zap.String("client_id", client.ID))
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// Broadcast queues an event for delivery to subscribers. Events are
// dropped rather than blocking detection traffic.
func (h *Hub) Broadcast(event Event) {
	select {
	case h.broadcast <- event:
	default:
		h.logger.Warn("Broadcast channel full, dropping event",
			zap.String("component", "websocket"),
			zap.String("event_type", string(event.Type)))
	}
}

// BroadcastDetection publishes a detection summary to the feed.
func (h *Hub) BroadcastDetection(event DetectionEvent) {
	h.Broadcast(Event{
		Type:      EventTypeDetection,
		Timestamp: time.Now().UTC(),
		Data:      event,
	})
}

func (c *Client) wants(eventType EventType) bool {
	c.mu.Lock()
	sub := c.subscription
	c.mu.Unlock()

	if sub == nil {
		return true
	}
	for _, t := range sub.Events {
		if t == eventType {
			return true
		}
	}
	return false
}

// HandleWebSocket upgrades an HTTP request into a feed subscription.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection",
			zap.String("component", "websocket"),
			zap.Error(err))
		return
	}

	client := &Client{
		ID:   fmt.Sprintf("client_%d", time.Now().UnixNano()),
		conn: conn,
		send: make(chan Event, 256),
	}

	h.register <- client

	go h.writePump(client)
	go h.readPump(client)
}

func (h *Hub) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case event, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteJSON(event); err != nil {
				h.logger.Error("Failed to write feed message",
					zap.String("component", "websocket"),
					zap.String("client_id", client.ID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister <- client
		client.conn.Close()
	}()

	client.conn.SetReadLimit(maxMessageSize)
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg ClientMessage
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("Feed read error",
					zap.String("component", "websocket"),
					zap.String("client_id", client.ID),
					zap.Error(err))
			}
			break
		}
		h.handleClientMessage(client, msg)
	}
}

func (h *Hub) handleClientMessage(client *Client, msg ClientMessage) {
	switch msg.Type {
	case "subscribe":
		data, err := json.Marshal(msg.Data)
		if err != nil {
			return
		}
		var sub SubscriptionRequest
		if err := json.Unmarshal(data, &sub); err != nil {
			return
		}
		client.mu.Lock()
		client.subscription = &sub
		client.mu.Unlock()
		h.logger.Info("Feed subscription updated",
			zap.String("component", "websocket"),
			zap.String("client_id", client.ID))
	case "ping":
		select {
		case client.send <- Event{Type: "pong", Timestamp: time.Now().UTC()}:
		default:
		}
	}
}

// GetStats returns current hub statistics.
func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		ActiveConnections: len(h.clients),
		TotalConnections:  h.totalConnections,
		TotalBroadcasts:   h.totalBroadcasts,
	}
}
