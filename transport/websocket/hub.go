package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/wricardo/match3/game/engine"
	"github.com/wricardo/match3/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Queued broadcasts before new ones are dropped
	broadcastBuffer = 256
)

// Events sent to clients
const (
	EventEffect  = "effect"
	EventBoard   = "board"
	EventNewGame = "new_game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins in development
		return true
	},
}

// Message is one frame sent to clients
type Message struct {
	Event  string                 `json:"event"`
	MoveID string                 `json:"move_id,omitempty"`
	Effect *engine.Effect[string] `json:"effect,omitempty"`
	Board  [][]string             `json:"board,omitempty"`
}

// Client represents a WebSocket client
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	clients map[*Client]bool

	// Outbound messages for every client
	broadcast chan *Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Optional board sent to each client when it connects
	snapshot func() ([][]string, bool)

	count  atomic.Int32
	logger *zap.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithSnapshot makes the hub greet each new client with a board message built
// from fn. fn returns false when there is no board to send.
func WithSnapshot(fn func() ([][]string, bool)) HubOption {
	return func(h *Hub) {
		h.snapshot = fn
	}
}

// NewHub creates a new WebSocket hub
func NewHub(logger *zap.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run starts the hub's event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.unregisterClient(client)
			}
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

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	return int(h.count.Load())
}

// ServeWS upgrades the request and registers the connection
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	// Start client goroutines
	go client.writePump()
	go client.readPump()
}

// BroadcastEffect sends one resolution effect to all clients
func (h *Hub) BroadcastEffect(moveID uuid.UUID, effect engine.Effect[string]) {
	h.enqueue(&Message{
		Event:  EventEffect,
		MoveID: idString(moveID),
		Effect: &effect,
	})
}

// BroadcastBoard sends a full board to all clients
func (h *Hub) BroadcastBoard(event string, moveID uuid.UUID, board [][]string) {
	h.enqueue(&Message{
		Event:  event,
		MoveID: idString(moveID),
		Board:  board,
	})
}

// HandleEvent forwards a service event to all clients. It never blocks, so it
// can be passed straight to GameService.Subscribe.
func (h *Hub) HandleEvent(e service.Event) {
	switch e.Type {
	case service.EventEffect:
		if e.Effect != nil {
			h.BroadcastEffect(e.MoveID, *e.Effect)
		}
	case service.EventBoard:
		h.BroadcastBoard(EventBoard, e.MoveID, e.Board)
	case service.EventNewGame:
		h.BroadcastBoard(EventNewGame, e.MoveID, e.Board)
	}
}

// enqueue hands message to the run loop, dropping it when the queue is full
func (h *Hub) enqueue(message *Message) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast queue full, dropping message", zap.String("event", message.Event))
	}
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// registerClient adds a client and greets it with the current board
func (h *Hub) registerClient(client *Client) {
	h.clients[client] = true
	h.count.Store(int32(len(h.clients)))

	h.logger.Debug("client registered", zap.Int("clients", len(h.clients)))

	if h.snapshot == nil {
		return
	}
	board, ok := h.snapshot()
	if !ok {
		return
	}
	data, err := json.Marshal(&Message{Event: EventBoard, Board: board})
	if err != nil {
		h.logger.Error("failed to marshal snapshot", zap.Error(err))
		return
	}
	client.send <- data
}

// unregisterClient removes a client
func (h *Hub) unregisterClient(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.count.Store(int32(len(h.clients)))

		h.logger.Debug("client unregistered", zap.Int("clients", len(h.clients)))
	}
}

// broadcastMessage sends a message to all clients
func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("failed to marshal broadcast message", zap.Error(err))
		return
	}

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			// Client's send channel is full, drop it
			h.unregisterClient(client)
		}
	}
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		// Incoming messages are ignored; reading keeps pongs flowing
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket error", zap.Error(err))
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection, one frame per message
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
