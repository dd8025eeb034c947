package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"tvbridge/models"
	"tvbridge/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10 // 54 seconds
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // remotes connect from any origin on the LAN
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Client is one connected remote
type Client struct {
	hub        *WebSocketHub
	conn       *websocket.Conn
	send       chan []byte
	dispatcher *service.ActionDispatcher
}

// WebSocketHub tracks connected remotes and fans out events
type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("Remote connected (total: %d)", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("Remote disconnected (total: %d)", total)
		}
	}
}

// ClientCount returns the number of connected remotes
func (h *WebSocketHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToAll sends a message to all connected clients
func (h *WebSocketHub) BroadcastToAll(message interface{}) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Failed to marshal message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- messageBytes:
		default:
			log.Printf("⚠️ Client channel full, skipping")
		}
	}
}

func HandleWebSocket(hub *WebSocketHub, ad *service.ActionDispatcher, c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 32),
		dispatcher: ad,
	}

	client.hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump executes commands sent by the remote
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		c.reply(c.handleMessage(message))
	}
}

// handleMessage runs one command frame and builds the reply event
func (c *Client) handleMessage(message []byte) models.Event {
	if !json.Valid(message) {
		return models.Event{Type: "error", Data: "invalid JSON"}
	}

	cmd, err := models.ParseCommand(message)
	if err != nil {
		return models.Event{Type: "result", Data: models.CommandResponse{Success: false, Command: message}}
	}

	// Commands finish even if the socket drops mid-way
	result := c.dispatcher.Dispatch(context.Background(), "ws", cmd)
	return models.Event{Type: "result", Data: models.CommandResponse{Success: result.Success, Command: message}}
}

func (c *Client) reply(event models.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal reply: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("⚠️ Client channel full, dropping reply")
	}
}

// writePump forwards queued events to the remote and keeps the connection alive
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
