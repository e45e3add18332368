// Package gateway is the simulator's HTTP and WebSocket surface: REST
// handlers for trading and status, plus a hub that pushes fills and price
// ticks to connected dashboard clients.
package gateway

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tradesimv1/internal/portfolio"
)

// Hub manages WebSocket dashboard clients and fans committed events out to
// them. It implements execution.EventSink; a client whose send buffer is
// full drops the message rather than blocking the engine.
type Hub struct {
	log *slog.Logger

	mu      sync.RWMutex
	clients map[*wsClient]bool
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// NewHub creates an empty hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{log: log, clients: make(map[*wsClient]bool)}
}

// HandleConn registers an upgraded WebSocket connection and starts its pumps.
func (h *Hub) HandleConn(conn *websocket.Conn) {
	client := &wsClient{
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.log.Info("ws client connected", slog.Int("total", count))

	go client.writePump()
	go client.readPump()
}

func (h *Hub) removeClient(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected WS clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishFill broadcasts a committed trade to all clients.
func (h *Hub) PublishFill(tx portfolio.Transaction) {
	h.broadcastJSON(map[string]any{
		"type":        "fill",
		"transaction": tx,
		"ts":          time.Now().Format(time.RFC3339Nano),
	})
}

// PublishLTP broadcasts an observed price tick to all clients.
func (h *Hub) PublishLTP(symbol string, price float64) {
	h.broadcastJSON(map[string]any{
		"type":   "ltp",
		"symbol": symbol,
		"ltp":    price,
		"ts":     time.Now().Format(time.RFC3339Nano),
	})
}

func (h *Hub) broadcastJSON(v any) {
	envelope, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- envelope:
		default:
			// Slow client; drop rather than block the engine.
		}
	}
	h.mu.RUnlock()
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.removeClient(c)
		c.conn.Close()
		c.hub.log.Info("ws client disconnected")
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// The dashboard never sends data; the read loop only services control
	// frames and detects disconnects.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
