package kds

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/comanda-app/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBuffer   = 32
	broadcastQueue = 256
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type envelope struct {
	empresaID uuid.UUID
	payload   []byte
}

type client struct {
	conn      *websocket.Conn
	empresaID uuid.UUID
	usuarioID string
	send      chan []byte
}

// Hub delivers comanda events to the websocket clients of the same empresa.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]map[*client]struct{}
	broadcast chan envelope
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[uuid.UUID]map[*client]struct{}),
		broadcast: make(chan envelope, broadcastQueue),
	}
}

// Run fans queued events out until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

// Publish queues an event for the empresa. It never blocks the caller; when
// the queue is full the event is dropped and logged.
func (h *Hub) Publish(empresaID uuid.UUID, eventType string, payload any) {
	data, err := json.Marshal(Message{Event: eventType, Data: payload})
	if err != nil {
		utils.ErrorLogger.WithError(err).WithField("event", eventType).Error("Error marshaling message")
		return
	}
	select {
	case h.broadcast <- envelope{empresaID: empresaID, payload: data}:
	default:
		utils.InfoLogger.WithFields(logrus.Fields{
			"empresa_id": empresaID.String(),
			"event":      eventType,
		}).Warn("event queue full, dropping message")
	}
}

func (h *Hub) deliver(env envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[env.empresaID] {
		select {
		case c.send <- env.payload:
		default:
			utils.InfoLogger.WithField("usuario_id", c.usuarioID).Warn("client too slow, message dropped")
		}
	}
}

// Serve registers conn for the empresa and blocks until the client goes away.
func (h *Hub) Serve(conn *websocket.Conn, empresaID uuid.UUID, usuarioID string) {
	c := &client{
		conn:      conn,
		empresaID: empresaID,
		usuarioID: usuarioID,
		send:      make(chan []byte, clientBuffer),
	}
	h.register(c)
	defer h.unregister(c)

	go c.writePump()
	c.readPump()
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.empresaID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.empresaID] = set
	}
	set[c] = struct{}{}
	utils.InfoLogger.WithFields(logrus.Fields{
		"empresa_id": c.empresaID.String(),
		"usuario_id": c.usuarioID,
	}).Info("kds client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.empresaID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.empresaID)
	}
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for empresaID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, empresaID)
	}
}

// ClientCount reports the connected clients of one empresa.
func (h *Hub) ClientCount(empresaID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[empresaID])
}

// readPump only consumes control frames; clients do not send commands.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
