package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/warehouse-sim/backend/internal/models"
)

// WebSocket message types for the live dashboard feed
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypePong      = "pong"
	MsgTypeEvent     = "event"
	MsgTypeSnapshot  = "snapshot"
	MsgTypeError     = "error"
)

// WSMessage is the envelope for every frame on the wire
type WSMessage struct {
	Type      string          `json:"type"`
	Event     string          `json:"event,omitempty"` // event kind for type=event
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WebSocketHandler fans engine events and periodic status snapshots out to
// connected dashboard clients.
type WebSocketHandler struct {
	controller SimulationController
	upgrader   websocket.Upgrader

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*sync.Mutex // per-connection write lock
}

// NewWebSocketHandler creates a new live-feed handler
func NewWebSocketHandler(controller SimulationController) *WebSocketHandler {
	return &WebSocketHandler{
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
		},
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// HandleWebSocket upgrades the connection and serves the live feed until the
// client disconnects.
func (wsh *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	ws, err := wsh.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Println("[WebSocket] Dashboard client connected")

	writeMu := &sync.Mutex{}
	wsh.clientsMu.Lock()
	wsh.clients[ws] = writeMu
	wsh.clientsMu.Unlock()

	defer func() {
		wsh.clientsMu.Lock()
		delete(wsh.clients, ws)
		wsh.clientsMu.Unlock()
		fmt.Println("[WebSocket] Dashboard client disconnected")
	}()

	wsh.send(ws, writeMu, WSMessage{Type: MsgTypeConnected, Timestamp: time.Now().UnixMilli()})

	// Main message loop: the feed is push-based, clients only ping.
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				fmt.Printf("[WebSocket] Connection error: %v\n", err)
			}
			return nil
		}

		switch msg.Type {
		case MsgTypePing:
			wsh.send(ws, writeMu, WSMessage{Type: MsgTypePong, Timestamp: time.Now().UnixMilli()})
		default:
			wsh.send(ws, writeMu, WSMessage{Type: MsgTypeError, Timestamp: time.Now().UnixMilli()})
		}
	}
}

// BroadcastEvent pushes one engine event to every connected client. Safe to
// call from the simulation goroutine.
func (wsh *WebSocketHandler) BroadcastEvent(ev models.Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		fmt.Printf("[WebSocket] Failed to encode %s event: %v\n", ev.Kind(), err)
		return
	}
	wsh.broadcast(WSMessage{
		Type:      MsgTypeEvent,
		Event:     ev.Kind(),
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

// BroadcastSnapshot pushes the current simulation status to every client.
func (wsh *WebSocketHandler) BroadcastSnapshot() {
	status := wsh.controller.Status()
	payload, err := json.Marshal(status)
	if err != nil {
		fmt.Printf("[WebSocket] Failed to encode snapshot: %v\n", err)
		return
	}
	wsh.broadcast(WSMessage{
		Type:      MsgTypeSnapshot,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

// StartSnapshotLoop pushes status snapshots at the given interval until stop
// is closed. Intended to run in its own goroutine.
func (wsh *WebSocketHandler) StartSnapshotLoop(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if wsh.ClientCount() > 0 {
				wsh.BroadcastSnapshot()
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (wsh *WebSocketHandler) ClientCount() int {
	wsh.clientsMu.RLock()
	defer wsh.clientsMu.RUnlock()
	return len(wsh.clients)
}

func (wsh *WebSocketHandler) broadcast(msg WSMessage) {
	wsh.clientsMu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(wsh.clients))
	for ws, mu := range wsh.clients {
		conns[ws] = mu
	}
	wsh.clientsMu.RUnlock()

	for ws, mu := range conns {
		wsh.send(ws, mu, msg)
	}
}

func (wsh *WebSocketHandler) send(ws *websocket.Conn, mu *sync.Mutex, msg WSMessage) {
	mu.Lock()
	defer mu.Unlock()
	if err := ws.WriteJSON(msg); err != nil {
		fmt.Printf("[WebSocket] Write failed: %v\n", err)
	}
}
