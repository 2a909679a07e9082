package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/writingdeveloper/dont-touch/internal/app"
	"github.com/writingdeveloper/dont-touch/internal/proximity"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// snapshotInterval is the broadcast cadence for live state, ~15 FPS.
const snapshotInterval = 66 * time.Millisecond

// wsClient pairs a connection with a write lock. The websocket package
// allows at most one concurrent writer per connection, and both the
// snapshot ticker and the alert dispatcher write to every client.
type wsClient struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *wsClient) write(msg []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.WriteMessage(websocket.TextMessage, msg)
}

// LiveHandler broadcasts live analyzer state and alert events via
// WebSocket. Snapshots come from the app's latest-state mailbox; alerts
// arrive through an observer subscription, so every connected client sees
// every alert.
type LiveHandler struct {
	app     *app.App
	clients map[*wsClient]bool
	mu      sync.RWMutex
}

// NewLiveHandler creates a LiveHandler bound to the given app.
func NewLiveHandler(a *app.App) *LiveHandler {
	h := &LiveHandler{
		app:     a,
		clients: make(map[*wsClient]bool),
	}
	a.Subscribe(h.broadcastAlert)
	go h.broadcastSnapshots()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn}

	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, client)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcastSnapshots pushes the latest pipeline state to all clients.
func (h *LiveHandler) broadcastSnapshots() {
	ticker := time.NewTicker(snapshotInterval)
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		empty := len(h.clients) == 0
		h.mu.RUnlock()
		if empty {
			continue
		}

		snap := h.app.Snapshot()
		msg, err := json.Marshal(map[string]any{
			"type":     "snapshot",
			"snapshot": snap,
		})
		if err != nil {
			continue
		}
		h.send(msg)
	}
}

// broadcastAlert runs on the app's alert dispatcher goroutine.
func (h *LiveHandler) broadcastAlert(ev proximity.Event) {
	msg, err := json.Marshal(map[string]any{
		"type":  "alert",
		"alert": ev,
	})
	if err != nil {
		return
	}
	h.send(msg)
}

// send delivers msg to every client. The registry lock is shared; each
// write is serialized by the client's own lock.
func (h *LiveHandler) send(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.write(msg)
	}
}
