package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"backend/internal/repository"

	"github.com/gofiber/websocket/v2"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Heartbeat interval for version polling. Clients only refetch a room
	// when its version changes, max once per heartbeat, which keeps a busy
	// room from turning into a request storm.
	versionHeartbeatInterval = 2 * time.Second
)

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active clients and broadcasts room version
// changes to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Redis repository for polling room versions
	redisRepo *repository.RedisRepository

	// Mutex for thread-safe operations
	mu sync.RWMutex

	// Last known version per room for change detection
	lastVersions map[uint]int64
}

// RoomVersionUpdate tells clients one room's leaderboard changed
type RoomVersionUpdate struct {
	Type    string `json:"type"`
	RoomID  uint   `json:"room_id"`
	Version int64  `json:"version"`
}

// NewHub creates a new WebSocket hub
func NewHub(redisRepo *repository.RedisRepository) *Hub {
	return &Hub{
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		clients:      make(map[*Client]bool),
		redisRepo:    redisRepo,
		lastVersions: make(map[uint]int64),
	}
}

// Run starts the WebSocket hub
func (h *Hub) Run(ctx context.Context) {
	log.Println("🚀 WebSocket Hub started")

	versionTicker := time.NewTicker(versionHeartbeatInterval)
	defer versionTicker.Stop()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("✅ Client connected (Total: %d)", len(h.clients))

			h.sendCurrentVersions(ctx, client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("❌ Client disconnected (Total: %d)", len(h.clients))

		case <-versionTicker.C:
			h.checkAndBroadcastVersions(ctx)

		case <-ctx.Done():
			log.Println("🛑 WebSocket Hub shutting down")
			return
		}
	}
}

// checkAndBroadcastVersions polls the room version hash and broadcasts an
// update for every room whose version moved since the last poll
func (h *Hub) checkAndBroadcastVersions(ctx context.Context) {
	versions, err := h.redisRepo.GetRoomVersions(ctx)
	if err != nil {
		log.Printf("❌ Failed to get room versions: %v", err)
		return
	}

	for roomID, version := range versions {
		if version == h.lastVersions[roomID] {
			continue
		}
		h.lastVersions[roomID] = version
		h.broadcast(RoomVersionUpdate{
			Type:    "ROOM_VERSION_UPDATE",
			RoomID:  roomID,
			Version: version,
		})
	}
}

func (h *Hub) broadcast(update RoomVersionUpdate) {
	message, err := json.Marshal(update)
	if err != nil {
		log.Printf("❌ Failed to marshal version update: %v", err)
		return
	}

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			// Client's send buffer is full, skip this client
			log.Printf("⚠️ Client send buffer full, skipping")
		}
	}
	h.mu.RUnlock()
}

// sendCurrentVersions sends every known room version to a newly connected
// client so it can decide which rooms to fetch
func (h *Hub) sendCurrentVersions(ctx context.Context, client *Client) {
	versions, err := h.redisRepo.GetRoomVersions(ctx)
	if err != nil {
		log.Printf("❌ Failed to get initial versions: %v", err)
		return
	}

	h.mu.RLock()
	_, exists := h.clients[client]
	h.mu.RUnlock()
	if !exists {
		return
	}

	for roomID, version := range versions {
		if h.lastVersions[roomID] == 0 {
			h.lastVersions[roomID] = version
		}

		message, err := json.Marshal(RoomVersionUpdate{
			Type:    "ROOM_VERSION_UPDATE",
			RoomID:  roomID,
			Version: version,
		})
		if err != nil {
			continue
		}

		select {
		case client.send <- message:
		case <-time.After(2 * time.Second):
			log.Println("⚠️ Timeout sending initial versions - client may be slow")
			return
		}
	}
}

// GetClientCount returns the current number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the WebSocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	// Browser WebSockets handle ping/pong at the protocol level, so no
	// read deadline here

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("⚠️ WebSocket unexpected close: %v", err)
			}
			break
		}
		// We don't expect messages from clients; ignore anything received
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	defer func() {
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

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Add queued messages to the current websocket message
			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}
		}
	}
}

// ServeWS handles WebSocket requests from clients
func ServeWS(hub *Hub, conn *websocket.Conn) {
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	// Start write pump in goroutine
	go client.writePump()

	// Run read pump in current goroutine (blocks until disconnect)
	client.readPump()
}
