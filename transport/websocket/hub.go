package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"lootdogs/game/service"
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
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// frame is one outgoing message. Every frame carries the full state of the
// map's session, so clients never need to reconcile deltas.
type frame struct {
	Event string            `json:"event"`
	MapID string            `json:"mapId"`
	State service.GameState `json:"state"`
}

// Client is one connected peer, pinned to a single map.
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	mapID string
}

// Hub fans out per-map state updates to the connected clients. All map
// mutations happen inside Run, so no locking is needed.
type Hub struct {
	rooms map[string]map[*Client]bool

	broadcast  chan broadcastRequest
	register   chan *Client
	unregister chan *Client

	// closed when Run returns, releasing clients mid-disconnect
	stopped chan struct{}

	log zerolog.Logger
}

type broadcastRequest struct {
	mapID string
	data  []byte
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan broadcastRequest, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		log:        log,
	}
}

// Run processes register, unregister and broadcast events until ctx is
// cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.rooms {
				for client := range clients {
					close(client.send)
				}
			}
			h.rooms = make(map[string]map[*Client]bool)
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case req := <-h.broadcast:
			h.fanOut(req)
		}
	}
}

// ServeHTTP upgrades the connection and registers the client for the map
// named in the "map" query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mapID := r.URL.Query().Get("map")
	if mapID == "" {
		http.Error(w, "map query parameter is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, 256),
		mapID: mapID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastMapState queues a state frame for every client watching mapID.
// It implements service.StateBroadcaster. Frames are dropped rather than
// blocking the tick when the hub cannot keep up.
func (h *Hub) BroadcastMapState(mapID string, state service.GameState) {
	data, err := json.Marshal(frame{Event: "state", MapID: mapID, State: state})
	if err != nil {
		h.log.Error().Err(err).Str("map", mapID).Msg("failed to marshal state frame")
		return
	}

	select {
	case h.broadcast <- broadcastRequest{mapID: mapID, data: data}:
	default:
		h.log.Warn().Str("map", mapID).Msg("hub busy, dropping state frame")
	}
}

func (h *Hub) addClient(client *Client) {
	if h.rooms[client.mapID] == nil {
		h.rooms[client.mapID] = make(map[*Client]bool)
	}
	h.rooms[client.mapID][client] = true

	h.log.Info().
		Str("map", client.mapID).
		Int("clients", len(h.rooms[client.mapID])).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	clients, ok := h.rooms[client.mapID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.rooms, client.mapID)
	}

	h.log.Info().
		Str("map", client.mapID).
		Int("clients", len(clients)).
		Msg("websocket client disconnected")
}

func (h *Hub) fanOut(req broadcastRequest) {
	for client := range h.rooms[req.mapID] {
		select {
		case client.send <- req.data:
		default:
			// slow consumer, drop the connection
			h.removeClient(client)
		}
	}
}

// leave reports the disconnect to the hub, giving up once the hub has
// stopped so a late disconnect can never strand this goroutine.
func (c *Client) leave() {
	select {
	case c.hub.unregister <- c:
	case <-c.hub.stopped:
	}
}

// readPump discards incoming messages and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		c.leave()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug().Err(err).Msg("websocket read failed")
			}
			return
		}
	}
}

// writePump pumps frames from the hub to the connection and keeps it alive
// with pings.
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
