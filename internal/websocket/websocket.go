package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/luckydraw/internal/logger"
	"github.com/abrezinsky/luckydraw/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256

	// MessageConnected is sent to every viewer as soon as it joins a room
	MessageConnected = "connected"
	// MessageSnapshot carries the room's current state to a new viewer
	MessageSnapshot = "draw_snapshot"
)

var upgrader = websocket.Upgrader{
	// Viewer sockets are read-only and public
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SnapshotFunc returns the payload sent to a viewer joining scope's room.
// A nil payload sends nothing.
type SnapshotFunc func(ctx context.Context, scope models.Scope) (interface{}, error)

type roomMessage struct {
	room string
	msg  models.WSMessage
}

// Hub maintains the viewers of every event room and fans out published messages
type Hub struct {
	log        logger.Logger
	rooms      map[string]map[*Client]bool
	broadcast  chan roomMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mutex      sync.RWMutex
	snapshot   SnapshotFunc
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	room     string
	send     chan models.WSMessage
	greeting []models.WSMessage
}

// New creates a new Hub. snapshot may be nil.
func New(log logger.Logger, snapshot SnapshotFunc) *Hub {
	return &Hub{
		log:        log,
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomMessage, sendBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		snapshot:   snapshot,
	}
}

// Run handles registration and fan-out until ctx is cancelled, then disconnects every viewer
func (h *Hub) Run(ctx context.Context) error {
	defer h.shutdown()
	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.register:
			h.mutex.Lock()
			members, ok := h.rooms[client.room]
			if !ok {
				members = make(map[*Client]bool)
				h.rooms[client.room] = members
			}
			members[client] = true
			size := len(members)
			for _, m := range client.greeting {
				client.send <- m
			}
			client.greeting = nil
			h.mutex.Unlock()
			h.log.Debug("Viewer connected", "room", client.room, "viewers", size)

		case client := <-h.unregister:
			h.remove(client)

		case rm := <-h.broadcast:
			h.mutex.RLock()
			var slow []*Client
			for client := range h.rooms[rm.room] {
				select {
				case client.send <- rm.msg:
				default:
					slow = append(slow, client)
				}
			}
			h.mutex.RUnlock()
			for _, c := range slow {
				h.log.Warn("Dropping slow viewer", "room", c.room)
				h.remove(c)
			}
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mutex.Lock()
	members := h.rooms[client.room]
	if _, ok := members[client]; ok {
		delete(members, client)
		close(client.send)
		if len(members) == 0 {
			delete(h.rooms, client.room)
		}
	}
	size := len(members)
	h.mutex.Unlock()
	h.log.Debug("Viewer disconnected", "room", client.room, "viewers", size)
}

func (h *Hub) shutdown() {
	close(h.done)
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for room, members := range h.rooms {
		for client := range members {
			close(client.send)
		}
		delete(h.rooms, room)
	}
}

// Publish implements services.Broadcaster
func (h *Hub) Publish(room, eventType string, payload interface{}) {
	select {
	case h.broadcast <- roomMessage{room: room, msg: models.WSMessage{Type: eventType, Payload: payload}}:
	case <-h.done:
	}
}

// ViewerCount returns the number of viewers connected to room
func (h *Hub) ViewerCount(room string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}

// readPump drains the connection so control frames are processed
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Ignoring viewer message", "room", c.room, "type", msg.Type)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
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
			if err := c.conn.WriteJSON(message); err != nil {
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

// ServeWs upgrades the request and joins the viewer to scope's room
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request, scope models.Scope) {
	room := scope.Room()
	greeting := []models.WSMessage{{Type: MessageConnected, Payload: map[string]string{"room": room}}}
	if h.snapshot != nil {
		payload, err := h.snapshot(r.Context(), scope)
		if err != nil {
			h.log.Warn("Snapshot failed", "room", room, "error", err)
		} else if payload != nil {
			greeting = append(greeting, models.WSMessage{Type: MessageSnapshot, Payload: payload})
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:      h,
		conn:     conn,
		room:     room,
		send:     make(chan models.WSMessage, sendBuffer),
		greeting: greeting,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
