// Package hub fans clipboard events out to the WebSocket clients
// subscribed to each room.
package hub

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
)

// roomMessage is one serialized event addressed to a room.
type roomMessage struct {
	roomID uint
	data   []byte
}

// Hub tracks connected clients per room and broadcasts events to them.
// All state is owned by the Run goroutine; the exported methods only
// touch channels.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan roomMessage
	rooms      map[uint]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan roomMessage, 256),
		rooms:      make(map[uint]map[*Client]bool),
	}
}

// Run processes registrations and broadcasts. Call it from its own
// goroutine; it runs for the life of the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			clients := h.rooms[client.roomID]
			if clients == nil {
				clients = make(map[*Client]bool)
				h.rooms[client.roomID] = clients
			}
			clients[client] = true
			logrus.WithFields(logrus.Fields{"user_id": client.userID, "room_id": client.roomID}).
				Debug("Hub: client registered")

		case client := <-h.unregister:
			if clients, ok := h.rooms[client.roomID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					if len(clients) == 0 {
						delete(h.rooms, client.roomID)
					}
				}
			}
			logrus.WithFields(logrus.Fields{"user_id": client.userID, "room_id": client.roomID}).
				Debug("Hub: client unregistered")

		case msg := <-h.broadcast:
			for client := range h.rooms[msg.roomID] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer; drop it rather than stall the room.
					delete(h.rooms[msg.roomID], client)
					close(client.send)
				}
			}
		}
	}
}

// Register subscribes a client to its room's events.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister drops a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastRoom serializes the event and queues it for every client in
// the room. Implements service.Notifier.
func (h *Hub) BroadcastRoom(roomID uint, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("room_id", roomID).Error("Hub: failed to marshal event")
		return
	}
	select {
	case h.broadcast <- roomMessage{roomID: roomID, data: data}:
	default:
		logrus.WithField("room_id", roomID).Warn("Hub: broadcast channel full, dropping event")
	}
}
