// Package websocket upgrades authenticated requests into live
// clipboard event subscriptions.
package websocket

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/hub"
	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Auth happens via the session cookie before the upgrade; the feed
	// is served to the same origins the HTTP API accepts.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler subscribes room members to their room's clipboard events.
type Handler struct {
	hub         *hub.Hub
	roomService *service.RoomService
}

func NewHandler(h *hub.Hub, roomService *service.RoomService) *Handler {
	return &Handler{hub: h, roomService: roomService}
}

// Serve upgrades the connection and streams item events for the room
// in the path parameter. Membership is checked before the upgrade so
// non-members get a plain HTTP error, not a closed socket.
func (h *Handler) Serve(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	roomID64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || roomID64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return
	}
	roomID := uint(roomID64)

	if _, err := h.roomService.RequireMembership(c.Request.Context(), sess.UserID, roomID); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).WithField("user_id", sess.UserID).Warn("WebSocket upgrade failed")
		return
	}

	client := hub.NewClient(h.hub, conn, sess.UserID, roomID)
	client.Start()
	logrus.WithFields(logrus.Fields{"user_id": sess.UserID, "room_id": roomID}).
		Info("WebSocket client connected")
}
