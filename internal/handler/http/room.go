package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// RoomHandler serves room creation, listing, membership and deletion.
type RoomHandler struct {
	roomService *service.RoomService
}

func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	return &RoomHandler{roomService: roomService}
}

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// JoinRoomRequest deliberately does not constrain the code's shape:
// any non-empty code goes to the lookup, and a miss is a 404.
type JoinRoomRequest struct {
	Code string `json:"code" binding:"required"`
}

type UpdateRoomRequest struct {
	Action string `json:"action" binding:"required"`
}

// CreateRoom creates a room owned by the caller and enrolls them as
// its first member.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Room name is required")
		return
	}
	logCtx := logrus.WithField("user_id", sess.UserID)

	room, err := h.roomService.CreateRoom(c.Request.Context(), sess.UserID, req.Name, req.Description)
	if err != nil {
		logCtx.WithError(err).Error("Handler.CreateRoom: failed to create room")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithFields(logrus.Fields{"room_id": room.ID, "code": room.Code}).Info("Room created")
	SuccessResponse(c, http.StatusOK, room)
}

// ListRooms returns every room the caller belongs to, annotated with
// role and member/item counts.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	rooms, err := h.roomService.ListRooms(c.Request.Context(), sess.UserID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoom returns room details including the member list. Non-members
// get 403, unknown rooms 404.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	detail, err := h.roomService.GetRoom(c.Request.Context(), sess.UserID, roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, detail)
}

// JoinRoom adds the caller to the room behind an invite code.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Room code is required")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"user_id": sess.UserID, "code": req.Code})

	room, err := h.roomService.JoinRoom(c.Request.Context(), sess.UserID, req.Code)
	if err != nil {
		logCtx.WithError(err).Warn("Handler.JoinRoom: failed to join room")
		HandleServiceError(c, err)
		return
	}

	logCtx.WithField("room_id", room.ID).Info("User joined room")
	SuccessResponse(c, http.StatusOK, gin.H{
		"message":  "Joined room successfully",
		"roomId":   room.ID,
		"roomName": room.Name,
	})
}

// UpdateRoom handles membership actions on a room. The only supported
// action is "leave"; owners must delete instead.
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Action != "leave" {
		ErrorResponse(c, http.StatusBadRequest, "Invalid action")
		return
	}

	if err := h.roomService.LeaveRoom(c.Request.Context(), sess.UserID, roomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Left room successfully"})
}

// DeleteRoom destroys a room, its memberships and its clipboard.
// Owner-only.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	roomID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.roomService.DeleteRoom(c.Request.Context(), sess.UserID, roomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"user_id": sess.UserID, "room_id": roomID}).Info("Room deleted")
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// parseIDParam reads a positive numeric path parameter, writing a 400
// response itself when the value is malformed.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
