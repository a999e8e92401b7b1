package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// ExternalHandler serves the bearer-key API surface. Responses use
// explicit allowlisted shapes so internal fields never leak to third
// party consumers.
type ExternalHandler struct {
	roomService      *service.RoomService
	clipboardService *service.ClipboardService
}

func NewExternalHandler(roomService *service.RoomService, clipboardService *service.ClipboardService) *ExternalHandler {
	return &ExternalHandler{
		roomService:      roomService,
		clipboardService: clipboardService,
	}
}

// ExternalRoom is the allowlisted room view for API key consumers.
type ExternalRoom struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Code           string    `json:"code"`
	Role           string    `json:"role"`
	MemberCount    int64     `json:"memberCount"`
	ClipboardCount int64     `json:"clipboardCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ExternalItem is the allowlisted clipboard item view.
type ExternalItem struct {
	ID        uint      `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Title     string    `json:"title,omitempty"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	CreatedBy string    `json:"createdBy,omitempty"`
}

func externalRoom(r domain.RoomSummary) ExternalRoom {
	return ExternalRoom{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		Code:           r.Code,
		Role:           r.Role,
		MemberCount:    r.MemberCount,
		ClipboardCount: r.ClipboardCount,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func externalItem(item domain.ClipboardItem) ExternalItem {
	return ExternalItem{
		ID:        item.ID,
		Type:      item.Type,
		Content:   item.Content,
		Title:     item.Title,
		Category:  item.Category,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
		CreatedBy: item.Author,
	}
}

// ListRooms returns the rooms the key's owner belongs to.
func (h *ExternalHandler) ListRooms(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	rooms, err := h.roomService.ListRooms(c.Request.Context(), sess.UserID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	out := make([]ExternalRoom, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, externalRoom(r))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"rooms": out})
}

// CreateRoom creates a room on behalf of the key's owner.
func (h *ExternalHandler) CreateRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Room name is required")
		return
	}
	room, err := h.roomService.CreateRoom(c.Request.Context(), sess.UserID, req.Name, req.Description)
	if err != nil {
		logrus.WithError(err).WithField("user_id", sess.UserID).Error("External.CreateRoom failed")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, externalRoom(*room))
}

// DeleteRoom destroys an owned room. The room is selected by the id
// query parameter.
func (h *ExternalHandler) DeleteRoom(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	roomID, ok := parseIDQuery(c, "id")
	if !ok {
		return
	}
	if err := h.roomService.DeleteRoom(c.Request.Context(), sess.UserID, roomID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room deleted successfully"})
}

// ListItems returns a room's decrypted clipboard for the key's owner.
func (h *ExternalHandler) ListItems(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	roomID, ok := parseIDQuery(c, "roomId")
	if !ok {
		return
	}
	items, err := h.clipboardService.ListItems(c.Request.Context(), sess.UserID, roomID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	out := make([]ExternalItem, 0, len(items))
	for _, item := range items {
		out = append(out, externalItem(item))
	}
	SuccessResponse(c, http.StatusOK, gin.H{"items": out})
}

// CreateItem posts a clipboard item via API key.
func (h *ExternalHandler) CreateItem(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Room ID, type, and content are required")
		return
	}
	item, err := h.clipboardService.CreateItem(c.Request.Context(), sess.UserID, req.RoomID,
		req.Type, req.Content, req.Title, req.Category, nil)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": sess.UserID, "room_id": req.RoomID}).
			Warn("External.CreateItem failed")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, externalItem(*item))
}

// DeleteItem removes an item by the id query parameter.
func (h *ExternalHandler) DeleteItem(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Invalid or missing API key")
		return
	}
	itemID, ok := parseIDQuery(c, "id")
	if !ok {
		return
	}
	if err := h.clipboardService.DeleteItem(c.Request.Context(), sess.UserID, itemID); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
