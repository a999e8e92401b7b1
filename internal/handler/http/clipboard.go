package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// ClipboardHandler serves the room clipboard: list, create, update and
// delete items.
type ClipboardHandler struct {
	clipboardService *service.ClipboardService
}

func NewClipboardHandler(clipboardService *service.ClipboardService) *ClipboardHandler {
	return &ClipboardHandler{clipboardService: clipboardService}
}

type CreateItemRequest struct {
	RoomID   uint           `json:"roomId" binding:"required"`
	Type     string         `json:"type" binding:"required"`
	Content  string         `json:"content" binding:"required"`
	Title    string         `json:"title"`
	Category string         `json:"category"`
	Meta     map[string]any `json:"meta"`
}

// UpdateItemRequest uses pointers so absent fields are left untouched
// while explicit empty strings clear them.
type UpdateItemRequest struct {
	ID       uint    `json:"id" binding:"required"`
	Content  *string `json:"content"`
	Title    *string `json:"title"`
	Category *string `json:"category"`
}

// ListItems returns the decrypted clipboard of a room the caller
// belongs to. The room is selected by the roomId query parameter.
func (h *ClipboardHandler) ListItems(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
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
	SuccessResponse(c, http.StatusOK, gin.H{"items": items})
}

// CreateItem adds a text item (or an externally hosted path) to a
// room's clipboard. Content is encrypted at rest; the response echoes
// the plaintext back.
func (h *ClipboardHandler) CreateItem(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Room ID, type, and content are required")
		return
	}

	item, err := h.clipboardService.CreateItem(c.Request.Context(), sess.UserID, req.RoomID,
		req.Type, req.Content, req.Title, req.Category, req.Meta)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": sess.UserID, "room_id": req.RoomID}).
			Warn("Handler.CreateItem: failed to create clipboard item")
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, item)
}

// UpdateItem edits content/title/category of an existing item. Any
// room member may edit, not just the author.
func (h *ClipboardHandler) UpdateItem(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Item ID is required")
		return
	}

	item, err := h.clipboardService.UpdateItem(c.Request.Context(), sess.UserID, req.ID,
		req.Content, req.Title, req.Category)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, item)
}

// DeleteItem removes an item. The item is selected by the id query
// parameter; membership of the item's room is required.
func (h *ClipboardHandler) DeleteItem(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
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

// parseIDQuery reads a positive numeric query parameter, writing a 400
// response itself when missing or malformed.
func parseIDQuery(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		ErrorResponse(c, http.StatusBadRequest, name+" is required")
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}
