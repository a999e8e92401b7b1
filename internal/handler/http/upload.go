package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/middleware"
	"github.com/superherotang/clip/internal/service"
)

// maxUploadSize caps multipart uploads at 50 MiB.
const maxUploadSize = 50 << 20

// UploadHandler accepts multipart file uploads and turns them into
// clipboard items.
type UploadHandler struct {
	clipboardService *service.ClipboardService
}

func NewUploadHandler(clipboardService *service.ClipboardService) *UploadHandler {
	return &UploadHandler{clipboardService: clipboardService}
}

// Upload stores a file under the room's upload directory and records
// an image/file clipboard item pointing at it. Form fields: file,
// roomId, type.
func (h *UploadHandler) Upload(c *gin.Context) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Not authenticated")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "File is required")
		return
	}

	roomIDRaw := c.PostForm("roomId")
	roomID64, err := strconv.ParseUint(roomIDRaw, 10, 32)
	if err != nil || roomID64 == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Room ID is required")
		return
	}
	roomID := uint(roomID64)

	itemType := c.PostForm("type")
	if itemType != "image" && itemType != "file" {
		ErrorResponse(c, http.StatusBadRequest, "Type must be 'image' or 'file'")
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		logrus.WithError(err).Error("Handler.Upload: failed to open multipart file")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	defer src.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	item, err := h.clipboardService.UploadItem(c.Request.Context(), sess.UserID, roomID,
		itemType, fileHeader.Filename, mimeType, fileHeader.Size, src)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": sess.UserID, "room_id": roomID}).
			Warn("Handler.Upload: failed to store upload")
		HandleServiceError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, item)
}
