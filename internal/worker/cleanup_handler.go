package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/tasks"
)

// UploadCleaner is the slice of the storage sink the worker needs.
type UploadCleaner interface {
	RemoveRoomFiles(roomID uint) error
}

// UploadCleanupHandler removes a deleted room's uploads from disk.
type UploadCleanupHandler struct {
	files UploadCleaner
}

func NewUploadCleanupHandler(files UploadCleaner) *UploadCleanupHandler {
	if files == nil {
		panic("UploadCleaner cannot be nil for UploadCleanupHandler")
	}
	return &UploadCleanupHandler{files: files}
}

// ProcessTask handles one upload:cleanup task. A malformed payload is
// not retryable; a disk failure is.
func (h *UploadCleanupHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.UploadCleanupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal upload cleanup payload: %v: %w", err, asynq.SkipRetry)
	}

	if err := h.files.RemoveRoomFiles(payload.RoomID); err != nil {
		return fmt.Errorf("remove uploads of room %d: %w", payload.RoomID, err)
	}

	logrus.WithField("room_id", payload.RoomID).Info("Removed uploads of deleted room")
	return nil
}
