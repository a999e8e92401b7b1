// Package tasks defines the background task types and payloads shared
// by the enqueuing services and the worker.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeUploadCleanup removes a deleted room's uploaded files from the
// storage sink. The database rows cascade synchronously; the disk
// cleanup runs out of band.
const TypeUploadCleanup = "upload:cleanup"

// UploadCleanupPayload identifies the room whose uploads should go.
type UploadCleanupPayload struct {
	RoomID uint `json:"room_id"`
}

// NewUploadCleanupTask builds the cleanup task for a room.
func NewUploadCleanupTask(roomID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(UploadCleanupPayload{RoomID: roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal upload cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeUploadCleanup, payload), nil
}
