package repository

import (
	"context"

	"github.com/superherotang/clip/internal/domain"
)

// ClipboardRepository stores clipboard items. Content passes through
// unchanged; encryption happens above this layer.
type ClipboardRepository interface {
	// FindByID returns ErrItemNotFound when the id does not resolve.
	FindByID(ctx context.Context, id uint) (*domain.ClipboardItem, error)

	// ListByRoom returns a room's items newest-first with the author
	// username joined in.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.ClipboardItem, error)

	// CountByRoom returns the number of items in a room.
	CountByRoom(ctx context.Context, roomID uint) (int64, error)

	// Create inserts a new item.
	Create(ctx context.Context, item *domain.ClipboardItem) error

	// Save persists changes to an existing item.
	Save(ctx context.Context, item *domain.ClipboardItem) error

	// Delete removes an item by id.
	Delete(ctx context.Context, id uint) error
}
