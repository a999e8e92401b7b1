package repository

import (
	"context"

	"github.com/superherotang/clip/internal/domain"
)

// RoomRepository stores and retrieves rooms.
type RoomRepository interface {
	// FindByID returns ErrRoomNotFound when the id does not resolve.
	FindByID(ctx context.Context, id uint) (*domain.Room, error)

	// FindByCode looks a room up by its join code (exact match; callers
	// normalize case first).
	FindByCode(ctx context.Context, code string) (*domain.Room, error)

	// IsCodeTaken reports whether a join code is already in use.
	IsCodeTaken(ctx context.Context, code string) (bool, error)

	// CreateWithOwner creates the room and its owner membership row as
	// one transaction. A join-code collision that slips past the
	// pre-check surfaces as ErrDuplicateEntry.
	CreateWithOwner(ctx context.Context, room *domain.Room) error

	// ListByUser returns summaries of every room the user is a member
	// of, with role, owner username and aggregate counts.
	ListByUser(ctx context.Context, userID uint) ([]domain.RoomSummary, error)

	// Delete removes the room and cascades to its memberships and
	// clipboard items in one transaction.
	Delete(ctx context.Context, id uint) error
}
