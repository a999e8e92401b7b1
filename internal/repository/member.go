package repository

import (
	"context"

	"github.com/superherotang/clip/internal/domain"
)

// MemberRepository stores room memberships, keyed by (userID, roomID).
type MemberRepository interface {
	// Find returns ErrMembershipNotFound when the user has no row for
	// the room. Absence of a row is what the authorization gate treats
	// as access denied.
	Find(ctx context.Context, userID, roomID uint) (*domain.RoomMember, error)

	// Create inserts a membership row. A duplicate composite key
	// surfaces as ErrDuplicateEntry.
	Create(ctx context.Context, member *domain.RoomMember) error

	// Delete removes the membership row.
	Delete(ctx context.Context, userID, roomID uint) error

	// ListByRoom returns the room's roster with usernames.
	ListByRoom(ctx context.Context, roomID uint) ([]domain.MemberInfo, error)
}
