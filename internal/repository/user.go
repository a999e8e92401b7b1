// Package repository declares the persistence interfaces the services
// depend on. Implementations live under internal/infra.
package repository

import (
	"context"

	"github.com/superherotang/clip/internal/domain"
)

// UserRepository stores and retrieves user accounts.
type UserRepository interface {
	// FindByID looks a user up by primary key. Returns ErrUserNotFound
	// if no such user exists.
	FindByID(ctx context.Context, id uint) (*domain.User, error)

	// FindByUsername looks a user up by the unique username.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)

	// FindByAPIKey resolves an API key to its user via the unique index.
	FindByAPIKey(ctx context.Context, key string) (*domain.User, error)

	// Save creates the user when ID is zero, updates otherwise.
	// Unique-constraint violations surface as ErrDuplicateEntry.
	Save(ctx context.Context, user *domain.User) error

	// UpdateAPIKey overwrites the user's API key. The previous key stops
	// resolving immediately.
	UpdateAPIKey(ctx context.Context, userID uint, key string) error
}
