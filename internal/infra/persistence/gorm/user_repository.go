// Package gormpersistence implements the repository interfaces on GORM.
package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
)

// GormUserRepository is the GORM implementation of UserRepository.
type GormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	if db == nil {
		panic("database connection cannot be nil for GormUserRepository")
	}
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by id %d: %w", id, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by username %q: %w", username, err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByAPIKey(ctx context.Context, key string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("api_key = ?", key).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("gorm: find user by api key: %w", err)
	}
	return &user, nil
}

func (r *GormUserRepository) Save(ctx context.Context, user *domain.User) error {
	err := r.db.WithContext(ctx).Save(user).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save user (id: %d, username: %s): %w", user.ID, user.Username, err)
	}
	return nil
}

func (r *GormUserRepository) UpdateAPIKey(ctx context.Context, userID uint, key string) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", userID).Update("api_key", key)
	if result.Error != nil {
		if isDuplicateEntryError(result.Error) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: update api key for user %d: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// isDuplicateEntryError checks the common unique-constraint error
// strings across drivers.
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || // MySQL
		strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
