package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
)

// GormMemberRepository is the GORM implementation of MemberRepository.
type GormMemberRepository struct {
	db *gorm.DB
}

func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	if db == nil {
		panic("database connection cannot be nil for GormMemberRepository")
	}
	return &GormMemberRepository{db: db}
}

func (r *GormMemberRepository) Find(ctx context.Context, userID, roomID uint) (*domain.RoomMember, error) {
	var member domain.RoomMember
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrMembershipNotFound
		}
		return nil, fmt.Errorf("gorm: find membership (user %d, room %d): %w", userID, roomID, err)
	}
	return &member, nil
}

func (r *GormMemberRepository) Create(ctx context.Context, member *domain.RoomMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	if err != nil {
		if isDuplicateEntryError(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create membership (user %d, room %d): %w", member.UserID, member.RoomID, err)
	}
	return nil
}

func (r *GormMemberRepository) Delete(ctx context.Context, userID, roomID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND room_id = ?", userID, roomID).
		Delete(&domain.RoomMember{})
	if result.Error != nil {
		return fmt.Errorf("gorm: delete membership (user %d, room %d): %w", userID, roomID, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrMembershipNotFound
	}
	return nil
}

func (r *GormMemberRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.MemberInfo, error) {
	var members []domain.MemberInfo
	err := r.db.WithContext(ctx).
		Table("room_members AS m").
		Select("m.user_id, m.role, users.username").
		Joins("JOIN users ON users.id = m.user_id").
		Where("m.room_id = ?", roomID).
		Order("m.created_at ASC").
		Scan(&members).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list members of room %d: %w", roomID, err)
	}
	return members, nil
}
