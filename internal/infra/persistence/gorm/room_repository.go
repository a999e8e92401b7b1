package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
)

// GormRoomRepository is the GORM implementation of RoomRepository.
type GormRoomRepository struct {
	db *gorm.DB
}

func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

func (r *GormRoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by id %d: %w", id, err)
	}
	return &room, nil
}

func (r *GormRoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by code %q: %w", code, err)
	}
	return &room, nil
}

func (r *GormRoomRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).Where("code = ?", code).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: check room code %q: %w", code, err)
	}
	return count > 0, nil
}

// CreateWithOwner inserts the room and its owner membership in one
// transaction, so a room never exists without its owner row.
func (r *GormRoomRepository) CreateWithOwner(ctx context.Context, room *domain.Room) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			if isDuplicateEntryError(err) {
				return repository.ErrDuplicateEntry
			}
			return fmt.Errorf("gorm: create room: %w", err)
		}
		member := &domain.RoomMember{
			UserID: room.OwnerID,
			RoomID: room.ID,
			Role:   domain.RoleOwner,
		}
		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("gorm: create owner membership for room %d: %w", room.ID, err)
		}
		return nil
	})
}

func (r *GormRoomRepository) ListByUser(ctx context.Context, userID uint) ([]domain.RoomSummary, error) {
	var summaries []domain.RoomSummary
	err := r.db.WithContext(ctx).
		Table("room_members AS m").
		Select(`rooms.id, rooms.name, rooms.description, rooms.code, rooms.owner_id,
			rooms.created_at, rooms.updated_at, m.role, owner.username AS owner_name,
			(SELECT COUNT(*) FROM room_members WHERE room_members.room_id = rooms.id) AS member_count,
			(SELECT COUNT(*) FROM clipboard_items WHERE clipboard_items.room_id = rooms.id) AS clipboard_count`).
		Joins("JOIN rooms ON rooms.id = m.room_id").
		Joins("JOIN users AS owner ON owner.id = rooms.owner_id").
		Where("m.user_id = ?", userID).
		Order("rooms.created_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list rooms for user %d: %w", userID, err)
	}
	return summaries, nil
}

// Delete removes the room and cascades to memberships and clipboard
// items. The uploaded files themselves are cleaned up by the worker.
func (r *GormRoomRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&domain.ClipboardItem{}).Error; err != nil {
			return fmt.Errorf("gorm: delete clipboard items of room %d: %w", id, err)
		}
		if err := tx.Where("room_id = ?", id).Delete(&domain.RoomMember{}).Error; err != nil {
			return fmt.Errorf("gorm: delete memberships of room %d: %w", id, err)
		}
		result := tx.Delete(&domain.Room{}, id)
		if result.Error != nil {
			return fmt.Errorf("gorm: delete room %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrRoomNotFound
		}
		return nil
	})
}
