package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
)

// GormClipboardRepository is the GORM implementation of ClipboardRepository.
type GormClipboardRepository struct {
	db *gorm.DB
}

func NewGormClipboardRepository(db *gorm.DB) *GormClipboardRepository {
	if db == nil {
		panic("database connection cannot be nil for GormClipboardRepository")
	}
	return &GormClipboardRepository{db: db}
}

func (r *GormClipboardRepository) FindByID(ctx context.Context, id uint) (*domain.ClipboardItem, error) {
	var item domain.ClipboardItem
	err := r.db.WithContext(ctx).First(&item, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrItemNotFound
		}
		return nil, fmt.Errorf("gorm: find clipboard item by id %d: %w", id, err)
	}
	return &item, nil
}

func (r *GormClipboardRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.ClipboardItem, error) {
	var items []domain.ClipboardItem
	err := r.db.WithContext(ctx).
		Table("clipboard_items").
		Select("clipboard_items.*, users.username AS author").
		Joins("JOIN users ON users.id = clipboard_items.user_id").
		Where("clipboard_items.room_id = ?", roomID).
		Order("clipboard_items.created_at DESC").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list clipboard items of room %d: %w", roomID, err)
	}
	return items, nil
}

func (r *GormClipboardRepository) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ClipboardItem{}).
		Where("room_id = ?", roomID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("gorm: count clipboard items of room %d: %w", roomID, err)
	}
	return count, nil
}

func (r *GormClipboardRepository) Create(ctx context.Context, item *domain.ClipboardItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("gorm: create clipboard item in room %d: %w", item.RoomID, err)
	}
	return nil
}

func (r *GormClipboardRepository) Save(ctx context.Context, item *domain.ClipboardItem) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("gorm: save clipboard item %d: %w", item.ID, err)
	}
	return nil
}

func (r *GormClipboardRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.ClipboardItem{}, id)
	if result.Error != nil {
		return fmt.Errorf("gorm: delete clipboard item %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrItemNotFound
	}
	return nil
}
