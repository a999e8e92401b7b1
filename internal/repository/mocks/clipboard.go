package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/superherotang/clip/internal/domain"
)

// ClipboardRepository is a mock of repository.ClipboardRepository.
type ClipboardRepository struct {
	mock.Mock
}

func (m *ClipboardRepository) FindByID(ctx context.Context, id uint) (*domain.ClipboardItem, error) {
	args := m.Called(ctx, id)
	var item *domain.ClipboardItem
	if args.Get(0) != nil {
		item = args.Get(0).(*domain.ClipboardItem)
	}
	return item, args.Error(1)
}

func (m *ClipboardRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.ClipboardItem, error) {
	args := m.Called(ctx, roomID)
	var items []domain.ClipboardItem
	if args.Get(0) != nil {
		items = args.Get(0).([]domain.ClipboardItem)
	}
	return items, args.Error(1)
}

func (m *ClipboardRepository) CountByRoom(ctx context.Context, roomID uint) (int64, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ClipboardRepository) Create(ctx context.Context, item *domain.ClipboardItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ClipboardRepository) Save(ctx context.Context, item *domain.ClipboardItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *ClipboardRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
