package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/superherotang/clip/internal/domain"
)

// RoomRepository is a mock of repository.RoomRepository.
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByID(ctx context.Context, id uint) (*domain.Room, error) {
	args := m.Called(ctx, id)
	var room *domain.Room
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	var room *domain.Room
	if args.Get(0) != nil {
		room = args.Get(0).(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) CreateWithOwner(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) ListByUser(ctx context.Context, userID uint) ([]domain.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var rooms []domain.RoomSummary
	if args.Get(0) != nil {
		rooms = args.Get(0).([]domain.RoomSummary)
	}
	return rooms, args.Error(1)
}

func (m *RoomRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
