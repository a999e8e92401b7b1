package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/superherotang/clip/internal/domain"
)

// MemberRepository is a mock of repository.MemberRepository.
type MemberRepository struct {
	mock.Mock
}

func (m *MemberRepository) Find(ctx context.Context, userID, roomID uint) (*domain.RoomMember, error) {
	args := m.Called(ctx, userID, roomID)
	var member *domain.RoomMember
	if args.Get(0) != nil {
		member = args.Get(0).(*domain.RoomMember)
	}
	return member, args.Error(1)
}

func (m *MemberRepository) Create(ctx context.Context, member *domain.RoomMember) error {
	args := m.Called(ctx, member)
	return args.Error(0)
}

func (m *MemberRepository) Delete(ctx context.Context, userID, roomID uint) error {
	args := m.Called(ctx, userID, roomID)
	return args.Error(0)
}

func (m *MemberRepository) ListByRoom(ctx context.Context, roomID uint) ([]domain.MemberInfo, error) {
	args := m.Called(ctx, roomID)
	var members []domain.MemberInfo
	if args.Get(0) != nil {
		members = args.Get(0).([]domain.MemberInfo)
	}
	return members, args.Error(1)
}
