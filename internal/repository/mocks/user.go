// Package mocks provides testify mocks for the repository interfaces,
// used by the service tests.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/superherotang/clip/internal/domain"
)

// UserRepository is a mock of repository.UserRepository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) FindByAPIKey(ctx context.Context, key string) (*domain.User, error) {
	args := m.Called(ctx, key)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *UserRepository) Save(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) UpdateAPIKey(ctx context.Context, userID uint, key string) error {
	args := m.Called(ctx, userID, key)
	return args.Error(0)
}
