package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
	"github.com/superherotang/clip/internal/tasks"
)

// Room join codes: 6 characters, uppercase alphanumerics with the
// ambiguous glyphs (I, O, 0, 1) removed.
const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	roomCodeLength   = 6
	maxCodeAttempts  = 10
)

// TaskEnqueuer is the slice of asynq.Client the room service needs, so
// tests can substitute a mock.
type TaskEnqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RoomService handles room lifecycle and is the authorization gate for
// room-scoped access: membership lookups and ownership checks all live
// here.
type RoomService struct {
	roomRepo   repository.RoomRepository
	memberRepo repository.MemberRepository
	clipRepo   repository.ClipboardRepository
	userRepo   repository.UserRepository
	enqueuer   TaskEnqueuer
}

// NewRoomService creates a RoomService. enqueuer may be nil, in which
// case no cleanup tasks are scheduled after room deletion.
func NewRoomService(
	roomRepo repository.RoomRepository,
	memberRepo repository.MemberRepository,
	clipRepo repository.ClipboardRepository,
	userRepo repository.UserRepository,
	enqueuer TaskEnqueuer,
) *RoomService {
	if roomRepo == nil || memberRepo == nil || clipRepo == nil || userRepo == nil {
		panic("repositories cannot be nil for RoomService")
	}
	return &RoomService{
		roomRepo:   roomRepo,
		memberRepo: memberRepo,
		clipRepo:   clipRepo,
		userRepo:   userRepo,
		enqueuer:   enqueuer,
	}
}

// RequireMembership confirms the user holds a membership row for the
// room. Absence comes back as ErrNotRoomMember, which the HTTP layer
// renders as 403 — distinct from a 404 for a missing room.
func (s *RoomService) RequireMembership(ctx context.Context, userID, roomID uint) (*domain.RoomMember, error) {
	member, err := s.memberRepo.Find(ctx, userID, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return nil, ErrNotRoomMember
		}
		logrus.WithError(err).WithFields(logrus.Fields{"user_id": userID, "room_id": roomID}).
			Error("Database error checking membership")
		return nil, ErrInternalServer
	}
	return member, nil
}

// CreateRoom generates a unique join code and creates the room together
// with its owner membership. A store-level code collision that slips
// past the pre-check is retried like any other collision.
func (s *RoomService) CreateRoom(ctx context.Context, ownerID uint, name, description string) (*domain.RoomSummary, error) {
	logCtx := logrus.WithField("owner_id", ownerID)

	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load room creator")
		return nil, ErrInternalServer
	}

	var room *domain.Room
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := generateRoomCode()
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate room code")
			return nil, ErrInternalServer
		}

		taken, err := s.roomRepo.IsCodeTaken(ctx, code)
		if err != nil {
			logCtx.WithError(err).Error("Database error checking room code uniqueness")
			return nil, ErrInternalServer
		}
		if taken {
			logCtx.WithField("code", code).Warnf("Generated room code already exists, retrying (attempt %d)", attempt)
			continue
		}

		candidate := &domain.Room{
			Name:        name,
			Description: description,
			Code:        code,
			OwnerID:     ownerID,
		}
		err = s.roomRepo.CreateWithOwner(ctx, candidate)
		if err == nil {
			room = candidate
			break
		}
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost the race with a concurrent creation of the same code.
			logCtx.WithField("code", code).Warnf("Room code collided on insert, retrying (attempt %d)", attempt)
			continue
		}
		logCtx.WithError(err).Error("Failed to save new room")
		return nil, ErrInternalServer
	}
	if room == nil {
		logCtx.Errorf("Failed to allocate a unique room code after %d attempts", maxCodeAttempts)
		return nil, ErrInternalServer
	}

	logCtx.WithFields(logrus.Fields{"room_id": room.ID, "code": room.Code}).Info("Room created successfully")
	return &domain.RoomSummary{
		ID:             room.ID,
		Name:           room.Name,
		Description:    room.Description,
		Code:           room.Code,
		OwnerID:        room.OwnerID,
		OwnerName:      owner.Username,
		Role:           domain.RoleOwner,
		MemberCount:    1,
		ClipboardCount: 0,
		CreatedAt:      room.CreatedAt,
		UpdatedAt:      room.UpdatedAt,
	}, nil
}

// ListRooms returns every room the user belongs to.
func (s *RoomService) ListRooms(ctx context.Context, userID uint) ([]domain.RoomSummary, error) {
	rooms, err := s.roomRepo.ListByUser(ctx, userID)
	if err != nil {
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to list rooms")
		return nil, ErrInternalServer
	}
	return rooms, nil
}

// GetRoom returns the room detail with its roster. Missing room is a
// 404-class error; lack of membership is 403-class, checked after
// existence so the two stay distinguishable.
func (s *RoomService) GetRoom(ctx context.Context, userID, roomID uint) (*domain.RoomDetail, error) {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error loading room")
		return nil, ErrInternalServer
	}

	member, err := s.RequireMembership(ctx, userID, roomID)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.FindByID(ctx, room.OwnerID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to load room owner")
		return nil, ErrInternalServer
	}
	members, err := s.memberRepo.ListByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list room members")
		return nil, ErrInternalServer
	}
	itemCount, err := s.clipRepo.CountByRoom(ctx, roomID)
	if err != nil {
		logCtx.WithError(err).Error("Failed to count clipboard items")
		return nil, ErrInternalServer
	}

	return &domain.RoomDetail{
		RoomSummary: domain.RoomSummary{
			ID:             room.ID,
			Name:           room.Name,
			Description:    room.Description,
			Code:           room.Code,
			OwnerID:        room.OwnerID,
			OwnerName:      owner.Username,
			Role:           member.Role,
			MemberCount:    int64(len(members)),
			ClipboardCount: itemCount,
			CreatedAt:      room.CreatedAt,
			UpdatedAt:      room.UpdatedAt,
		},
		Members: members,
	}, nil
}

// JoinRoom adds the user as a member of the room addressed by code.
// Codes are normalized to uppercase before lookup.
func (s *RoomService) JoinRoom(ctx context.Context, userID uint, code string) (*domain.Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "code": code})

	if code == "" {
		return nil, ErrInvalidInput
	}

	room, err := s.roomRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			logCtx.Warn("Join failed: no room with this code")
			return nil, ErrInvalidRoomCode
		}
		logCtx.WithError(err).Error("Database error finding room by code")
		return nil, ErrInternalServer
	}

	if _, err := s.memberRepo.Find(ctx, userID, room.ID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, repository.ErrMembershipNotFound) {
		logCtx.WithError(err).Error("Database error checking existing membership")
		return nil, ErrInternalServer
	}

	member := &domain.RoomMember{
		UserID: userID,
		RoomID: room.ID,
		Role:   domain.RoleMember,
	}
	if err := s.memberRepo.Create(ctx, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			return nil, ErrAlreadyMember
		}
		logCtx.WithError(err).Error("Failed to create membership")
		return nil, ErrInternalServer
	}

	logCtx.WithField("room_id", room.ID).Info("User joined room")
	return room, nil
}

// LeaveRoom removes the user's membership. The owner cannot leave and
// must delete the room instead.
func (s *RoomService) LeaveRoom(ctx context.Context, userID, roomID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error loading room")
		return ErrInternalServer
	}

	if room.OwnerID == userID {
		return ErrOwnerCannotLeave
	}

	if err := s.memberRepo.Delete(ctx, userID, roomID); err != nil {
		if errors.Is(err, repository.ErrMembershipNotFound) {
			return ErrNotRoomMember
		}
		logCtx.WithError(err).Error("Failed to delete membership")
		return ErrInternalServer
	}

	logCtx.Info("User left room")
	return nil
}

// DeleteRoom is owner-only. Memberships and clipboard items cascade in
// the store transaction; the uploaded files are removed by the
// background worker so the request does not wait on disk I/O.
func (s *RoomService) DeleteRoom(ctx context.Context, userID, roomID uint) error {
	logCtx := logrus.WithFields(logrus.Fields{"user_id": userID, "room_id": roomID})

	room, err := s.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		logCtx.WithError(err).Error("Database error loading room")
		return ErrInternalServer
	}

	if room.OwnerID != userID {
		return ErrNotRoomOwner
	}

	if err := s.roomRepo.Delete(ctx, roomID); err != nil {
		logCtx.WithError(err).Error("Failed to delete room")
		return ErrInternalServer
	}

	if s.enqueuer != nil {
		task, err := tasks.NewUploadCleanupTask(roomID)
		if err != nil {
			logCtx.WithError(err).Error("Failed to build upload cleanup task")
		} else if _, err := s.enqueuer.Enqueue(task); err != nil {
			// The room is gone either way; orphaned files are the only cost.
			logCtx.WithError(err).Error("Failed to enqueue upload cleanup task")
		}
	}

	logCtx.Info("Room deleted")
	return nil
}

// generateRoomCode draws 6 characters from the code alphabet using
// crypto/rand.
func generateRoomCode() (string, error) {
	buf := make([]byte, roomCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	for i := range buf {
		buf[i] = roomCodeAlphabet[int(buf[i])%len(roomCodeAlphabet)]
	}
	return string(buf), nil
}
