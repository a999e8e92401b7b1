package service_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/superherotang/clip/internal/domain"
	"github.com/superherotang/clip/internal/repository"
	"github.com/superherotang/clip/internal/repository/mocks"
	"github.com/superherotang/clip/internal/service"
	"github.com/superherotang/clip/internal/tasks"
)

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// mockEnqueuer records enqueued tasks in place of a real asynq client.
type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task)
	var info *asynq.TaskInfo
	if args.Get(0) != nil {
		info = args.Get(0).(*asynq.TaskInfo)
	}
	return info, args.Error(1)
}

type roomServiceMocks struct {
	roomRepo   *mocks.RoomRepository
	memberRepo *mocks.MemberRepository
	clipRepo   *mocks.ClipboardRepository
	userRepo   *mocks.UserRepository
	enqueuer   *mockEnqueuer
}

func newRoomService(enqueuer service.TaskEnqueuer) (*service.RoomService, roomServiceMocks) {
	m := roomServiceMocks{
		roomRepo:   new(mocks.RoomRepository),
		memberRepo: new(mocks.MemberRepository),
		clipRepo:   new(mocks.ClipboardRepository),
		userRepo:   new(mocks.UserRepository),
	}
	if e, ok := enqueuer.(*mockEnqueuer); ok {
		m.enqueuer = e
	}
	svc := service.NewRoomService(m.roomRepo, m.memberRepo, m.clipRepo, m.userRepo, enqueuer)
	return svc, m
}

func TestRoomService_CreateRoom_Success(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.userRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil).
		Once()
	m.roomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).
		Return(false, nil).
		Once()
	m.roomRepo.On("CreateWithOwner", ctx, mock.MatchedBy(func(room *domain.Room) bool {
		assert.Equal(t, "Work Notes", room.Name)
		assert.Equal(t, uint(1), room.OwnerID)
		assert.Len(t, room.Code, 6)
		for _, ch := range room.Code {
			assert.Contains(t, codeAlphabet, string(ch),
				"code must avoid ambiguous glyphs")
		}
		return true
	})).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Room).ID = 10
		}).
		Return(nil).
		Once()

	summary, err := svc.CreateRoom(ctx, 1, "Work Notes", "scratch space")

	assert.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, uint(10), summary.ID)
	assert.Equal(t, "alice", summary.OwnerName)
	assert.Equal(t, domain.RoleOwner, summary.Role)
	assert.Equal(t, int64(1), summary.MemberCount)
	assert.Equal(t, int64(0), summary.ClipboardCount)
	m.roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_RetriesOnCollision(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.userRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil).
		Once()
	// First code is taken, second passes the pre-check but collides on
	// insert, third succeeds.
	m.roomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).
		Return(true, nil).
		Once()
	m.roomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).
		Return(false, nil).
		Twice()
	m.roomRepo.On("CreateWithOwner", ctx, mock.Anything).
		Return(repository.ErrDuplicateEntry).
		Once()
	m.roomRepo.On("CreateWithOwner", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Room).ID = 11
		}).
		Return(nil).
		Once()

	summary, err := svc.CreateRoom(ctx, 1, "Retry Room", "")

	assert.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, uint(11), summary.ID)
	m.roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_ExhaustsAttempts(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.userRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil).
		Once()
	m.roomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).
		Return(true, nil).
		Times(10)

	summary, err := svc.CreateRoom(ctx, 1, "Unlucky", "")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, service.ErrInternalServer)
	m.roomRepo.AssertNotCalled(t, "CreateWithOwner", mock.Anything, mock.Anything)
	m.roomRepo.AssertExpectations(t)
}

func TestRoomService_CreateRoom_EmptyName(t *testing.T) {
	svc, m := newRoomService(nil)

	summary, err := svc.CreateRoom(context.Background(), 1, "   ", "")

	assert.Nil(t, summary)
	assert.ErrorIs(t, err, service.ErrInvalidInput)
	m.roomRepo.AssertNotCalled(t, "CreateWithOwner", mock.Anything, mock.Anything)
}

func TestRoomService_JoinRoom_Success(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	room := &domain.Room{ID: 3, Name: "Shared", Code: "ABC234", OwnerID: 1}
	// Lowercase input must be normalized before the lookup.
	m.roomRepo.On("FindByCode", ctx, "ABC234").
		Return(room, nil).
		Once()
	m.memberRepo.On("Find", ctx, uint(2), uint(3)).
		Return(nil, repository.ErrMembershipNotFound).
		Once()
	m.memberRepo.On("Create", ctx, mock.MatchedBy(func(member *domain.RoomMember) bool {
		return member.UserID == 2 && member.RoomID == 3 && member.Role == domain.RoleMember
	})).
		Return(nil).
		Once()

	joined, err := svc.JoinRoom(ctx, 2, "abc234")

	assert.NoError(t, err)
	require.NotNil(t, joined)
	assert.Equal(t, uint(3), joined.ID)
	assert.Equal(t, "Shared", joined.Name)
	m.memberRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_UnknownCode(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByCode", ctx, "ZZZZZZ").
		Return(nil, repository.ErrRoomNotFound).
		Once()

	joined, err := svc.JoinRoom(ctx, 2, "zzzzzz")

	assert.Nil(t, joined)
	assert.ErrorIs(t, err, service.ErrInvalidRoomCode)
	m.roomRepo.AssertExpectations(t)
}

func TestRoomService_JoinRoom_AlreadyMember(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	room := &domain.Room{ID: 3, Code: "ABC234", OwnerID: 1}
	m.roomRepo.On("FindByCode", ctx, "ABC234").
		Return(room, nil).
		Once()
	m.memberRepo.On("Find", ctx, uint(2), uint(3)).
		Return(&domain.RoomMember{UserID: 2, RoomID: 3, Role: domain.RoleMember}, nil).
		Once()

	joined, err := svc.JoinRoom(ctx, 2, "ABC234")

	assert.Nil(t, joined)
	assert.ErrorIs(t, err, service.ErrAlreadyMember)
	m.memberRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRoomService_LeaveRoom_OwnerRejected(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()

	err := svc.LeaveRoom(ctx, 1, 3)

	assert.ErrorIs(t, err, service.ErrOwnerCannotLeave)
	m.memberRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_LeaveRoom_Member(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()
	m.memberRepo.On("Delete", ctx, uint(2), uint(3)).
		Return(nil).
		Once()

	err := svc.LeaveRoom(ctx, 2, 3)

	assert.NoError(t, err)
	m.memberRepo.AssertExpectations(t)
}

func TestRoomService_DeleteRoom_NotOwner(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()

	err := svc.DeleteRoom(ctx, 2, 3)

	assert.ErrorIs(t, err, service.ErrNotRoomOwner)
	m.roomRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestRoomService_DeleteRoom_EnqueuesCleanup(t *testing.T) {
	enqueuer := new(mockEnqueuer)
	svc, m := newRoomService(enqueuer)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()
	m.roomRepo.On("Delete", ctx, uint(3)).
		Return(nil).
		Once()
	enqueuer.On("Enqueue", mock.MatchedBy(func(task *asynq.Task) bool {
		if task.Type() != tasks.TypeUploadCleanup {
			return false
		}
		var payload tasks.UploadCleanupPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &payload))
		return payload.RoomID == 3
	})).
		Return(nil, nil).
		Once()

	err := svc.DeleteRoom(ctx, 1, 3)

	assert.NoError(t, err)
	m.roomRepo.AssertExpectations(t)
	enqueuer.AssertExpectations(t)
}

func TestRoomService_DeleteRoom_EnqueueFailureIsNotFatal(t *testing.T) {
	enqueuer := new(mockEnqueuer)
	svc, m := newRoomService(enqueuer)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()
	m.roomRepo.On("Delete", ctx, uint(3)).
		Return(nil).
		Once()
	enqueuer.On("Enqueue", mock.Anything).
		Return(nil, asynq.ErrDuplicateTask).
		Once()

	err := svc.DeleteRoom(ctx, 1, 3)

	assert.NoError(t, err, "losing the cleanup task only orphans files; the delete stands")
	m.roomRepo.AssertExpectations(t)
}

func TestRoomService_GetRoom_NotFoundBeforeForbidden(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(99)).
		Return(nil, repository.ErrRoomNotFound).
		Once()

	detail, err := svc.GetRoom(ctx, 2, 99)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, service.ErrRoomNotFound,
		"a missing room must not be reported as access denied")
	m.memberRepo.AssertNotCalled(t, "Find", mock.Anything, mock.Anything, mock.Anything)
}

func TestRoomService_GetRoom_NonMemberForbidden(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, OwnerID: 1}, nil).
		Once()
	m.memberRepo.On("Find", ctx, uint(2), uint(3)).
		Return(nil, repository.ErrMembershipNotFound).
		Once()

	detail, err := svc.GetRoom(ctx, 2, 3)

	assert.Nil(t, detail)
	assert.ErrorIs(t, err, service.ErrNotRoomMember)
}

func TestRoomService_GetRoom_Detail(t *testing.T) {
	svc, m := newRoomService(nil)
	ctx := context.Background()

	m.roomRepo.On("FindByID", ctx, uint(3)).
		Return(&domain.Room{ID: 3, Name: "Shared", Code: "ABC234", OwnerID: 1}, nil).
		Once()
	m.memberRepo.On("Find", ctx, uint(2), uint(3)).
		Return(&domain.RoomMember{UserID: 2, RoomID: 3, Role: domain.RoleMember}, nil).
		Once()
	m.userRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil).
		Once()
	m.memberRepo.On("ListByRoom", ctx, uint(3)).
		Return([]domain.MemberInfo{
			{UserID: 1, Username: "alice", Role: domain.RoleOwner},
			{UserID: 2, Username: "bob", Role: domain.RoleMember},
		}, nil).
		Once()
	m.clipRepo.On("CountByRoom", ctx, uint(3)).
		Return(int64(5), nil).
		Once()

	detail, err := svc.GetRoom(ctx, 2, 3)

	assert.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, "alice", detail.OwnerName)
	assert.Equal(t, domain.RoleMember, detail.Role, "role reflects the caller, not the owner")
	assert.Equal(t, int64(2), detail.MemberCount)
	assert.Equal(t, int64(5), detail.ClipboardCount)
	assert.Len(t, detail.Members, 2)
}

func TestGenerateRoomCode_Distribution(t *testing.T) {
	// Codes come from CreateRoom; sample a few and check shape via the
	// repository mock.
	svc, m := newRoomService(nil)
	ctx := context.Background()

	seen := make(map[string]bool)
	m.userRepo.On("FindByID", ctx, uint(1)).
		Return(&domain.User{ID: 1, Username: "alice"}, nil)
	m.roomRepo.On("IsCodeTaken", ctx, mock.AnythingOfType("string")).
		Return(false, nil)
	m.roomRepo.On("CreateWithOwner", ctx, mock.Anything).
		Run(func(args mock.Arguments) {
			room := args.Get(1).(*domain.Room)
			seen[room.Code] = true
			assert.Len(t, room.Code, 6)
			assert.Equal(t, strings.ToUpper(room.Code), room.Code)
		}).
		Return(nil)

	for i := 0; i < 20; i++ {
		_, err := svc.CreateRoom(ctx, 1, "Room", "")
		require.NoError(t, err)
	}

	assert.Greater(t, len(seen), 15, "codes should be effectively unique across draws")
}
