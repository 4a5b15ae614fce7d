package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.User), args.Error(1)
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

func (m *MockUserRepo) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockTripRepo struct {
	mock.Mock
}

func (m *MockTripRepo) CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error) {
	args := m.Called(ctx, trip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripRepo) GetTripsByUsername(ctx context.Context, username string) ([]types.Trip, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockTripRepo) GetTripsByUserID(ctx context.Context, userID int64) ([]types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockTripRepo) GetTripByID(ctx context.Context, id int64) (*types.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockTripRepo) GetAll(ctx context.Context) ([]types.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockTripRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockChatRepo struct {
	mock.Mock
}

func (m *MockChatRepo) Save(ctx context.Context, turn *types.ChatHistory) (*types.ChatHistory, error) {
	args := m.Called(ctx, turn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatHistory), args.Error(1)
}

func (m *MockChatRepo) GetByUsernameAndConversation(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error) {
	args := m.Called(ctx, username, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatHistory), args.Error(1)
}

func (m *MockChatRepo) GetByUsername(ctx context.Context, username string) ([]types.ChatHistory, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatHistory), args.Error(1)
}

func (m *MockChatRepo) GetByUserID(ctx context.Context, userID int64) ([]types.ChatHistory, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatHistory), args.Error(1)
}

func (m *MockChatRepo) GetAll(ctx context.Context) ([]types.ChatHistory, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatHistory), args.Error(1)
}

func (m *MockChatRepo) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockChatRepo) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockChatRepo) GetConversationStats(ctx context.Context, conversationID string) (*types.ConversationStats, error) {
	args := m.Called(ctx, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ConversationStats), args.Error(1)
}

func newAdminService(t *testing.T) (*ServiceImpl, *MockUserRepo, *MockTripRepo, *MockChatRepo) {
	t.Helper()
	users := new(MockUserRepo)
	trips := new(MockTripRepo)
	chats := new(MockChatRepo)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(users, trips, chats, logger), users, trips, chats
}

func TestListUsers_ProjectsProfiles(t *testing.T) {
	svc, users, _, _ := newAdminService(t)

	users.On("ListUsers", mock.Anything).Return([]types.User{
		{ID: 1, Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Role: types.RoleUser},
		{ID: 2, Username: "root", Email: "root@example.com", PasswordHash: "hash", Role: types.RoleAdmin},
	}, nil).Once()

	profiles, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "alice", profiles[0].Username)
	assert.Equal(t, "ADMIN", profiles[1].Role)
}

func TestGetUserTrips_UnknownUser(t *testing.T) {
	svc, users, trips, _ := newAdminService(t)
	users.On("GetUserByID", mock.Anything, int64(9)).Return(nil, types.ErrNotFound).Once()

	_, err := svc.GetUserTrips(context.Background(), 9)
	assert.ErrorIs(t, err, types.ErrNotFound)
	trips.AssertNotCalled(t, "GetTripsByUserID", mock.Anything, mock.Anything)
}

func TestGetUserChats_EmptyHistoryIsNotNil(t *testing.T) {
	svc, users, _, chats := newAdminService(t)
	users.On("GetUserByID", mock.Anything, int64(1)).
		Return(&types.User{ID: 1, Username: "alice"}, nil).Once()
	chats.On("GetByUserID", mock.Anything, int64(1)).Return([]types.ChatHistory(nil), nil).Once()

	turns, err := svc.GetUserChats(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, turns)
	assert.Empty(t, turns)
}

func TestDeleteConversation(t *testing.T) {
	t.Run("returns stats of removed turns", func(t *testing.T) {
		svc, _, _, chats := newAdminService(t)
		stats := &types.ConversationStats{
			ConversationID: "trip_1",
			Username:       "alice",
			MessageCount:   2,
			FirstMessage:   time.Now().Add(-time.Hour),
			LastMessage:    time.Now(),
		}
		chats.On("GetConversationStats", mock.Anything, "trip_1").Return(stats, nil).Once()
		chats.On("DeleteConversation", mock.Anything, "trip_1").Return(int64(2), nil).Once()

		result, err := svc.DeleteConversation(context.Background(), "trip_1")
		require.NoError(t, err)
		assert.True(t, result.Deleted)
		assert.Equal(t, 2, result.Stats.MessageCount)
	})

	t.Run("unknown conversation deletes nothing", func(t *testing.T) {
		svc, _, _, chats := newAdminService(t)
		chats.On("GetConversationStats", mock.Anything, "ghost").Return(nil, types.ErrNotFound).Once()

		_, err := svc.DeleteConversation(context.Background(), "ghost")
		assert.ErrorIs(t, err, types.ErrNotFound)
		chats.AssertNotCalled(t, "DeleteConversation", mock.Anything, mock.Anything)
	})
}

func TestDeleteTrip_Passthrough(t *testing.T) {
	svc, _, trips, _ := newAdminService(t)
	trips.On("DeleteByID", mock.Anything, int64(42)).Return(types.ErrNotFound).Once()

	err := svc.DeleteTrip(context.Background(), 42)
	assert.ErrorIs(t, err, types.ErrNotFound)
}
