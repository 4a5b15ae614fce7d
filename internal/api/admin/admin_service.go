package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sukhpreet-s/travel-planner-api/internal/api/chat"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/trip"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

// Service is the administration surface: cross-user listings, deletions
// and conversation statistics.
type Service interface {
	ListUsers(ctx context.Context) ([]types.UserProfile, error)
	ListTrips(ctx context.Context) ([]types.TripResponse, error)
	ListChats(ctx context.Context) ([]types.ChatHistory, error)
	GetUserTrips(ctx context.Context, userID int64) ([]types.TripResponse, error)
	GetUserChats(ctx context.Context, userID int64) ([]types.ChatHistory, error)
	// DeleteUser cascades to the user's trips and chat history.
	DeleteUser(ctx context.Context, userID int64) error
	DeleteTrip(ctx context.Context, tripID int64) error
	DeleteChat(ctx context.Context, chatID int64) error
	GetConversationStats(ctx context.Context, conversationID string) (*types.ConversationStats, error)
	// DeleteConversation reports the stats of what it removed.
	DeleteConversation(ctx context.Context, conversationID string) (*types.ConversationDeletion, error)
}

type ServiceImpl struct {
	users  Repository
	trips  trip.Repository
	chats  chat.Repository
	logger *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(users Repository, trips trip.Repository, chats chat.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		users:  users,
		trips:  trips,
		chats:  chats,
		logger: logger,
	}
}

func (s *ServiceImpl) ListUsers(ctx context.Context) ([]types.UserProfile, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]types.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, types.NewUserProfile(&users[i]))
	}
	return profiles, nil
}

func (s *ServiceImpl) ListTrips(ctx context.Context) ([]types.TripResponse, error) {
	trips, err := s.trips.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return tripResponses(trips), nil
}

func (s *ServiceImpl) ListChats(ctx context.Context) ([]types.ChatHistory, error) {
	turns, err := s.chats.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []types.ChatHistory{}
	}
	return turns, nil
}

func (s *ServiceImpl) GetUserTrips(ctx context.Context, userID int64) ([]types.TripResponse, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	trips, err := s.trips.GetTripsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return tripResponses(trips), nil
}

func (s *ServiceImpl) GetUserChats(ctx context.Context, userID int64) ([]types.ChatHistory, error) {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	turns, err := s.chats.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if turns == nil {
		turns = []types.ChatHistory{}
	}
	return turns, nil
}

func (s *ServiceImpl) DeleteUser(ctx context.Context, userID int64) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "User deleted", slog.Int64("user_id", userID))
	return nil
}

func (s *ServiceImpl) DeleteTrip(ctx context.Context, tripID int64) error {
	return s.trips.DeleteByID(ctx, tripID)
}

func (s *ServiceImpl) DeleteChat(ctx context.Context, chatID int64) error {
	return s.chats.DeleteByID(ctx, chatID)
}

func (s *ServiceImpl) GetConversationStats(ctx context.Context, conversationID string) (*types.ConversationStats, error) {
	return s.chats.GetConversationStats(ctx, conversationID)
}

func (s *ServiceImpl) DeleteConversation(ctx context.Context, conversationID string) (*types.ConversationDeletion, error) {
	// Stats first: they describe what is about to disappear, and an
	// unknown conversation fails here before anything is touched.
	stats, err := s.chats.GetConversationStats(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	deleted, err := s.chats.DeleteConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("deleting conversation %s: %w", conversationID, err)
	}

	s.logger.InfoContext(ctx, "Conversation deleted",
		slog.String("conversation_id", conversationID),
		slog.Int64("turns_removed", deleted))
	return &types.ConversationDeletion{Stats: *stats, Deleted: deleted > 0}, nil
}

func tripResponses(trips []types.Trip) []types.TripResponse {
	responses := make([]types.TripResponse, 0, len(trips))
	for i := range trips {
		responses = append(responses, types.NewTripResponse(&trips[i]))
	}
	return responses
}
