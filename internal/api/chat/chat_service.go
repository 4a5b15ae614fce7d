package chat

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	generativeAI "github.com/sukhpreet-s/travel-planner-api/internal/api/generative_ai"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const (
	modelCallTimeout = 30 * time.Second

	chatSystemPrompt = "You are a helpful travel planning assistant. Provide concise and helpful responses about travel, trips, destinations, and planning."

	contextPreamble = "You are a travel planning assistant. Help users with travel-related questions.\n\n"

	// apologyResponse is stored instead of a model reply when the model
	// cannot be reached; the turn persists either way so the conversation
	// stays auditable.
	apologyResponse = "I apologize, but I'm having trouble responding right now. Please try again later."
)

// UserResolver is the slice of the user store this service needs.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// ProcessMessage appends a turn to the conversation, minting a fresh
	// conversation id when none is supplied. Model failure yields a fixed
	// apology response, never an error.
	ProcessMessage(ctx context.Context, username, message, conversationID string) (*types.ChatHistory, error)
	// RecordTurn persists an already-composed turn without calling the
	// model. The trip synthesiser uses it to file the plan summary under
	// the trip's conversation.
	RecordTurn(ctx context.Context, username, conversationID, userMessage, aiResponse string) (*types.ChatHistory, error)
	// History returns the user's turns, optionally scoped to one
	// conversation, oldest first.
	History(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error)
}

type ServiceImpl struct {
	repo      Repository
	users     UserResolver
	generator generativeAI.Generator
	logger    *slog.Logger
}

func NewService(repo Repository, users UserResolver, generator generativeAI.Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:      repo,
		users:     users,
		generator: generator,
		logger:    logger,
	}
}

func (s *ServiceImpl) ProcessMessage(ctx context.Context, username, message, conversationID string) (*types.ChatHistory, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving chat user: %w", err)
	}

	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	aiResponse := s.generateResponse(ctx, username, conversationID, message)

	return s.repo.Save(ctx, &types.ChatHistory{
		UserID:         user.ID,
		Username:       username,
		UserMessage:    message,
		AiResponse:     aiResponse,
		ConversationID: conversationID,
	})
}

func (s *ServiceImpl) RecordTurn(ctx context.Context, username, conversationID, userMessage, aiResponse string) (*types.ChatHistory, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving chat user: %w", err)
	}

	return s.repo.Save(ctx, &types.ChatHistory{
		UserID:         user.ID,
		Username:       username,
		UserMessage:    userMessage,
		AiResponse:     aiResponse,
		ConversationID: conversationID,
	})
}

func (s *ServiceImpl) History(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error) {
	if conversationID != "" {
		return s.repo.GetByUsernameAndConversation(ctx, username, conversationID)
	}
	return s.repo.GetByUsername(ctx, username)
}

// generateResponse builds the accumulated-conversation prompt and
// calls the model. Any failure, including a failure to load history,
// degrades to the apology response.
func (s *ServiceImpl) generateResponse(ctx context.Context, username, conversationID, message string) string {
	history, err := s.repo.GetByUsernameAndConversation(ctx, username, conversationID)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load conversation history",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()))
		return apologyResponse
	}

	var sb strings.Builder
	sb.WriteString(contextPreamble)
	for _, turn := range history {
		if turn.UserMessage != "" {
			sb.WriteString("User: ")
			sb.WriteString(turn.UserMessage)
			sb.WriteString("\n")
		}
		if turn.AiResponse != "" {
			sb.WriteString("Assistant: ")
			sb.WriteString(turn.AiResponse)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("User: ")
	sb.WriteString(message)

	callCtx, cancel := context.WithTimeout(ctx, modelCallTimeout)
	defer cancel()

	response, err := s.generator.GenerateCompletion(callCtx, chatSystemPrompt, sb.String())
	if err != nil {
		s.logger.WarnContext(ctx, "Chat model call failed, storing apology",
			slog.String("conversation_id", conversationID),
			slog.String("error", err.Error()))
		return apologyResponse
	}
	return response
}
