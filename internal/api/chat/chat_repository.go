package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Repository = (*PostgresChatRepo)(nil)

// Repository persists conversation turns. Listings are always ordered
// by (created_at, id) so turns inserted in the same instant keep their
// insertion order.
type Repository interface {
	Save(ctx context.Context, turn *types.ChatHistory) (*types.ChatHistory, error)
	GetByUsernameAndConversation(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error)
	GetByUsername(ctx context.Context, username string) ([]types.ChatHistory, error)
	GetByUserID(ctx context.Context, userID int64) ([]types.ChatHistory, error)
	GetAll(ctx context.Context) ([]types.ChatHistory, error)
	// DeleteByID removes one turn; types.ErrNotFound when the id is unknown.
	DeleteByID(ctx context.Context, id int64) error
	// DeleteConversation removes every turn of a conversation and clears
	// the conversation reference on trips that pointed at it, in one
	// transaction. Returns the number of turns removed.
	DeleteConversation(ctx context.Context, conversationID string) (int64, error)
	// GetConversationStats fails with types.ErrNotFound when the
	// conversation has no turns.
	GetConversationStats(ctx context.Context, conversationID string) (*types.ConversationStats, error)
}

type PostgresChatRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresChatRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresChatRepo {
	return &PostgresChatRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const chatSelect = `
	SELECT ch.id, ch.user_id, u.username, ch.user_message, ch.ai_response,
	       ch.conversation_id, ch.created_at
	FROM chat_history ch
	JOIN users u ON u.id = ch.user_id`

func (r *PostgresChatRepo) Save(ctx context.Context, turn *types.ChatHistory) (_ *types.ChatHistory, err error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "Save", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_history"),
		attribute.String("chat.conversation_id", turn.ConversationID),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "chat_history", start, err) }()

	query := `
		INSERT INTO chat_history (user_id, user_message, ai_response, conversation_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	saved := *turn
	err = r.pgpool.QueryRow(ctx, query,
		turn.UserID, turn.UserMessage, turn.AiResponse, turn.ConversationID,
	).Scan(&saved.ID, &saved.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to save chat turn: %w", err)
	}
	return &saved, nil
}

func (r *PostgresChatRepo) GetByUsernameAndConversation(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error) {
	query := chatSelect + `
		WHERE u.username = $1 AND ch.conversation_id = $2
		ORDER BY ch.created_at, ch.id`
	return r.queryTurns(ctx, "GetByUsernameAndConversation", query, username, conversationID)
}

func (r *PostgresChatRepo) GetByUsername(ctx context.Context, username string) ([]types.ChatHistory, error) {
	query := chatSelect + `
		WHERE u.username = $1
		ORDER BY ch.created_at, ch.id`
	return r.queryTurns(ctx, "GetByUsername", query, username)
}

func (r *PostgresChatRepo) GetByUserID(ctx context.Context, userID int64) ([]types.ChatHistory, error) {
	query := chatSelect + `
		WHERE ch.user_id = $1
		ORDER BY ch.created_at, ch.id`
	return r.queryTurns(ctx, "GetByUserID", query, userID)
}

func (r *PostgresChatRepo) GetAll(ctx context.Context) ([]types.ChatHistory, error) {
	query := chatSelect + ` ORDER BY ch.created_at, ch.id`
	return r.queryTurns(ctx, "GetAll", query)
}

func (r *PostgresChatRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "DeleteByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_history"),
		attribute.Int64("chat.id", id),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM chat_history WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresChatRepo) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "DeleteConversation", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_history"),
		attribute.String("chat.conversation_id", conversationID),
	))
	defer span.End()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin conversation delete: %w", err)
	}
	defer tx.Rollback(ctx)

	// Trips keep no dangling reference to a conversation that no longer exists.
	if _, err := tx.Exec(ctx,
		`UPDATE trips SET conversation_id = NULL WHERE conversation_id = $1`, conversationID); err != nil {
		return 0, fmt.Errorf("failed to detach conversation from trips: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM chat_history WHERE conversation_id = $1`, conversationID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversation %s: %w", conversationID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit conversation delete: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresChatRepo) GetConversationStats(ctx context.Context, conversationID string) (*types.ConversationStats, error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, "GetConversationStats", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_history"),
		attribute.String("chat.conversation_id", conversationID),
	))
	defer span.End()

	query := `
		SELECT ch.conversation_id, u.username, count(*), min(ch.created_at), max(ch.created_at)
		FROM chat_history ch
		JOIN users u ON u.id = ch.user_id
		WHERE ch.conversation_id = $1
		GROUP BY ch.conversation_id, u.username`

	var stats types.ConversationStats
	err := r.pgpool.QueryRow(ctx, query, conversationID).Scan(
		&stats.ConversationID, &stats.Username, &stats.MessageCount,
		&stats.FirstMessage, &stats.LastMessage,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation stats: %w", err)
	}
	return &stats, nil
}

func (r *PostgresChatRepo) queryTurns(ctx context.Context, method, query string, args ...any) (turns []types.ChatHistory, err error) {
	ctx, span := otel.Tracer("ChatRepo").Start(ctx, method, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "chat_history"),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "chat_history", start, err) }()

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", method, err)
	}
	defer rows.Close()
	for rows.Next() {
		var turn types.ChatHistory
		if err := rows.Scan(&turn.ID, &turn.UserID, &turn.Username, &turn.UserMessage,
			&turn.AiResponse, &turn.ConversationID, &turn.Timestamp); err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", method, err)
		}
		turns = append(turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration failed: %w", method, err)
	}
	return turns, nil
}
