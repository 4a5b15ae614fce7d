package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var _ Repository = (*PostgresAdminRepo)(nil)

// Repository covers the user administration queries the regular auth
// repository does not need.
type Repository interface {
	ListUsers(ctx context.Context) ([]types.User, error)
	GetUserByID(ctx context.Context, id int64) (*types.User, error)
	// DeleteUser removes the user; trips and chat history cascade.
	// types.ErrNotFound when the id is unknown.
	DeleteUser(ctx context.Context, id int64) error
}

type PostgresAdminRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresAdminRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresAdminRepo {
	return &PostgresAdminRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAdminRepo) ListUsers(ctx context.Context) ([]types.User, error) {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "ListUsers", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		ORDER BY id`

	rows, err := r.pgpool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []types.User
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("user iteration failed: %w", err)
	}
	return users, nil
}

func (r *PostgresAdminRepo) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.Int64("user.id", id),
	))
	defer span.End()

	query := `
		SELECT id, username, email, password_hash, role, created_at
		FROM users
		WHERE id = $1`

	var u types.User
	err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %d: %w", id, err)
	}
	return &u, nil
}

func (r *PostgresAdminRepo) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("AdminRepo").Start(ctx, "DeleteUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.Int64("user.id", id),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, types.ErrNotFound)
	}
	return nil
}
