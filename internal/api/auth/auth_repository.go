package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sukhpreet-s/travel-planner-api/internal/api"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const uniqueViolationCode = "23505"

var _ Repository = (*PostgresAuthRepo)(nil)

type Repository interface {
	// CreateUser fails with types.ErrConflict when the username or email
	// is already taken.
	CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error)
	// GetUserByUsername fails with types.ErrNotFound for unknown users.
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
	GetUserByID(ctx context.Context, id int64) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresAuthRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, username, email, passwordHash string, role types.Role) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateUser", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.String("user.username", username),
	))
	defer span.End()

	query := `
		INSERT INTO users (username, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	user := types.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	err := r.pgpool.QueryRow(ctx, query, username, email, passwordHash, role).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("username or email already exists: %w", types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByUsername", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
	))
	defer span.End()

	query := `SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = $1`
	return r.scanUser(r.pgpool.QueryRow(ctx, query, username), username)
}

func (r *PostgresAuthRepo) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "GetUserByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "users"),
		attribute.Int64("user.id", id),
	))
	defer span.End()

	query := `SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = $1`
	return r.scanUser(r.pgpool.QueryRow(ctx, query, id), fmt.Sprintf("id %d", id))
}

func (r *PostgresAuthRepo) scanUser(row pgx.Row, ref any) (*types.User, error) {
	var user types.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %v: %w", ref, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %v: %w", ref, err)
	}
	return &user, nil
}
