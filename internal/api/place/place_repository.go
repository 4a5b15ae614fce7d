package place

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

// PlaceUpsert carries one model-suggested place. Nil EntryFee and
// RecommendedDuration mean "the model provided no value": an existing
// row keeps what it has and a new row takes zero.
type PlaceUpsert struct {
	Name                string
	Description         string
	Category            string
	EntryFee            *float64
	RecommendedDuration *int
}

var _ Repository = (*PostgresPlaceRepo)(nil)

// Repository is the contract for the shared place catalogue.
type Repository interface {
	// UpsertBatch inserts or updates every suggested place for a city in
	// one transaction, matching existing rows by (city, lower(name)).
	UpsertBatch(ctx context.Context, city string, places []PlaceUpsert) ([]types.Place, error)

	GetPlacesByCity(ctx context.Context, city string) ([]types.Place, error)
	GetPlacesByCityAndCategory(ctx context.Context, city, category string) ([]types.Place, error)
	// GetTopRatedPlacesInCity returns the city's places with rating >= 4.0.
	GetTopRatedPlacesInCity(ctx context.Context, city string) ([]types.Place, error)
	GetAllPlaces(ctx context.Context) ([]types.Place, error)
	// GetPlaceByID returns api's ErrNotFound sentinel when the id is unknown.
	GetPlaceByID(ctx context.Context, id int64) (*types.Place, error)
}

type PostgresPlaceRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresPlaceRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresPlaceRepo {
	return &PostgresPlaceRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const placeColumns = `id, name, description, city, country, latitude, longitude,
	coordinates_known, category, image_url, entry_fee, recommended_duration,
	rating, best_time_to_visit`

const upsertPlaceQuery = `
	INSERT INTO famous_places
		(name, description, city, country, category, entry_fee, recommended_duration,
		 rating, latitude, longitude, coordinates_known)
	VALUES ($1, $2, $3, 'India', $4, COALESCE($5, 0), COALESCE($6, 0), 4.0, 0, 0, FALSE)
	ON CONFLICT (city, lower(name)) DO UPDATE SET
		description          = CASE WHEN $2 <> '' THEN $2 ELSE famous_places.description END,
		category             = CASE WHEN $4 <> '' THEN $4 ELSE famous_places.category END,
		entry_fee            = COALESCE($5, famous_places.entry_fee),
		recommended_duration = COALESCE($6, famous_places.recommended_duration),
		updated_at           = now()
	RETURNING ` + placeColumns

func (r *PostgresPlaceRepo) UpsertBatch(ctx context.Context, city string, places []PlaceUpsert) (_ []types.Place, err error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "UpsertBatch", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "famous_places"),
		attribute.String("place.city", city),
		attribute.Int("place.count", len(places)),
	))
	defer span.End()

	if len(places) == 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "famous_places", start, err) }()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin place upsert transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	saved := make([]types.Place, 0, len(places))
	for _, p := range places {
		var place types.Place
		err := tx.QueryRow(ctx, upsertPlaceQuery,
			p.Name, p.Description, city, p.Category, p.EntryFee, p.RecommendedDuration,
		).Scan(scanTargets(&place)...)
		if err != nil {
			return nil, fmt.Errorf("failed to upsert place %q in %q: %w", p.Name, city, err)
		}
		saved = append(saved, place)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit place upserts: %w", err)
	}
	return saved, nil
}

func (r *PostgresPlaceRepo) GetPlacesByCity(ctx context.Context, city string) ([]types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM famous_places WHERE lower(city) = lower($1) ORDER BY rating DESC, name`
	return r.queryPlaces(ctx, "GetPlacesByCity", query, city)
}

func (r *PostgresPlaceRepo) GetPlacesByCityAndCategory(ctx context.Context, city, category string) ([]types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM famous_places
		WHERE lower(city) = lower($1) AND lower(category) = lower($2)
		ORDER BY rating DESC, name`
	return r.queryPlaces(ctx, "GetPlacesByCityAndCategory", query, city, category)
}

func (r *PostgresPlaceRepo) GetTopRatedPlacesInCity(ctx context.Context, city string) ([]types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM famous_places
		WHERE lower(city) = lower($1) AND rating >= 4.0
		ORDER BY rating DESC, name`
	return r.queryPlaces(ctx, "GetTopRatedPlacesInCity", query, city)
}

func (r *PostgresPlaceRepo) GetAllPlaces(ctx context.Context) ([]types.Place, error) {
	query := `SELECT ` + placeColumns + ` FROM famous_places ORDER BY city, name`
	return r.queryPlaces(ctx, "GetAllPlaces", query)
}

func (r *PostgresPlaceRepo) GetPlaceByID(ctx context.Context, id int64) (*types.Place, error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, "GetPlaceByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "famous_places"),
		attribute.Int64("place.id", id),
	))
	defer span.End()

	query := `SELECT ` + placeColumns + ` FROM famous_places WHERE id = $1`
	var place types.Place
	err := r.pgpool.QueryRow(ctx, query, id).Scan(scanTargets(&place)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("place %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch place %d: %w", id, err)
	}
	return &place, nil
}

func (r *PostgresPlaceRepo) queryPlaces(ctx context.Context, method, query string, args ...any) (places []types.Place, err error) {
	ctx, span := otel.Tracer("PlaceRepo").Start(ctx, method, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "famous_places"),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "famous_places", start, err) }()

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", method, err)
	}
	defer rows.Close()
	for rows.Next() {
		var place types.Place
		if err := rows.Scan(scanTargets(&place)...); err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", method, err)
		}
		places = append(places, place)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration failed: %w", method, err)
	}
	return places, nil
}

func scanTargets(p *types.Place) []any {
	return []any{
		&p.ID, &p.Name, &p.Description, &p.City, &p.Country,
		&p.Latitude, &p.Longitude, &p.CoordinatesKnown, &p.Category,
		&p.ImageURL, &p.EntryFee, &p.RecommendedDurationHours,
		&p.Rating, &p.BestTimeToVisit,
	}
}
