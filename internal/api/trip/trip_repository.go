package trip

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

var _ Repository = (*PostgresTripRepo)(nil)

// Repository persists trips and their recommended-place references.
// Trips are immutable after creation, so there is no update path.
type Repository interface {
	// CreateTrip writes the trip row and its place references in one
	// transaction. The place order of trip.RecommendedPlaces is preserved.
	CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error)
	GetTripsByUsername(ctx context.Context, username string) ([]types.Trip, error)
	GetTripsByUserID(ctx context.Context, userID int64) ([]types.Trip, error)
	// GetTripByID fails with types.ErrNotFound when the id is unknown.
	GetTripByID(ctx context.Context, id int64) (*types.Trip, error)
	GetAll(ctx context.Context) ([]types.Trip, error)
	// DeleteByID removes one trip; types.ErrNotFound when the id is unknown.
	DeleteByID(ctx context.Context, id int64) error
}

type PostgresTripRepo struct {
	logger *slog.Logger
	pgpool api.DBPool
}

func NewPostgresTripRepo(pgpool api.DBPool, logger *slog.Logger) *PostgresTripRepo {
	return &PostgresTripRepo{
		logger: logger,
		pgpool: pgpool,
	}
}

const tripSelect = `
	SELECT t.id, t.user_id, u.username, t.source_city, t.destination_city,
	       t.source_lat, t.source_lng, t.dest_lat, t.dest_lng,
	       t.passengers, t.budget, t.comfort_level, t.recommended_mode,
	       t.distance_estimate, t.confidence_score,
	       t.source_weather, t.destination_weather, t.conversation_id, t.created_at
	FROM trips t
	JOIN users u ON u.id = t.user_id`

func (r *PostgresTripRepo) CreateTrip(ctx context.Context, trip *types.Trip) (_ *types.Trip, err error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "CreateTrip", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.String("trip.destination_city", trip.DestinationCity),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "trips", start, err) }()

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin trip insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO trips (user_id, source_city, destination_city,
			source_lat, source_lng, dest_lat, dest_lng,
			passengers, budget, comfort_level, recommended_mode,
			distance_estimate, confidence_score,
			source_weather, destination_weather, conversation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NULLIF($16, ''))
		RETURNING id, created_at`

	saved := *trip
	err = tx.QueryRow(ctx, query,
		trip.UserID, trip.SourceCity, trip.DestinationCity,
		trip.SourceLat, trip.SourceLng, trip.DestLat, trip.DestLng,
		trip.Passengers, trip.Budget, string(trip.ComfortLevel), trip.RecommendedMode,
		trip.DistanceEstimateKm, trip.ConfidenceScore,
		trip.SourceWeather, trip.DestinationWeather, trip.ConversationID,
	).Scan(&saved.ID, &saved.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	for i, place := range trip.RecommendedPlaces {
		if _, err := tx.Exec(ctx, `
			INSERT INTO trip_recommended_places (trip_id, place_id, position)
			VALUES ($1, $2, $3)
			ON CONFLICT (trip_id, place_id) DO NOTHING`,
			saved.ID, place.ID, i,
		); err != nil {
			return nil, fmt.Errorf("failed to link place %d to trip %d: %w", place.ID, saved.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit trip insert: %w", err)
	}
	return &saved, nil
}

func (r *PostgresTripRepo) GetTripsByUsername(ctx context.Context, username string) ([]types.Trip, error) {
	query := tripSelect + `
		WHERE u.username = $1
		ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTrips(ctx, "GetTripsByUsername", query, username)
}

func (r *PostgresTripRepo) GetTripsByUserID(ctx context.Context, userID int64) ([]types.Trip, error) {
	query := tripSelect + `
		WHERE t.user_id = $1
		ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTrips(ctx, "GetTripsByUserID", query, userID)
}

func (r *PostgresTripRepo) GetTripByID(ctx context.Context, id int64) (*types.Trip, error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "GetTripByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.Int64("trip.id", id),
	))
	defer span.End()

	query := tripSelect + ` WHERE t.id = $1`
	var trip types.Trip
	var conversationID *string
	err := r.pgpool.QueryRow(ctx, query, id).Scan(
		&trip.ID, &trip.UserID, &trip.Username, &trip.SourceCity, &trip.DestinationCity,
		&trip.SourceLat, &trip.SourceLng, &trip.DestLat, &trip.DestLng,
		&trip.Passengers, &trip.Budget, &trip.ComfortLevel, &trip.RecommendedMode,
		&trip.DistanceEstimateKm, &trip.ConfidenceScore,
		&trip.SourceWeather, &trip.DestinationWeather, &conversationID, &trip.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("trip %d: %w", id, types.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip %d: %w", id, err)
	}
	if conversationID != nil {
		trip.ConversationID = *conversationID
	}

	if err := r.loadPlaces(ctx, []*types.Trip{&trip}); err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *PostgresTripRepo) GetAll(ctx context.Context) ([]types.Trip, error) {
	query := tripSelect + ` ORDER BY t.created_at DESC, t.id DESC`
	return r.queryTrips(ctx, "GetAll", query)
}

func (r *PostgresTripRepo) DeleteByID(ctx context.Context, id int64) error {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, "DeleteByID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
		attribute.Int64("trip.id", id),
	))
	defer span.End()

	tag, err := r.pgpool.Exec(ctx, `DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("trip %d: %w", id, types.ErrNotFound)
	}
	return nil
}

func (r *PostgresTripRepo) queryTrips(ctx context.Context, method, query string, args ...any) (trips []types.Trip, err error) {
	ctx, span := otel.Tracer("TripRepo").Start(ctx, method, trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.sql.table", "trips"),
	))
	defer span.End()

	start := time.Now()
	defer func() { metrics.ObserveDBQuery(ctx, "trips", start, err) }()

	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query failed: %w", method, err)
	}
	defer rows.Close()
	for rows.Next() {
		var trip types.Trip
		var conversationID *string
		if err := rows.Scan(
			&trip.ID, &trip.UserID, &trip.Username, &trip.SourceCity, &trip.DestinationCity,
			&trip.SourceLat, &trip.SourceLng, &trip.DestLat, &trip.DestLng,
			&trip.Passengers, &trip.Budget, &trip.ComfortLevel, &trip.RecommendedMode,
			&trip.DistanceEstimateKm, &trip.ConfidenceScore,
			&trip.SourceWeather, &trip.DestinationWeather, &conversationID, &trip.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: scan failed: %w", method, err)
		}
		if conversationID != nil {
			trip.ConversationID = *conversationID
		}
		trips = append(trips, trip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration failed: %w", method, err)
	}

	refs := make([]*types.Trip, len(trips))
	for i := range trips {
		refs[i] = &trips[i]
	}
	if err := r.loadPlaces(ctx, refs); err != nil {
		return nil, err
	}
	return trips, nil
}

// loadPlaces attaches the recommended places, ordered by their stored
// position, to every trip in one round trip.
func (r *PostgresTripRepo) loadPlaces(ctx context.Context, trips []*types.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	ids := make([]int64, len(trips))
	byID := make(map[int64]*types.Trip, len(trips))
	for i, t := range trips {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	query := `
		SELECT trp.trip_id, fp.id, fp.name, fp.description, fp.city, fp.country,
		       fp.latitude, fp.longitude, fp.coordinates_known, fp.category,
		       fp.image_url, fp.entry_fee, fp.recommended_duration,
		       fp.rating, fp.best_time_to_visit
		FROM trip_recommended_places trp
		JOIN famous_places fp ON fp.id = trp.place_id
		WHERE trp.trip_id = ANY($1)
		ORDER BY trp.trip_id, trp.position`

	rows, err := r.pgpool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch trip places: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tripID int64
		var p types.Place
		if err := rows.Scan(&tripID, &p.ID, &p.Name, &p.Description, &p.City, &p.Country,
			&p.Latitude, &p.Longitude, &p.CoordinatesKnown, &p.Category,
			&p.ImageURL, &p.EntryFee, &p.RecommendedDurationHours,
			&p.Rating, &p.BestTimeToVisit); err != nil {
			return fmt.Errorf("failed to scan trip place: %w", err)
		}
		if t, ok := byID[tripID]; ok {
			t.RecommendedPlaces = append(t.RecommendedPlaces, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("trip place iteration failed: %w", err)
	}
	return nil
}
