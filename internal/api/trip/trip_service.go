package trip

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/chat"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/geocoding"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/place"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/recommendation"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/weather"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

// UserResolver narrows the auth repository to the lookup the trip
// synthesiser needs.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*types.User, error)
}

// Service synthesises trips by fanning out to the geocoder, the weather
// analyser and the recommenders, and reconciling their results.
type Service interface {
	// CreateTrip fails only on an unknown username, a validation error or
	// a persistence error. The external services all degrade to defined
	// defaults and never abort the synthesis.
	CreateTrip(ctx context.Context, req types.TripRequest, username string) (*types.Trip, error)
	GetUserTrips(ctx context.Context, username string) ([]types.Trip, error)
	// GetUserTrip fails with types.ErrForbidden when the trip exists but
	// belongs to another user.
	GetUserTrip(ctx context.Context, tripID int64, username string) (*types.Trip, error)
}

type ServiceImpl struct {
	repo     Repository
	users    UserResolver
	geocoder geocoding.Service
	weather  weather.Service
	modes    recommendation.Service
	places   place.Service
	chats    chat.Service
	logger   *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(repo Repository, users UserResolver, geocoder geocoding.Service,
	weatherSvc weather.Service, modes recommendation.Service, places place.Service,
	chats chat.Service, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:     repo,
		users:    users,
		geocoder: geocoder,
		weather:  weatherSvc,
		modes:    modes,
		places:   places,
		chats:    chats,
		logger:   logger,
	}
}

func (s *ServiceImpl) CreateTrip(ctx context.Context, req types.TripRequest, username string) (*types.Trip, error) {
	start := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		// A token naming a user we no longer know is an auth problem,
		// not a missing resource.
		if errors.Is(err, types.ErrNotFound) {
			return nil, fmt.Errorf("%w: resolving trip owner: %v", types.ErrUnauthenticated, err)
		}
		return nil, fmt.Errorf("resolving trip owner: %w", err)
	}

	s.logger.InfoContext(ctx, "Creating trip",
		slog.String("username", username),
		slog.String("source", req.SourceCity),
		slog.String("destination", req.DestinationCity))

	// Geocoding never fails; a dead upstream yields deterministic
	// fallback coordinates.
	var srcCoords, dstCoords types.Coordinates
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		srcCoords = s.geocoder.GetCoordinates(gctx, req.SourceCity)
		return nil
	})
	g.Go(func() error {
		dstCoords = s.geocoder.GetCoordinates(gctx, req.DestinationCity)
		return nil
	})
	_ = g.Wait()

	// Weather for both ends and the place recommendation are independent;
	// the mode recommendation waits for weather on its own branch.
	var (
		srcWeather, dstWeather types.WeatherAnalysis
		modeRec                types.ModeRecommendation
		placeRec               types.PlaceRecommendation
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		wg, wctx := errgroup.WithContext(gctx)
		wg.Go(func() error {
			srcWeather = s.weather.GetWeatherAnalysis(wctx, srcCoords)
			return nil
		})
		wg.Go(func() error {
			dstWeather = s.weather.GetWeatherAnalysis(wctx, dstCoords)
			return nil
		})
		_ = wg.Wait()

		modeRec = s.modes.RecommendMode(gctx, recommendation.ModeInput{
			Source:             req.SourceCity,
			Destination:        req.DestinationCity,
			Passengers:         req.Passengers,
			Budget:             req.Budget,
			ComfortLevel:       req.ComfortLevel,
			SourceWeather:      srcWeather.Condition,
			DestinationWeather: dstWeather.Condition,
		})
		return nil
	})
	g.Go(func() error {
		placeRec = s.places.RecommendPlaces(gctx, place.RecommendationInput{
			City:         req.DestinationCity,
			Interests:    req.Interests,
			DurationDays: req.DurationDays(),
			Budget:       req.Budget,
			Companions:   fmt.Sprintf("%d passengers", req.Passengers),
		})
		return nil
	})
	_ = g.Wait()

	conversationID := fmt.Sprintf("trip_%d", time.Now().UnixMilli())

	// The plan and the place request are filed as ordinary chat turns so
	// the client can continue the conversation. The stored responses are
	// the recommendation strings already produced, not fresh model calls.
	planMessage := buildTripPlanningMessage(req, srcWeather, dstWeather, modeRec)
	if _, err := s.chats.RecordTurn(ctx, username, conversationID, planMessage, modeRec.Reasoning); err != nil {
		return nil, fmt.Errorf("recording trip plan turn: %w", err)
	}
	placeMessage := buildPlaceRecommendationMessage(req)
	if _, err := s.chats.RecordTurn(ctx, username, conversationID, placeMessage, placeRec.Reasoning); err != nil {
		return nil, fmt.Errorf("recording place recommendation turn: %w", err)
	}

	trip := &types.Trip{
		UserID:             user.ID,
		Username:           user.Username,
		SourceCity:         req.SourceCity,
		DestinationCity:    req.DestinationCity,
		SourceLat:          srcCoords.Lat,
		SourceLng:          srcCoords.Lng,
		DestLat:            dstCoords.Lat,
		DestLng:            dstCoords.Lng,
		Passengers:         req.Passengers,
		Budget:             req.Budget,
		ComfortLevel:       req.ComfortLevel,
		RecommendedMode:    modeRec.Mode,
		DistanceEstimateKm: modeRec.DistanceKm,
		ConfidenceScore:    modeRec.Confidence,
		SourceWeather:      srcWeather.Summary(),
		DestinationWeather: dstWeather.Summary(),
		ConversationID:     conversationID,
		RecommendedPlaces:  placeRec.RecommendedPlaces,
	}

	saved, err := s.repo.CreateTrip(ctx, trip)
	if err != nil {
		return nil, err
	}

	m := metrics.Get()
	m.TripsCreatedTotal.Add(ctx, 1)
	m.TripDurationSeconds.Record(ctx, time.Since(start).Seconds())

	s.logger.InfoContext(ctx, "Trip created",
		slog.Int64("trip_id", saved.ID),
		slog.String("conversation_id", conversationID))
	return saved, nil
}

func (s *ServiceImpl) GetUserTrips(ctx context.Context, username string) ([]types.Trip, error) {
	return s.repo.GetTripsByUsername(ctx, username)
}

func (s *ServiceImpl) GetUserTrip(ctx context.Context, tripID int64, username string) (*types.Trip, error) {
	trip, err := s.repo.GetTripByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if trip.Username != username {
		return nil, fmt.Errorf("trip %d: %w", tripID, types.ErrForbidden)
	}
	return trip, nil
}

func buildTripPlanningMessage(req types.TripRequest, srcWeather, dstWeather types.WeatherAnalysis, modeRec types.ModeRecommendation) string {
	return fmt.Sprintf(`Plan a trip from %s to %s:
- Passengers: %d
- Budget: $%.2f
- Comfort Level: %s
- Source Weather: %s (%.1f°C)
- Destination Weather: %s (%.1f°C)
- Recommended Mode: %s
- Distance: %.1f km
`,
		req.SourceCity, req.DestinationCity,
		req.Passengers, req.Budget, req.ComfortLevel,
		srcWeather.Condition, srcWeather.TemperatureC,
		dstWeather.Condition, dstWeather.TemperatureC,
		modeRec.Mode, modeRec.DistanceKm)
}

func buildPlaceRecommendationMessage(req types.TripRequest) string {
	interests := "general"
	if len(req.Interests) > 0 {
		interests = strings.Join(req.Interests, ", ")
	}
	return fmt.Sprintf(`Recommend specific places to visit in %s for:
- Interests: %s
- Duration: %d days
- Budget: $%.2f
- Travelers: %d passengers
Provide specific place names, daily itinerary, and cost estimates.
`,
		req.DestinationCity, interests, req.DurationDays(), req.Budget, req.Passengers)
}
