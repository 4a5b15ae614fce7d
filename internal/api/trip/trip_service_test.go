package trip

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/place"
	"github.com/sukhpreet-s/travel-planner-api/internal/api/recommendation"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

func TestMain(m *testing.M) {
	metrics.InitAppMetrics()
	m.Run()
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error) {
	args := m.Called(ctx, trip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockRepository) GetTripsByUsername(ctx context.Context, username string) ([]types.Trip, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockRepository) GetTripsByUserID(ctx context.Context, userID int64) ([]types.Trip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockRepository) GetTripByID(ctx context.Context, id int64) (*types.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Trip), args.Error(1)
}

func (m *MockRepository) GetAll(ctx context.Context) ([]types.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Trip), args.Error(1)
}

func (m *MockRepository) DeleteByID(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockUserResolver struct {
	mock.Mock
}

func (m *MockUserResolver) GetUserByUsername(ctx context.Context, username string) (*types.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.User), args.Error(1)
}

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) GetCoordinates(ctx context.Context, city string) types.Coordinates {
	args := m.Called(ctx, city)
	return args.Get(0).(types.Coordinates)
}

type MockWeather struct {
	mock.Mock
}

func (m *MockWeather) GetWeatherAnalysis(ctx context.Context, coords types.Coordinates) types.WeatherAnalysis {
	args := m.Called(ctx, coords)
	return args.Get(0).(types.WeatherAnalysis)
}

type MockModeRecommender struct {
	mock.Mock
}

func (m *MockModeRecommender) RecommendMode(ctx context.Context, input recommendation.ModeInput) types.ModeRecommendation {
	args := m.Called(ctx, input)
	return args.Get(0).(types.ModeRecommendation)
}

type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) RecommendPlaces(ctx context.Context, input place.RecommendationInput) types.PlaceRecommendation {
	args := m.Called(ctx, input)
	return args.Get(0).(types.PlaceRecommendation)
}

func (m *MockPlaceService) GetPlacesByCity(ctx context.Context, city string) ([]types.Place, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceService) GetPlacesByCityAndCategory(ctx context.Context, city, category string) ([]types.Place, error) {
	args := m.Called(ctx, city, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceService) GetTopRatedPlacesInCity(ctx context.Context, city string) ([]types.Place, error) {
	args := m.Called(ctx, city)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceService) GetAllPlaces(ctx context.Context) ([]types.Place, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Place), args.Error(1)
}

func (m *MockPlaceService) GetPlaceByID(ctx context.Context, id int64) (*types.Place, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Place), args.Error(1)
}

type MockChatService struct {
	mock.Mock
}

func (m *MockChatService) ProcessMessage(ctx context.Context, username, message, conversationID string) (*types.ChatHistory, error) {
	args := m.Called(ctx, username, message, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatHistory), args.Error(1)
}

func (m *MockChatService) RecordTurn(ctx context.Context, username, conversationID, userMessage, aiResponse string) (*types.ChatHistory, error) {
	args := m.Called(ctx, username, conversationID, userMessage, aiResponse)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ChatHistory), args.Error(1)
}

func (m *MockChatService) History(ctx context.Context, username, conversationID string) ([]types.ChatHistory, error) {
	args := m.Called(ctx, username, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.ChatHistory), args.Error(1)
}

type tripMocks struct {
	repo     *MockRepository
	users    *MockUserResolver
	geocoder *MockGeocoder
	weather  *MockWeather
	modes    *MockModeRecommender
	places   *MockPlaceService
	chats    *MockChatService
}

func newTripService(t *testing.T) (*ServiceImpl, *tripMocks) {
	t.Helper()
	m := &tripMocks{
		repo:     new(MockRepository),
		users:    new(MockUserResolver),
		geocoder: new(MockGeocoder),
		weather:  new(MockWeather),
		modes:    new(MockModeRecommender),
		places:   new(MockPlaceService),
		chats:    new(MockChatService),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(m.repo, m.users, m.geocoder, m.weather, m.modes, m.places, m.chats, logger)
	return svc, m
}

func validRequest() types.TripRequest {
	return types.TripRequest{
		SourceCity:      "Mumbai",
		DestinationCity: "Goa",
		Passengers:      2,
		Budget:          5000,
		ComfortLevel:    types.ComfortComfort,
		Interests:       []string{"beaches", "food"},
		TripDuration:    4,
	}
}

func TestCreateTrip_Success(t *testing.T) {
	svc, m := newTripService(t)
	req := validRequest()

	m.users.On("GetUserByUsername", mock.Anything, "alice").
		Return(&types.User{ID: 7, Username: "alice"}, nil).Once()

	srcCoords := types.Coordinates{Lat: 19.07, Lng: 72.87}
	dstCoords := types.Coordinates{Lat: 15.49, Lng: 73.82}
	m.geocoder.On("GetCoordinates", mock.Anything, "Mumbai").Return(srcCoords).Once()
	m.geocoder.On("GetCoordinates", mock.Anything, "Goa").Return(dstCoords).Once()

	m.weather.On("GetWeatherAnalysis", mock.Anything, srcCoords).
		Return(types.WeatherAnalysis{TemperatureC: 30, WindKph: 12, Condition: "Partly cloudy"}).Once()
	m.weather.On("GetWeatherAnalysis", mock.Anything, dstCoords).
		Return(types.WeatherAnalysis{TemperatureC: 28, WindKph: 8, Condition: "Clear sky"}).Once()

	modeRec := types.ModeRecommendation{Mode: "train", DistanceKm: 590, Confidence: 0.85, Reasoning: "Overnight train is comfortable"}
	m.modes.On("RecommendMode", mock.Anything, mock.MatchedBy(func(input recommendation.ModeInput) bool {
		return input.Source == "Mumbai" && input.Destination == "Goa" &&
			input.SourceWeather == "Partly cloudy" && input.DestinationWeather == "Clear sky"
	})).Return(modeRec).Once()

	placeRec := types.PlaceRecommendation{
		RecommendedPlaces: []types.Place{{ID: 1, Name: "Baga Beach", City: "Goa"}},
		Reasoning:         "Beach-first itinerary",
	}
	m.places.On("RecommendPlaces", mock.Anything, mock.MatchedBy(func(input place.RecommendationInput) bool {
		return input.City == "Goa" && input.DurationDays == 4 && input.Companions == "2 passengers"
	})).Return(placeRec).Once()

	var conversationID string
	m.chats.On("RecordTurn", mock.Anything, "alice", mock.MatchedBy(func(id string) bool {
		conversationID = id
		return strings.HasPrefix(id, "trip_")
	}), mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "Plan a trip from Mumbai to Goa:") &&
			strings.Contains(msg, "- Recommended Mode: train") &&
			strings.Contains(msg, "- Distance: 590.0 km")
	}), "Overnight train is comfortable").Return(&types.ChatHistory{}, nil).Once()
	m.chats.On("RecordTurn", mock.Anything, "alice", mock.MatchedBy(func(id string) bool {
		return id == conversationID
	}), mock.MatchedBy(func(msg string) bool {
		return strings.HasPrefix(msg, "Recommend specific places to visit in Goa for:") &&
			strings.Contains(msg, "- Interests: beaches, food")
	}), "Beach-first itinerary").Return(&types.ChatHistory{}, nil).Once()

	m.repo.On("CreateTrip", mock.Anything, mock.MatchedBy(func(trip *types.Trip) bool {
		return trip.UserID == 7 &&
			trip.RecommendedMode == "train" &&
			trip.SourceWeather == "Temp: 30.0°C, Partly cloudy, Wind: 12.0 km/h" &&
			trip.DestinationWeather == "Temp: 28.0°C, Clear sky, Wind: 8.0 km/h" &&
			trip.SourceLat == srcCoords.Lat && trip.DestLng == dstCoords.Lng &&
			len(trip.RecommendedPlaces) == 1 &&
			trip.ConversationID == conversationID
	})).Return(&types.Trip{ID: 42, ConversationID: "trip_1"}, nil).Once()

	trip, err := svc.CreateTrip(context.Background(), req, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(42), trip.ID)

	m.repo.AssertExpectations(t)
	m.chats.AssertExpectations(t)
	m.modes.AssertExpectations(t)
	m.places.AssertExpectations(t)
}

func TestCreateTrip_ValidationFailsBeforeAnyCall(t *testing.T) {
	svc, m := newTripService(t)
	req := validRequest()
	req.SourceCity = ""

	_, err := svc.CreateTrip(context.Background(), req, "alice")
	assert.ErrorIs(t, err, types.ErrValidation)
	m.users.AssertNotCalled(t, "GetUserByUsername", mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything)
}

func TestCreateTrip_UnknownUser(t *testing.T) {
	svc, m := newTripService(t)
	m.users.On("GetUserByUsername", mock.Anything, "ghost").Return(nil, types.ErrNotFound).Once()

	_, err := svc.CreateTrip(context.Background(), validRequest(), "ghost")
	assert.ErrorIs(t, err, types.ErrUnauthenticated)
	assert.NotErrorIs(t, err, types.ErrNotFound)
	m.repo.AssertNotCalled(t, "CreateTrip", mock.Anything, mock.Anything)
}

func TestCreateTrip_PersistenceErrorPropagates(t *testing.T) {
	svc, m := newTripService(t)

	m.users.On("GetUserByUsername", mock.Anything, "alice").
		Return(&types.User{ID: 7, Username: "alice"}, nil).Once()
	m.geocoder.On("GetCoordinates", mock.Anything, mock.Anything).Return(types.Coordinates{}).Twice()
	m.weather.On("GetWeatherAnalysis", mock.Anything, mock.Anything).Return(types.WeatherAnalysis{Condition: "Clear sky"}).Twice()
	m.modes.On("RecommendMode", mock.Anything, mock.Anything).Return(types.ModeRecommendation{Mode: "car"}).Once()
	m.places.On("RecommendPlaces", mock.Anything, mock.Anything).Return(types.PlaceRecommendation{}).Once()
	m.chats.On("RecordTurn", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&types.ChatHistory{}, nil).Twice()
	m.repo.On("CreateTrip", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := svc.CreateTrip(context.Background(), validRequest(), "alice")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGetUserTrip(t *testing.T) {
	t.Run("owner gets the trip", func(t *testing.T) {
		svc, m := newTripService(t)
		m.repo.On("GetTripByID", mock.Anything, int64(42)).
			Return(&types.Trip{ID: 42, Username: "alice"}, nil).Once()

		trip, err := svc.GetUserTrip(context.Background(), 42, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(42), trip.ID)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		svc, m := newTripService(t)
		m.repo.On("GetTripByID", mock.Anything, int64(42)).
			Return(&types.Trip{ID: 42, Username: "alice"}, nil).Once()

		_, err := svc.GetUserTrip(context.Background(), 42, "mallory")
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("unknown trip is not found", func(t *testing.T) {
		svc, m := newTripService(t)
		m.repo.On("GetTripByID", mock.Anything, int64(9)).
			Return(nil, types.ErrNotFound).Once()

		_, err := svc.GetUserTrip(context.Background(), 9, "alice")
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}
