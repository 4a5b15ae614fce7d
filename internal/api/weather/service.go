package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const (
	defaultBaseURL = "https://api.open-meteo.com"
	callTimeout    = 5 * time.Second
)

var weatherTarget = metric.WithAttributes(attribute.String("target", "weather"))

// Service analyses current weather at a coordinate pair. It never
// surfaces failure: any upstream problem yields a fixed default
// analysis flagged via WeatherAnalysis.Defaulted.
type Service interface {
	GetWeatherAnalysis(ctx context.Context, coords types.Coordinates) types.WeatherAnalysis
}

type ServiceImpl struct {
	client  *http.Client
	baseURL string
	logger  *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		client:  &http.Client{Timeout: callTimeout},
		baseURL: defaultBaseURL,
		logger:  logger,
	}
}

// NewServiceWithBaseURL is used by tests to point at a stub server.
func NewServiceWithBaseURL(baseURL string, logger *slog.Logger) *ServiceImpl {
	s := NewService(logger)
	s.baseURL = baseURL
	return s
}

type forecastResponse struct {
	CurrentWeather currentWeather `json:"current_weather"`
}

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
}

func (s *ServiceImpl) GetWeatherAnalysis(ctx context.Context, coords types.Coordinates) types.WeatherAnalysis {
	start := time.Now()
	current, err := s.fetchCurrentWeather(ctx, coords)
	metrics.Get().ExternalCallDuration.Record(ctx, time.Since(start).Seconds(), weatherTarget)
	if err != nil {
		metrics.Get().ExternalCallErrorsTotal.Add(ctx, 1, weatherTarget)
		s.logger.WarnContext(ctx, "Weather lookup failed, using default analysis",
			slog.Float64("lat", coords.Lat),
			slog.Float64("lng", coords.Lng),
			slog.String("error", err.Error()))
		return DefaultAnalysis()
	}
	return Analyze(current.Temperature, current.WindSpeed, current.WeatherCode)
}

func (s *ServiceImpl) fetchCurrentWeather(ctx context.Context, coords types.Coordinates) (*currentWeather, error) {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", coords.Lat))
	q.Set("longitude", fmt.Sprintf("%f", coords.Lng))
	q.Set("current_weather", "true")
	q.Set("temperature_unit", "celsius")
	q.Set("timezone", "auto")

	reqURL := fmt.Sprintf("%s/v1/forecast?%s", s.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building weather request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling weather service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var forecast forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("decoding weather response: %w", err)
	}
	return &forecast.CurrentWeather, nil
}

// Analyze derives condition, advisory, safety score and suitability
// from raw current-weather readings.
func Analyze(temperatureC, windKph float64, weatherCode int) types.WeatherAnalysis {
	score := safetyScore(temperatureC, windKph, weatherCode)
	return types.WeatherAnalysis{
		TemperatureC:      temperatureC,
		WindKph:           windKph,
		WeatherCode:       weatherCode,
		Condition:         condition(weatherCode),
		TravelAdvisory:    travelAdvisory(temperatureC, windKph, weatherCode),
		SafetyScore:       score,
		SuitableForTravel: score > 70,
	}
}

// DefaultAnalysis is returned whenever the upstream cannot be reached.
func DefaultAnalysis() types.WeatherAnalysis {
	return types.WeatherAnalysis{
		TemperatureC:      20.0,
		WindKph:           10.0,
		WeatherCode:       0,
		Condition:         "Clear sky",
		TravelAdvisory:    "Weather service unavailable - using default data",
		SafetyScore:       85,
		SuitableForTravel: true,
		Defaulted:         true,
	}
}

func condition(weatherCode int) string {
	switch {
	case weatherCode == 0:
		return "Clear sky"
	case weatherCode <= 3:
		return "Partly cloudy"
	case weatherCode <= 48:
		return "Foggy"
	case weatherCode <= 67:
		return "Rainy"
	case weatherCode <= 77:
		return "Snowy"
	case weatherCode <= 99:
		return "Thunderstorm"
	default:
		return "Unknown"
	}
}

func travelAdvisory(temperatureC, windKph float64, weatherCode int) string {
	switch {
	case windKph > 50:
		return "High winds - avoid travel"
	case temperatureC < -10:
		return "Extreme cold - travel not recommended"
	case weatherCode > 80:
		return "Severe weather - postpone travel"
	default:
		return "Weather conditions are good for travel"
	}
}

func safetyScore(temperatureC, windKph float64, weatherCode int) float64 {
	score := 100.0
	if windKph > 30 {
		score -= 30
	}
	if temperatureC < -5 || temperatureC > 40 {
		score -= 25
	}
	if weatherCode > 60 {
		score -= 20
	}
	if score < 0 {
		score = 0
	}
	return score
}
