package weather

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

var metricReader *sdkmetric.ManualReader

func TestMain(m *testing.M) {
	metricReader = sdkmetric.NewManualReader()
	otel.SetMeterProvider(sdkmetric.NewMeterProvider(sdkmetric.WithReader(metricReader)))
	os.Exit(m.Run())
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetWeatherAnalysis_LiveResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("current_weather"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current_weather": {"temperature": 28.5, "windspeed": 12.0, "weathercode": 2}}`))
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL(server.URL, testLogger())
	analysis := svc.GetWeatherAnalysis(context.Background(), types.Coordinates{Lat: 15.5, Lng: 73.8})

	assert.False(t, analysis.Defaulted)
	assert.Equal(t, 28.5, analysis.TemperatureC)
	assert.Equal(t, "Partly cloudy", analysis.Condition)
	assert.Equal(t, 100.0, analysis.SafetyScore)
	assert.True(t, analysis.SuitableForTravel)
}

func TestGetWeatherAnalysis_UpstreamFailureReturnsDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL(server.URL, testLogger())
	analysis := svc.GetWeatherAnalysis(context.Background(), types.Coordinates{})

	assert.True(t, analysis.Defaulted)
	assert.Equal(t, 20.0, analysis.TemperatureC)
	assert.Equal(t, 10.0, analysis.WindKph)
	assert.Equal(t, "Clear sky", analysis.Condition)
	assert.Equal(t, "Weather service unavailable - using default data", analysis.TravelAdvisory)
	assert.Equal(t, 85.0, analysis.SafetyScore)
	assert.True(t, analysis.SuitableForTravel)
}

func TestGetWeatherAnalysis_RecordsOutboundCallMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	svc := NewServiceWithBaseURL(server.URL, testLogger())
	_ = svc.GetWeatherAnalysis(context.Background(), types.Coordinates{})

	var rm metricdata.ResourceMetrics
	require.NoError(t, metricReader.Collect(context.Background(), &rm))

	recorded := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			recorded[m.Name] = true
		}
	}
	assert.True(t, recorded["external_call_duration_seconds"], "call duration was not recorded")
	assert.True(t, recorded["external_call_errors_total"], "failed call was not counted")
}

func TestCondition(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{0, "Clear sky"},
		{1, "Partly cloudy"},
		{3, "Partly cloudy"},
		{4, "Foggy"},
		{48, "Foggy"},
		{49, "Rainy"},
		{67, "Rainy"},
		{68, "Snowy"},
		{77, "Snowy"},
		{78, "Thunderstorm"},
		{99, "Thunderstorm"},
		{100, "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, condition(tt.code), "code %d", tt.code)
	}
}

func TestTravelAdvisory(t *testing.T) {
	assert.Equal(t, "High winds - avoid travel", travelAdvisory(20, 51, 0))
	assert.Equal(t, "Extreme cold - travel not recommended", travelAdvisory(-11, 10, 0))
	assert.Equal(t, "Severe weather - postpone travel", travelAdvisory(20, 10, 81))
	assert.Equal(t, "Weather conditions are good for travel", travelAdvisory(20, 10, 0))
	// wind outranks cold when both apply
	assert.Equal(t, "High winds - avoid travel", travelAdvisory(-20, 60, 90))
}

func TestSafetyScoreAndSuitability(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		wind     float64
		code     int
		score    float64
		suitable bool
	}{
		{"benign", 25, 10, 0, 100, true},
		{"windy", 25, 31, 0, 70, false},
		{"cold", -6, 10, 0, 75, true},
		{"hot", 41, 10, 0, 75, true},
		{"stormy", 25, 10, 61, 80, true},
		{"everything wrong", 45, 40, 90, 25, false},
		{"boundary wind 30 keeps full score", 25, 30, 0, 100, true},
		{"boundary temp -5 keeps full score", -5, 10, 0, 100, true},
		{"boundary temp 40 keeps full score", 40, 10, 0, 100, true},
		{"boundary code 60 keeps full score", 25, 10, 60, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := Analyze(tt.temp, tt.wind, tt.code)
			assert.Equal(t, tt.score, analysis.SafetyScore)
			assert.Equal(t, tt.suitable, analysis.SuitableForTravel)
		})
	}
}

func TestSummaryFormat(t *testing.T) {
	analysis := Analyze(28.5, 12.0, 2)
	assert.Equal(t, "Temp: 28.5°C, Partly cloudy, Wind: 12.0 km/h", analysis.Summary())
}

func TestSummaryFlagsDefaultedData(t *testing.T) {
	analysis := DefaultAnalysis()
	summary := analysis.Summary()

	assert.Equal(t, "Temp: 20.0°C, Clear sky, Wind: 10.0 km/h, Weather service unavailable - using default data", summary)
	assert.Contains(t, summary, "service unavailable")
}
