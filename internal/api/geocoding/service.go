package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf16"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org"
	callTimeout    = 5 * time.Second
)

var geocoderTarget = metric.WithAttributes(attribute.String("target", "geocoder"))

// Service resolves a free-form city name to coordinates. Lookups never
// fail: when the upstream is unreachable or returns nothing, a
// deterministic hash-derived fallback coordinate is returned so the
// same city always maps to the same point.
type Service interface {
	GetCoordinates(ctx context.Context, city string) types.Coordinates
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

type nominatimResult struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	Address     map[string]string `json:"address"`
}

func (s *ServiceImpl) GetCoordinates(ctx context.Context, city string) types.Coordinates {
	start := time.Now()
	results, err := s.search(ctx, city)
	metrics.Get().ExternalCallDuration.Record(ctx, time.Since(start).Seconds(), geocoderTarget)
	if err != nil {
		metrics.Get().ExternalCallErrorsTotal.Add(ctx, 1, geocoderTarget)
		s.logger.WarnContext(ctx, "Geocoding lookup failed, using fallback coordinates",
			slog.String("city", city),
			slog.String("error", err.Error()))
		return FallbackCoordinates(city)
	}
	if len(results) == 0 {
		return FallbackCoordinates(city)
	}

	best := findBestCityMatch(city, results)
	if best == nil {
		best = &results[0]
	}

	lat, latErr := strconv.ParseFloat(best.Lat, 64)
	lon, lonErr := strconv.ParseFloat(best.Lon, 64)
	if latErr != nil || lonErr != nil {
		return FallbackCoordinates(city)
	}
	return types.Coordinates{Lat: lat, Lng: lon}
}

func (s *ServiceImpl) search(ctx context.Context, city string) ([]nominatimResult, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("format", "json")
	q.Set("limit", "5")
	q.Set("addressdetails", "1")

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}
	// Nominatim's usage policy requires an identifying user agent.
	req.Header.Set("User-Agent", "travel-planner-api/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling geocoding service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoding service returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}
	return results, nil
}

// findBestCityMatch scans candidates for one whose address names the
// requested city, preferring exact over substring over word-level
// similarity, falling back to the display name.
func findBestCityMatch(requestedCity string, results []nominatimResult) *nominatimResult {
	requested := strings.ToLower(strings.TrimSpace(requestedCity))

	for i := range results {
		r := &results[i]
		actual := mostSpecificPlace(r.Address)
		if actual != "" {
			actualLower := strings.ToLower(actual)
			if actualLower == requested {
				return r
			}
			if strings.Contains(actualLower, requested) || strings.Contains(requested, actualLower) {
				return r
			}
			if hasSimilarWords(actualLower, requested) {
				return r
			}
		}
		if r.DisplayName != "" && strings.Contains(strings.ToLower(r.DisplayName), requested) {
			return r
		}
	}
	return nil
}

func mostSpecificPlace(address map[string]string) string {
	for _, key := range []string{"city", "town", "village", "municipality", "county", "state"} {
		if v := address[key]; v != "" {
			return v
		}
	}
	return ""
}

func hasSimilarWords(a, b string) bool {
	for _, w1 := range strings.Fields(a) {
		for _, w2 := range strings.Fields(b) {
			if len(w1) > 3 && len(w2) > 3 &&
				(strings.Contains(w1, w2) || strings.Contains(w2, w1)) {
				return true
			}
		}
	}
	return false
}

// FallbackCoordinates derives a stable pseudo-coordinate from the city
// name so offline lookups stay consistent per city. The reductions use
// a floor modulus so negative hashes still land in latitude [-65, 65]
// and longitude [-180, 180].
func FallbackCoordinates(city string) types.Coordinates {
	hash := stringHash(strings.ToLower(city))

	lat := float64(floorMod(hash, 130)) - 65.0
	lon := float64(floorMod(hash, 360)) - 180.0

	lat += float64(floorMod(hash, 100)) / 1000.0
	lon += float64(floorMod(hash/100, 100)) / 1000.0

	return types.Coordinates{Lat: lat, Lng: lon}
}

func floorMod(x, y int32) int32 {
	m := x % y
	if m < 0 {
		m += y
	}
	return m
}

// stringHash is the JVM String.hashCode polynomial over UTF-16 code
// units, kept so fallback coordinates stay stable across versions.
func stringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}
