package place

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sukhpreet-s/travel-planner-api/internal/api/airesponse"
	generativeAI "github.com/sukhpreet-s/travel-planner-api/internal/api/generative_ai"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const (
	modelCallTimeout = 30 * time.Second
	// placesPerDay bounds how many recommended places a trip of a given
	// duration can absorb.
	placesPerDay = 3
)

const (
	placeSystemPrompt = `You are a practical travel expert for Indian destinations.
CRITICAL: Return ONLY valid JSON, no other text or markdown.
IMPORTANT FORMAT RULES:
- JSON must start with { and end with }
- No ` + "```json or ```" + ` markers
- No additional explanations
- Use double quotes for all strings
- estimatedCost must be numbers (not strings)
- recommendedDuration must be integers

Content guidelines:
- Suggest realistic, popular Indian places
- Use practical costs in Indian Rupees
- Keep descriptions brief and useful (max 20 words)
- recommendedDuration: realistic hours needed in count
- estimatedCost: realistic Indian entry fees in INR
- Be specific with place names`

	placeUserPromptTemplate = `[TRAVEL GUIDE FOR %s]
INTERESTS: %s | DURATION: %d days | BUDGET: ₹%.2f | COMPANIONS: %s

CONTEXT: %s

RETURN ONLY VALID JSON (no other text):
{
  "recommendedPlaces": [
    {
      "name": "Specific Place Name",
      "description": "Brief practical description",
      "category": "Historical/Nature/Beach/Shopping/Food/Nightlife/Relaxation/Adventure/Religious",
      "estimatedCost": 100.00,
      "recommendedDuration": 2
    }
  ],
  "dailyItinerary": [
    {
      "day": 1,
      "places": ["Place A", "Place B"],
      "description": "Practical day plan"
    }
  ],
  "totalCostEstimate": 500.00,
  "reasoning": "Concise matching explanation"
}`
)

// Service owns the shared place catalogue and the model-driven
// itinerary recommendation built on top of it.
type Service interface {
	// RecommendPlaces never fails: model errors degrade to text analysis
	// and finally to the city's top-rated stored places.
	RecommendPlaces(ctx context.Context, input RecommendationInput) types.PlaceRecommendation

	GetPlacesByCity(ctx context.Context, city string) ([]types.Place, error)
	GetPlacesByCityAndCategory(ctx context.Context, city, category string) ([]types.Place, error)
	GetTopRatedPlacesInCity(ctx context.Context, city string) ([]types.Place, error)
	GetAllPlaces(ctx context.Context) ([]types.Place, error)
	GetPlaceByID(ctx context.Context, id int64) (*types.Place, error)
}

type RecommendationInput struct {
	City         string
	Interests    []string
	DurationDays int
	Budget       float64
	Companions   string
}

type ServiceImpl struct {
	repo      Repository
	generator generativeAI.Generator
	logger    *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(repo Repository, generator generativeAI.Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		repo:      repo,
		generator: generator,
		logger:    logger,
	}
}

func (s *ServiceImpl) RecommendPlaces(ctx context.Context, input RecommendationInput) types.PlaceRecommendation {
	existing, err := s.repo.GetPlacesByCity(ctx, input.City)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to load existing places for context",
			slog.String("city", input.City), slog.String("error", err.Error()))
	}

	callCtx, cancel := context.WithTimeout(ctx, modelCallTimeout)
	defer cancel()

	prompt := fmt.Sprintf(placeUserPromptTemplate,
		input.City, interestsOrDefault(input.Interests), input.DurationDays,
		input.Budget, input.Companions, placesContext(existing))

	raw, err := s.generator.GenerateCompletion(callCtx, placeSystemPrompt, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "Place recommendation model call failed",
			slog.String("city", input.City), slog.String("error", err.Error()))
		return s.topRatedFallback(ctx, input.City)
	}

	obj := airesponse.ParseObject(raw)
	if len(obj) == 0 {
		return s.fromText(ctx, raw, input.City)
	}
	return s.fromModelObject(ctx, obj, input)
}

func (s *ServiceImpl) fromModelObject(ctx context.Context, obj map[string]any, input RecommendationInput) types.PlaceRecommendation {
	upserts := suggestedPlaces(obj["recommendedPlaces"])
	if len(upserts) == 0 {
		return s.topRatedFallback(ctx, input.City)
	}

	maxPlaces := input.DurationDays * placesPerDay
	if len(upserts) > maxPlaces {
		upserts = upserts[:maxPlaces]
	}

	saved, err := s.repo.UpsertBatch(ctx, input.City, upserts)
	if err != nil {
		s.logger.ErrorContext(ctx, "Place upsert failed",
			slog.String("city", input.City), slog.String("error", err.Error()))
		return s.topRatedFallback(ctx, input.City)
	}

	rec := types.PlaceRecommendation{
		RecommendedPlaces: saved,
		DailyItinerary:    itinerary(obj["dailyItinerary"], input.DurationDays),
		TotalCostEstimate: airesponse.CoerceFloat(obj["totalCostEstimate"], costEstimate(saved)),
		Reasoning:         airesponse.CoerceString(obj["reasoning"], "AI-curated itinerary for "+input.City),
	}
	return rec
}

// fromText salvages a minimal recommendation from a non-JSON reply by
// scanning for a place-category keyword.
func (s *ServiceImpl) fromText(ctx context.Context, raw, city string) types.PlaceRecommendation {
	keyword, ok := airesponse.PlaceKeywordFromText(raw)
	if !ok {
		return s.topRatedFallback(ctx, city)
	}

	duration := 2
	saved, err := s.repo.UpsertBatch(ctx, city, []PlaceUpsert{{
		Name:                keyword + " in " + city,
		Description:         "Extracted from AI recommendation",
		Category:            "General",
		RecommendedDuration: &duration,
	}})
	if err != nil {
		s.logger.ErrorContext(ctx, "Text-fallback place upsert failed",
			slog.String("city", city), slog.String("error", err.Error()))
		return s.topRatedFallback(ctx, city)
	}

	return types.PlaceRecommendation{
		RecommendedPlaces: saved,
		DailyItinerary:    []types.DayPlan{},
		TotalCostEstimate: costEstimate(saved),
		Reasoning:         "AI-curated based on your preferences (text analysis)",
	}
}

func (s *ServiceImpl) topRatedFallback(ctx context.Context, city string) types.PlaceRecommendation {
	topRated, err := s.repo.GetTopRatedPlacesInCity(ctx, city)
	if err != nil {
		s.logger.ErrorContext(ctx, "Top-rated fallback query failed",
			slog.String("city", city), slog.String("error", err.Error()))
		topRated = nil
	}
	return types.PlaceRecommendation{
		RecommendedPlaces: topRated,
		DailyItinerary:    []types.DayPlan{},
		TotalCostEstimate: costEstimate(topRated),
		Reasoning:         "Top-rated places in " + city,
	}
}

func (s *ServiceImpl) GetPlacesByCity(ctx context.Context, city string) ([]types.Place, error) {
	return s.repo.GetPlacesByCity(ctx, city)
}

func (s *ServiceImpl) GetPlacesByCityAndCategory(ctx context.Context, city, category string) ([]types.Place, error) {
	return s.repo.GetPlacesByCityAndCategory(ctx, city, category)
}

func (s *ServiceImpl) GetTopRatedPlacesInCity(ctx context.Context, city string) ([]types.Place, error) {
	return s.repo.GetTopRatedPlacesInCity(ctx, city)
}

func (s *ServiceImpl) GetAllPlaces(ctx context.Context) ([]types.Place, error) {
	return s.repo.GetAllPlaces(ctx)
}

func (s *ServiceImpl) GetPlaceByID(ctx context.Context, id int64) (*types.Place, error) {
	return s.repo.GetPlaceByID(ctx, id)
}

// suggestedPlaces projects the model's recommendedPlaces array into
// upsert inputs, dropping nameless entries and deduplicating by
// case-insensitive name (first occurrence wins).
func suggestedPlaces(v any) []PlaceUpsert {
	seen := make(map[string]bool)
	var out []PlaceUpsert
	for _, obj := range airesponse.ObjectList(v) {
		name := strings.TrimSpace(airesponse.CoerceString(obj["name"], ""))
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true

		up := PlaceUpsert{
			Name:        name,
			Description: airesponse.CoerceString(obj["description"], ""),
			Category:    airesponse.CoerceString(obj["category"], ""),
		}
		if _, ok := obj["estimatedCost"]; ok {
			fee := airesponse.CoerceFloat(obj["estimatedCost"], 0)
			up.EntryFee = &fee
		}
		if _, ok := obj["recommendedDuration"]; ok {
			dur := airesponse.CoerceInt(obj["recommendedDuration"], 0)
			up.RecommendedDuration = &dur
		}
		out = append(out, up)
	}
	return out
}

// itinerary projects dailyItinerary entries, discarding days beyond
// the trip duration.
func itinerary(v any, durationDays int) []types.DayPlan {
	plans := []types.DayPlan{}
	for _, obj := range airesponse.ObjectList(v) {
		day := airesponse.CoerceInt(obj["day"], 1)
		if day > durationDays {
			continue
		}
		plans = append(plans, types.DayPlan{
			Day:         day,
			Places:      airesponse.CoerceStringList(obj["places"]),
			Description: airesponse.CoerceString(obj["description"], "Daily itinerary"),
		})
	}
	return plans
}

func costEstimate(places []types.Place) float64 {
	if len(places) == 0 {
		return 1000.0
	}
	var sum float64
	for _, p := range places {
		sum += p.EntryFee
	}
	return sum
}

func placesContext(places []types.Place) string {
	if len(places) == 0 {
		return "No places in database yet. Suggest popular attractions."
	}
	lines := make([]string, 0, len(places))
	for _, p := range places {
		lines = append(lines, fmt.Sprintf("- %s (%s): ₹%.2f entry, %d hours, Rating: %.1f/5",
			p.Name, p.Category, p.EntryFee, p.RecommendedDurationHours, p.Rating))
	}
	return strings.Join(lines, "\n")
}

func interestsOrDefault(interests []string) string {
	if len(interests) == 0 {
		return "general sightseeing"
	}
	return strings.Join(interests, ", ")
}
