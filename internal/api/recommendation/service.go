package recommendation

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

const modelCallTimeout = 30 * time.Second

// The prompts constrain the model to emit the exact schema the adapter
// projects against, so they change together or not at all.
const (
	modeSystemPrompt = `You are a practical travel planner for Indian routes.
CRITICAL: Return ONLY valid JSON, no explanations.
- Use realistic distances for Indian travel
- Consider budget and comfort level seriously
- Be concise in reasoning (max 2 sentences)
- recommendedMode: car/train/bus/flight only
- distanceEstimate: realistic km between Indian cities
- confidenceScore: 0.0 to 1.0`

	modeUserPromptTemplate = `[TRAVEL ANALYSIS]
FROM: %s TO: %s
PASSENGERS: %d | BUDGET: ₹%.2f | COMFORT: %s
WEATHER: %s (source) → %s (destination)

RETURN ONLY VALID JSON (no other text):
{
  "recommendedMode": "car/train/bus/flight",
  "distanceEstimate": 123.45,
  "confidenceScore": 0.85,
  "reasoning": "Brief practical explanation"
}`
)

var modeSchema = airesponse.Schema{
	"recommendedMode":  {Type: airesponse.String, Default: "car"},
	"distanceEstimate": {Type: airesponse.Number, Default: 250.0},
	"confidenceScore":  {Type: airesponse.Number, Default: 0.8},
	"reasoning":        {Type: airesponse.String, Default: "Based on your travel preferences"},
}

// Service recommends a transport mode for a route. It never fails:
// model errors degrade first to text analysis and then to a budget
// heuristic.
type Service interface {
	RecommendMode(ctx context.Context, input ModeInput) types.ModeRecommendation
}

type ModeInput struct {
	Source             string
	Destination        string
	Passengers         int
	Budget             float64
	ComfortLevel       types.ComfortLevel
	SourceWeather      string
	DestinationWeather string
}

type ServiceImpl struct {
	generator generativeAI.Generator
	logger    *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewService(generator generativeAI.Generator, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{generator: generator, logger: logger}
}

func (s *ServiceImpl) RecommendMode(ctx context.Context, input ModeInput) types.ModeRecommendation {
	callCtx, cancel := context.WithTimeout(ctx, modelCallTimeout)
	defer cancel()

	prompt := fmt.Sprintf(modeUserPromptTemplate,
		input.Source, input.Destination,
		input.Passengers, input.Budget, input.ComfortLevel,
		input.SourceWeather, input.DestinationWeather)

	raw, err := s.generator.GenerateCompletion(callCtx, modeSystemPrompt, prompt)
	if err != nil {
		s.logger.WarnContext(ctx, "Mode recommendation model call failed, using heuristic",
			slog.String("error", err.Error()))
		return HeuristicFallback(input.Budget, input.ComfortLevel)
	}

	rec, ok := modeSchema.Project(raw)
	if !ok {
		return fromText(raw)
	}
	return types.ModeRecommendation{
		Mode:       strings.ToLower(rec.String("recommendedMode")),
		DistanceKm: rec.Float("distanceEstimate"),
		Confidence: rec.Float("confidenceScore"),
		Reasoning:  rec.String("reasoning"),
	}
}

// fromText salvages a recommendation from a non-JSON model reply via
// keyword scanning.
func fromText(raw string) types.ModeRecommendation {
	return types.ModeRecommendation{
		Mode:       airesponse.ModeFromText(raw),
		DistanceKm: airesponse.DistanceFromText(raw, 250.0),
		Confidence: 0.8,
		Reasoning:  "Based on your travel preferences",
	}
}

// HeuristicFallback picks a mode purely from the budget, with a
// comfort override for luxury travellers.
func HeuristicFallback(budget float64, comfort types.ComfortLevel) types.ModeRecommendation {
	var rec types.ModeRecommendation
	switch {
	case budget > 5000:
		rec = types.ModeRecommendation{
			Mode:       "flight",
			DistanceKm: 800.0,
			Confidence: 0.9,
			Reasoning:  "Budget allows for comfortable air travel",
		}
	case budget > 1500:
		rec = types.ModeRecommendation{
			Mode:       "train",
			DistanceKm: 500.0,
			Confidence: 0.8,
			Reasoning:  "Train offers good balance of comfort and cost",
		}
	default:
		rec = types.ModeRecommendation{
			Mode:       "bus",
			DistanceKm: 300.0,
			Confidence: 0.7,
			Reasoning:  "Most economical option for your budget",
		}
	}

	if comfort == types.ComfortLuxury && rec.Mode != "flight" {
		rec.Mode = "train"
		rec.Reasoning += " with premium comfort options"
	}
	return rec
}
