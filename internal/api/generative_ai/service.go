package generativeAI

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"google.golang.org/genai"

	"github.com/sukhpreet-s/travel-planner-api/app/observability/metrics"
	"github.com/sukhpreet-s/travel-planner-api/internal/types"
)

const defaultTemperature = 0.5

var modelTarget = metric.WithAttributes(attribute.String("target", "model"))

// Generator is the single seam between the planning services and the
// model backend. Callers pass a system instruction and a user prompt
// and get back raw text to interpret themselves.
type Generator interface {
	GenerateCompletion(ctx context.Context, systemInstruction, userPrompt string) (string, error)
}

type AIClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ Generator = (*AIClient)(nil)

func NewAIClient(ctx context.Context, apiKey, model string, logger *slog.Logger) (*AIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is not configured")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateCompletion sends a single-turn request to the model. An
// unreachable backend maps to ErrUpstreamUnavailable and an empty
// candidate set to ErrContentEmpty so callers can fall back uniformly.
func (ai *AIClient) GenerateCompletion(ctx context.Context, systemInstruction, userPrompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](defaultTemperature),
	}
	if systemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	start := time.Now()
	result, err := ai.client.Models.GenerateContent(ctx, ai.model, genai.Text(userPrompt), config)
	metrics.Get().ExternalCallDuration.Record(ctx, time.Since(start).Seconds(), modelTarget)
	if err != nil {
		metrics.Get().ExternalCallErrorsTotal.Add(ctx, 1, modelTarget)
		ai.logger.ErrorContext(ctx, "Model call failed", slog.Any("error", err))
		return "", fmt.Errorf("%w: %s", types.ErrUpstreamUnavailable, err)
	}

	text := result.Text()
	if text == "" {
		return "", types.ErrContentEmpty
	}
	return text, nil
}
