package types

import (
	"fmt"
	"time"
)

type ComfortLevel string

const (
	ComfortEconomy ComfortLevel = "ECONOMY"
	ComfortComfort ComfortLevel = "COMFORT"
	ComfortLuxury  ComfortLevel = "LUXURY"
)

func (c ComfortLevel) Valid() bool {
	switch c {
	case ComfortEconomy, ComfortComfort, ComfortLuxury:
		return true
	}
	return false
}

// Trip is a planned journey. Trips are immutable after creation.
type Trip struct {
	ID                 int64        `json:"id"`
	UserID             int64        `json:"-"`
	Username           string       `json:"username"`
	SourceCity         string       `json:"sourceCity"`
	DestinationCity    string       `json:"destinationCity"`
	SourceLat          float64      `json:"sourceLat"`
	SourceLng          float64      `json:"sourceLng"`
	DestLat            float64      `json:"destLat"`
	DestLng            float64      `json:"destLng"`
	Passengers         int          `json:"passengers"`
	Budget             float64      `json:"budget"`
	ComfortLevel       ComfortLevel `json:"comfortLevel"`
	RecommendedMode    string       `json:"recommendedMode"`
	DistanceEstimateKm float64      `json:"distanceEstimate"`
	ConfidenceScore    float64      `json:"confidenceScore"`
	SourceWeather      string       `json:"sourceWeather"`
	DestinationWeather string       `json:"destinationWeather"`
	ConversationID     string       `json:"conversationId,omitempty"`
	CreatedAt          time.Time    `json:"createdAt"`
	RecommendedPlaces  []Place      `json:"-"`
}

// TripRequest is the body of POST /trips.
type TripRequest struct {
	SourceCity      string       `json:"sourceCity"`
	DestinationCity string       `json:"destinationCity"`
	Passengers      int          `json:"passengers"`
	Budget          float64      `json:"budget"`
	ComfortLevel    ComfortLevel `json:"comfortLevel"`
	Interests       []string     `json:"interests,omitempty"`
	TripDuration    int          `json:"tripDuration,omitempty"`
}

// Validate reports the first field-specific validation failure.
func (r TripRequest) Validate() error {
	if r.SourceCity == "" {
		return fmt.Errorf("%w: source city is required", ErrValidation)
	}
	if r.DestinationCity == "" {
		return fmt.Errorf("%w: destination city is required", ErrValidation)
	}
	if r.Passengers < 1 {
		return fmt.Errorf("%w: at least 1 passenger is required", ErrValidation)
	}
	if r.Budget < 0 {
		return fmt.Errorf("%w: budget cannot be negative", ErrValidation)
	}
	if !r.ComfortLevel.Valid() {
		return fmt.Errorf("%w: comfort level must be one of ECONOMY, COMFORT, LUXURY", ErrValidation)
	}
	return nil
}

// DurationDays returns the requested trip duration, defaulting to three days.
func (r TripRequest) DurationDays() int {
	if r.TripDuration > 0 {
		return r.TripDuration
	}
	return 3
}

// TripResponse is the outward projection of a Trip.
type TripResponse struct {
	ID                 int64          `json:"id"`
	SourceCity         string         `json:"sourceCity"`
	DestinationCity    string         `json:"destinationCity"`
	Passengers         int            `json:"passengers"`
	Budget             float64        `json:"budget"`
	ComfortLevel       string         `json:"comfortLevel"`
	RecommendedMode    string         `json:"recommendedMode"`
	DistanceEstimate   float64        `json:"distanceEstimate"`
	ConfidenceScore    float64        `json:"confidenceScore"`
	SourceWeather      string         `json:"sourceWeather"`
	DestinationWeather string         `json:"destinationWeather"`
	CreatedAt          time.Time      `json:"createdAt"`
	Username           string         `json:"username"`
	RecommendedPlaces  []PlaceSummary `json:"recommendedPlaces"`
	ConversationID     string         `json:"conversationId,omitempty"`
	HasChatHistory     bool           `json:"hasChatHistory"`
}

func NewTripResponse(t *Trip) TripResponse {
	places := make([]PlaceSummary, 0, len(t.RecommendedPlaces))
	for _, p := range t.RecommendedPlaces {
		places = append(places, NewPlaceSummary(p))
	}
	return TripResponse{
		ID:                 t.ID,
		SourceCity:         t.SourceCity,
		DestinationCity:    t.DestinationCity,
		Passengers:         t.Passengers,
		Budget:             t.Budget,
		ComfortLevel:       string(t.ComfortLevel),
		RecommendedMode:    t.RecommendedMode,
		DistanceEstimate:   t.DistanceEstimateKm,
		ConfidenceScore:    t.ConfidenceScore,
		SourceWeather:      t.SourceWeather,
		DestinationWeather: t.DestinationWeather,
		CreatedAt:          t.CreatedAt,
		Username:           t.Username,
		RecommendedPlaces:  places,
		ConversationID:     t.ConversationID,
		HasChatHistory:     t.ConversationID != "",
	}
}

// ModeRecommendation is the answer of the mode recommender.
type ModeRecommendation struct {
	Mode       string  `json:"recommendedMode"`
	DistanceKm float64 `json:"distanceEstimate"`
	Confidence float64 `json:"confidenceScore"`
	Reasoning  string  `json:"reasoning"`
}
