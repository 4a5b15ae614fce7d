package types

// Place is a point of interest in the shared catalogue. Uniqueness is
// (city, lowercased name); CoordinatesKnown distinguishes "unknown" from a
// genuine (0,0) fix.
type Place struct {
	ID                       int64   `json:"id"`
	Name                     string  `json:"name"`
	Description              string  `json:"description"`
	City                     string  `json:"city"`
	Country                  string  `json:"country"`
	Latitude                 float64 `json:"latitude"`
	Longitude                float64 `json:"longitude"`
	CoordinatesKnown         bool    `json:"coordinatesKnown"`
	Category                 string  `json:"category"`
	ImageURL                 string  `json:"imageUrl,omitempty"`
	EntryFee                 float64 `json:"entryFee"`
	RecommendedDurationHours int     `json:"recommendedDuration"`
	Rating                   float64 `json:"rating"`
	BestTimeToVisit          string  `json:"bestTimeToVisit,omitempty"`
}

// PlaceSummary is the trimmed projection embedded in trip responses.
type PlaceSummary struct {
	ID                       int64   `json:"id"`
	Name                     string  `json:"name"`
	Category                 string  `json:"category"`
	Rating                   float64 `json:"rating"`
	EntryFee                 float64 `json:"entryFee"`
	RecommendedDurationHours int     `json:"recommendedDuration"`
}

func NewPlaceSummary(p Place) PlaceSummary {
	return PlaceSummary{
		ID:                       p.ID,
		Name:                     p.Name,
		Category:                 p.Category,
		Rating:                   p.Rating,
		EntryFee:                 p.EntryFee,
		RecommendedDurationHours: p.RecommendedDurationHours,
	}
}

// DayPlan is one day of a recommended itinerary.
type DayPlan struct {
	Day         int      `json:"day"`
	Places      []string `json:"places"`
	Description string   `json:"description"`
}

// PlaceRecommendation is the full answer of the place recommender.
type PlaceRecommendation struct {
	RecommendedPlaces []Place   `json:"recommendedPlaces"`
	DailyItinerary    []DayPlan `json:"dailyItinerary"`
	TotalCostEstimate float64   `json:"totalCostEstimate"`
	Reasoning         string    `json:"reasoning"`
}
