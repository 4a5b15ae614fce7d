package types

import "fmt"

// Coordinates is a geocoded point. Both values are always finite.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// WeatherAnalysis is the derived view of current weather at a point.
// Defaulted is set when the upstream was unreachable and the fixed benign
// default was substituted; it is not serialized.
type WeatherAnalysis struct {
	TemperatureC      float64 `json:"temperature"`
	WindKph           float64 `json:"windSpeed"`
	WeatherCode       int     `json:"weatherCode"`
	Condition         string  `json:"condition"`
	TravelAdvisory    string  `json:"travelAdvisory"`
	SafetyScore       float64 `json:"safetyScore"`
	SuitableForTravel bool    `json:"suitableForTravel"`
	Defaulted         bool    `json:"-"`
}

// Summary renders the one-line form persisted on trips. When the
// analysis is a substituted default, the advisory is appended so the
// stored summary says the weather service was unavailable.
func (w WeatherAnalysis) Summary() string {
	s := fmt.Sprintf("Temp: %.1f°C, %s, Wind: %.1f km/h", w.TemperatureC, w.Condition, w.WindKph)
	if w.Defaulted {
		s += ", " + w.TravelAdvisory
	}
	return s
}
