package models

import "sort"

// WeatherCategory names one block of the upstream one-call forecast payload.
type WeatherCategory string

const (
	WeatherCurrent  WeatherCategory = "current"
	WeatherHourly   WeatherCategory = "hourly"
	WeatherDaily    WeatherCategory = "daily"
	WeatherMinutely WeatherCategory = "minutely"
	WeatherAlerts   WeatherCategory = "alerts"
)

// AllWeatherCategories is the complete set of blocks the upstream API serves.
var AllWeatherCategories = []WeatherCategory{
	WeatherCurrent,
	WeatherHourly,
	WeatherDaily,
	WeatherMinutely,
	WeatherAlerts,
}

// CategorySet is an unordered set of weather categories.
type CategorySet map[WeatherCategory]struct{}

func NewCategorySet(categories ...WeatherCategory) CategorySet {
	s := make(CategorySet, len(categories))
	for _, c := range categories {
		s[c] = struct{}{}
	}
	return s
}

func (s CategorySet) Has(c WeatherCategory) bool {
	_, ok := s[c]
	return ok
}

func (s CategorySet) Add(c WeatherCategory) {
	s[c] = struct{}{}
}

// List returns the members sorted lexically for stable request parameters.
func (s CategorySet) List() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	sort.Strings(out)
	return out
}

// DailyForecast is one shaped day of forecast metrics keyed by metric name,
// with the upstream unix timestamp rendered as a calendar date.
type DailyForecast struct {
	Date    string         `json:"date"`
	Metrics map[string]any `json:"metrics"`
}

// WeatherSnapshot holds the shaped weather data attached to a turn. Only the
// categories the classifier asked for are populated; the rest stay nil.
type WeatherSnapshot struct {
	Current map[string]any   `json:"current,omitempty"`
	Hourly  []map[string]any `json:"hourly,omitempty"`
	Daily   []DailyForecast  `json:"daily,omitempty"`
}

// Empty reports whether no category carries data.
func (w *WeatherSnapshot) Empty() bool {
	if w == nil {
		return true
	}
	return w.Current == nil && len(w.Hourly) == 0 && len(w.Daily) == 0
}
