package interfaces

import (
	"context"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// WeatherClassifier decides whether a question needs weather data and, if so,
// which forecast categories matter to it.
type WeatherClassifier interface {
	// Classify returns the needed categories, or an empty set when the
	// question does not call for weather data.
	Classify(ctx context.Context, question string) (models.CategorySet, error)
}

// WeatherService fetches and shapes forecast data for a location.
type WeatherService interface {
	// Forecast fetches the requested categories for the coordinates in a
	// single upstream call and returns them shaped for prompt use.
	Forecast(ctx context.Context, lat, lon float64, include models.CategorySet) (*models.WeatherSnapshot, error)
}
