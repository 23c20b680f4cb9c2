package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

const needPromptTemplate = `You are a classifier. Decide whether answering the following question about pesticide application requires weather or forecast data for the user's location.
Answer with exactly one word: Yes or No.

Question: %s`

const categoryPromptTemplate = `The following question about pesticide application needs weather data. Decide which forecast categories are relevant.
Answer with a comma-separated list drawn only from: current, hourly, daily.

Question: %s`

// Classifier decides whether a question needs weather data and which forecast
// categories it needs. Ambiguous model output resolves to "no weather";
// classification never fails a turn on its own.
type Classifier struct {
	llm    interfaces.LLMService
	logger arbor.ILogger
}

func NewClassifier(llm interfaces.LLMService, logger arbor.ILogger) *Classifier {
	return &Classifier{
		llm:    llm,
		logger: logger,
	}
}

// Classify returns the forecast categories the question needs, or an empty
// set when weather data is not required. Stage one is a strict yes/no gate;
// anything other than "Yes" means no. Stage two keeps only recognized
// category labels.
func (c *Classifier) Classify(ctx context.Context, question string) (models.CategorySet, error) {
	if strings.TrimSpace(question) == "" {
		return models.NewCategorySet(), nil
	}

	needed, err := c.needsWeather(ctx, question)
	if err != nil {
		return nil, err
	}
	if !needed {
		return models.NewCategorySet(), nil
	}

	return c.categories(ctx, question)
}

func (c *Classifier) needsWeather(ctx context.Context, question string) (bool, error) {
	response, err := c.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: fmt.Sprintf(needPromptTemplate, question)},
	})
	if err != nil {
		return false, fmt.Errorf("weather-need classification failed: %w", err)
	}

	// Only an exact affirmative passes the gate. "Probably yes", empty
	// output, or any other hedge means the turn proceeds without weather.
	needed := strings.EqualFold(strings.TrimSpace(response), "yes")

	c.logger.Debug().
		Str("response", response).
		Bool("needs_weather", needed).
		Msg("Weather-need classification")

	return needed, nil
}

func (c *Classifier) categories(ctx context.Context, question string) (models.CategorySet, error) {
	response, err := c.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: fmt.Sprintf(categoryPromptTemplate, question)},
	})
	if err != nil {
		return nil, fmt.Errorf("weather category classification failed: %w", err)
	}

	set := ParseCategories(response)

	c.logger.Debug().
		Str("response", response).
		Strs("categories", set.List()).
		Msg("Weather category classification")

	return set, nil
}

// ParseCategories extracts recognized forecast categories from a
// comma-separated model response. Unknown labels are dropped; minutely and
// alerts are never included.
func ParseCategories(response string) models.CategorySet {
	set := models.NewCategorySet()
	for _, token := range strings.Split(response, ",") {
		label := strings.ToLower(strings.TrimSpace(token))
		switch models.WeatherCategory(label) {
		case models.WeatherCurrent, models.WeatherHourly, models.WeatherDaily:
			set.Add(models.WeatherCategory(label))
		}
	}
	return set
}
