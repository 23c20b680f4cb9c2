package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/common"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// ChatService runs the full question-answering pipeline: window the history,
// rewrite the query, retrieve evidence while classifying weather need, fetch
// the forecast when needed, compose the prompt, generate the answer, and
// resolve citations.
type ChatService struct {
	llmService       interfaces.LLMService
	searchService    interfaces.EvidenceSearchService
	classifier       interfaces.WeatherClassifier
	weatherService   interfaces.WeatherService
	citationResolver interfaces.CitationResolver
	rewriter         *QueryRewriter
	promptBuilder    *PromptBuilder
	logger           arbor.ILogger
	historyWindow    int
	numChunks        int
}

func NewChatService(
	llmService interfaces.LLMService,
	searchService interfaces.EvidenceSearchService,
	classifier interfaces.WeatherClassifier,
	weatherService interfaces.WeatherService,
	citationResolver interfaces.CitationResolver,
	logger arbor.ILogger,
	historyWindow int,
	numChunks int,
) *ChatService {
	return &ChatService{
		llmService:       llmService,
		searchService:    searchService,
		classifier:       classifier,
		weatherService:   weatherService,
		citationResolver: citationResolver,
		rewriter:         NewQueryRewriter(llmService, logger),
		promptBuilder:    NewPromptBuilder(),
		logger:           logger,
		historyWindow:    historyWindow,
		numChunks:        numChunks,
	}
}

type retrievalResult struct {
	response *models.SearchResponse
	err      error
}

type classificationResult struct {
	categories models.CategorySet
	err        error
}

// Ask answers the question in the context of the conversation. Both the user
// turn and the assistant turn are appended; on failure the assistant turn
// carries the error text so the timeline never has a dangling question.
// Turns for the same conversation are serialized on the session lock.
func (s *ChatService) Ask(ctx context.Context, conv *models.Conversation, question string) (*interfaces.AskResult, error) {
	conv.Lock()
	defer conv.Unlock()

	conv.Append(&models.ConversationTurn{
		ID:        common.NewTurnID(),
		Role:      models.RoleUser,
		Content:   question,
		CreatedAt: time.Now(),
	})

	result, err := s.runPipeline(ctx, conv, question)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("conversation_id", conv.ID).
			Msg("Turn failed")

		conv.Append(&models.ConversationTurn{
			ID:        common.NewTurnID(),
			Role:      models.RoleAssistant,
			Content:   fmt.Sprintf("Sorry, I could not answer that: %v", err),
			CreatedAt: time.Now(),
		})
		return nil, err
	}

	conv.Append(&models.ConversationTurn{
		ID:        common.NewTurnID(),
		Role:      models.RoleAssistant,
		Content:   result.Answer,
		Citations: result.Citations,
		CreatedAt: time.Now(),
	})

	return result, nil
}

func (s *ChatService) runPipeline(ctx context.Context, conv *models.Conversation, question string) (*interfaces.AskResult, error) {
	history := conv.Window(s.historyWindow)

	query, err := s.rewriter.Rewrite(ctx, history, question)
	if err != nil {
		return nil, err
	}

	// Retrieval and weather-need classification are independent of each
	// other; run them concurrently and join before composing the prompt.
	retrievalCh := make(chan retrievalResult, 1)
	classifyCh := make(chan classificationResult, 1)

	go func() {
		response, err := s.searchService.Search(ctx, query, conv.ProductFilter, s.numChunks)
		retrievalCh <- retrievalResult{response: response, err: err}
	}()

	go func() {
		categories, err := s.classifier.Classify(ctx, question)
		classifyCh <- classificationResult{categories: categories, err: err}
	}()

	retrieval := <-retrievalCh
	classification := <-classifyCh

	if retrieval.err != nil {
		return nil, retrieval.err
	}

	// A broken classifier downgrades the turn to no-weather rather than
	// failing it; the evidence-grounded answer is still worth giving.
	if classification.err != nil {
		s.logger.Warn().
			Err(classification.err).
			Msg("Weather classification failed, answering without weather")
		classification.categories = models.NewCategorySet()
	}

	weather, err := s.fetchWeather(ctx, conv, classification.categories)
	if err != nil {
		return nil, err
	}
	if !weather.Empty() {
		conv.Weather = weather
	}

	bundle, err := s.promptBuilder.Build(history, retrieval.response, conv.ImageAnalysis, weather, question)
	if err != nil {
		return nil, err
	}

	answer, err := s.llmService.ChatWithSystem(ctx, bundle.System, []interfaces.Message{
		{Role: "user", Content: bundle.User},
	})
	if err != nil {
		return nil, err
	}

	citations, err := s.citationResolver.Resolve(ctx, retrieval.response)
	if err != nil {
		s.logger.Warn().
			Err(err).
			Msg("Citation resolution failed, returning answer without citations")
		citations = nil
	}

	s.logger.Info().
		Str("conversation_id", conv.ID).
		Int("evidence_chunks", len(retrieval.response.Results)).
		Int("citations", len(citations)).
		Bool("weather_attached", !weather.Empty()).
		Msg("Turn completed")

	return &interfaces.AskResult{
		Answer:    answer,
		Citations: citations,
		Query:     query,
		Weather:   weather,
	}, nil
}

// fetchWeather fetches the forecast when the classifier asked for categories
// and the session has a saved location. Without a location the turn proceeds
// without weather.
func (s *ChatService) fetchWeather(ctx context.Context, conv *models.Conversation, categories models.CategorySet) (*models.WeatherSnapshot, error) {
	if len(categories) == 0 {
		return &models.WeatherSnapshot{}, nil
	}
	if conv.Location == nil {
		s.logger.Debug().
			Str("conversation_id", conv.ID).
			Msg("Weather needed but no location set, skipping forecast")
		return &models.WeatherSnapshot{}, nil
	}

	return s.weatherService.Forecast(ctx, conv.Location.Latitude, conv.Location.Longitude, categories)
}

// HealthCheck verifies the completion service backing the pipeline.
func (s *ChatService) HealthCheck(ctx context.Context) error {
	if err := s.llmService.HealthCheck(ctx); err != nil {
		return fmt.Errorf("LLM service unhealthy: %w", err)
	}
	return nil
}
