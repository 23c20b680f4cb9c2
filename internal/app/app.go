package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/common"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/catalog"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/chat"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/citations"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/llm"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/search"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/vision"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/services/weather"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	StorageManager interfaces.StorageManager

	LLMService       interfaces.LLMService
	SearchService    interfaces.EvidenceSearchService
	WeatherService   interfaces.WeatherService
	Classifier       interfaces.WeatherClassifier
	VisionService    interfaces.VisionService
	CitationResolver interfaces.CitationResolver
	CatalogService   *catalog.Service
	ChatService      interfaces.ChatService
}

// New wires the application services in dependency order.
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	llmService, err := llm.NewLLMService(config, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize LLM service: %w", err)
	}

	visionService, err := vision.NewService(&config.Vision, &config.Gemini, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to initialize vision service: %w", err)
	}

	searchOpts := []search.Option{
		search.WithRateLimit(config.Search.RateLimit),
	}
	if timeout, err := time.ParseDuration(config.Search.RequestTimeout); err == nil {
		searchOpts = append(searchOpts, search.WithTimeout(timeout))
	}
	searchService := search.NewCortexService(
		config.Search.BaseURL,
		config.Search.Service,
		config.Search.APIKey,
		logger,
		searchOpts...,
	)

	weatherOpts := []weather.Option{
		weather.WithRateLimit(config.Weather.RateLimit),
	}
	if timeout, err := time.ParseDuration(config.Weather.RequestTimeout); err == nil {
		weatherOpts = append(weatherOpts, weather.WithTimeout(timeout))
	}
	weatherService := weather.NewService(
		config.Weather.BaseURL,
		config.Weather.APIKey,
		config.Weather.Units,
		logger,
		weatherOpts...,
	)

	classifier := weather.NewClassifier(llmService, logger)

	citationResolver := citations.NewResolver(
		config.Citation.BaseURL,
		config.Citation.Stage,
		config.Citation.APIKey,
		config.Citation.ExpirySeconds,
		logger,
	)

	catalogService, err := catalog.NewService(config.Catalog.Path, logger)
	if err != nil {
		storageManager.Close()
		return nil, fmt.Errorf("failed to load product catalog: %w", err)
	}

	chatService := chat.NewChatService(
		llmService,
		searchService,
		classifier,
		weatherService,
		citationResolver,
		logger,
		config.Chat.HistoryWindow,
		config.Chat.NumChunks,
	)

	logger.Info().
		Str("llm_provider", string(config.LLM.DefaultProvider)).
		Int("history_window", config.Chat.HistoryWindow).
		Int("num_chunks", config.Chat.NumChunks).
		Msg("Application initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		StorageManager:   storageManager,
		LLMService:       llmService,
		SearchService:    searchService,
		WeatherService:   weatherService,
		Classifier:       classifier,
		VisionService:    visionService,
		CitationResolver: citationResolver,
		CatalogService:   catalogService,
		ChatService:      chatService,
	}, nil
}

// Close releases application resources in reverse dependency order.
func (a *App) Close() {
	if a.LLMService != nil {
		if err := a.LLMService.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close LLM service")
		}
	}
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage")
		}
	}
}
