package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string         `toml:"environment" validate:"oneof=development production"`
	Logging     LoggingConfig  `toml:"logging"`
	Storage     StorageConfig  `toml:"storage"`
	Chat        ChatConfig     `toml:"chat"`
	Search      SearchConfig   `toml:"search"`
	Weather     WeatherConfig  `toml:"weather"`
	Citation    CitationConfig `toml:"citation"`
	Catalog     CatalogConfig  `toml:"catalog"`
	Gemini      GeminiConfig   `toml:"gemini"`
	Claude      ClaudeConfig   `toml:"claude"`
	LLM         LLMConfig      `toml:"llm"`
	Vision      VisionConfig   `toml:"vision"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                      // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

// ChatConfig contains the per-turn pipeline parameters
type ChatConfig struct {
	HistoryWindow int `toml:"history_window" validate:"min=1"` // Last N turns carried into rewriting and prompting
	NumChunks     int `toml:"num_chunks" validate:"min=1"`     // Evidence chunks requested per retrieval
}

// SearchConfig contains the hosted label-document search service configuration
type SearchConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"` // Search service endpoint
	Service        string `toml:"service"`                          // Search service name, e.g. "CC_SEARCH_SERVICE_CS"
	APIKey         string `toml:"api_key"`                          // Bearer token for the search service
	RequestTimeout string `toml:"request_timeout"`                  // e.g. "30s"
	RateLimit      int    `toml:"rate_limit" validate:"min=1"`      // Requests per second
}

// WeatherConfig contains the one-call forecast provider configuration
type WeatherConfig struct {
	BaseURL        string `toml:"base_url" validate:"required,url"` // One-call forecast endpoint
	APIKey         string `toml:"api_key"`                          // Forecast provider API key
	Units          string `toml:"units" validate:"oneof=imperial metric standard"`
	RequestTimeout string `toml:"request_timeout"`
	RateLimit      int    `toml:"rate_limit" validate:"min=1"`
}

// CitationConfig contains the signed-URL resolution service configuration
type CitationConfig struct {
	BaseURL       string `toml:"base_url" validate:"required,url"` // Document store resolution endpoint
	Stage         string `toml:"stage" validate:"required"`        // Storage location identifier, e.g. "@DEV_SRC_INGEST.EPA_RAW.PDF_STORE"
	APIKey        string `toml:"api_key"`
	ExpirySeconds int    `toml:"expiry_seconds" validate:"min=1"` // Signed URL lifetime
}

// CatalogConfig contains the product catalog file configuration
type CatalogConfig struct {
	Path string `toml:"path"` // YAML file of product/pest/site rows; empty disables the catalog
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Chat model (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Operation timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`    // Anthropic API key
	Model       string  `toml:"model"`      // Chat model (default: "claude-haiku-3-5-20241022")
	MaxTokens   int     `toml:"max_tokens"` // Maximum tokens in response (default: 8192)
	Timeout     string  `toml:"timeout"`
	Temperature float32 `toml:"temperature"`
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains unified configuration for the completion providers
type LLMConfig struct {
	DefaultProvider LLMProvider `toml:"default_provider" validate:"oneof=gemini claude"`
}

// VisionConfig contains the image analysis model configuration
type VisionConfig struct {
	Model string `toml:"model"` // Multimodal model for crop damage analysis (default: "gemini-2.0-flash")
}

// NewDefaultConfig creates a configuration with default values.
// Only user-facing settings are expected in kronia.toml; everything here is
// a working default except the API keys.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Chat: ChatConfig{
			HistoryWindow: 7,  // Sliding window of prior turns
			NumChunks:     10, // Evidence chunks per retrieval
		},
		Search: SearchConfig{
			BaseURL:        "https://search.kronia.app/api/v1",
			Service:        "CC_SEARCH_SERVICE_CS",
			APIKey:         "", // User must provide
			RequestTimeout: "30s",
			RateLimit:      10,
		},
		Weather: WeatherConfig{
			BaseURL:        "https://api.openweathermap.org/data/3.0/onecall",
			APIKey:         "", // User must provide
			Units:          "imperial",
			RequestTimeout: "30s",
			RateLimit:      1,
		},
		Citation: CitationConfig{
			BaseURL:       "https://docs.kronia.app/api/v1",
			Stage:         "@DEV_SRC_INGEST.EPA_RAW.PDF_STORE",
			APIKey:        "",
			ExpirySeconds: 360,
		},
		Catalog: CatalogConfig{
			Path: "", // Optional product catalog
		},
		Gemini: GeminiConfig{
			APIKey:      "",
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "",
			Model:       "claude-haiku-3-5-20241022",
			MaxTokens:   8192,
			Timeout:     "2m",
			Temperature: 0.7,
		},
		LLM: LLMConfig{
			DefaultProvider: LLMProviderGemini,
		},
		Vision: VisionConfig{
			Model: "gemini-2.0-flash",
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier
// files; environment variables override all files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks the configuration using go-playground/validator tags.
func (c *Config) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KRONIA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if level := os.Getenv("KRONIA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("KRONIA_BADGER_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}

	if key := os.Getenv("KRONIA_SEARCH_API_KEY"); key != "" {
		config.Search.APIKey = key
	}
	if base := os.Getenv("KRONIA_SEARCH_BASE_URL"); base != "" {
		config.Search.BaseURL = base
	}

	if key := os.Getenv("KRONIA_WEATHER_API_KEY"); key != "" {
		config.Weather.APIKey = key
	}
	if key := os.Getenv("OPENWEATHER_API_KEY"); key != "" && config.Weather.APIKey == "" {
		config.Weather.APIKey = key
	}

	if key := os.Getenv("KRONIA_CITATION_API_KEY"); key != "" {
		config.Citation.APIKey = key
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" && config.Gemini.APIKey == "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("KRONIA_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && config.Claude.APIKey == "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("KRONIA_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	if provider := os.Getenv("KRONIA_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(provider)
	}

	if window := os.Getenv("KRONIA_HISTORY_WINDOW"); window != "" {
		if w, err := strconv.Atoi(window); err == nil {
			config.Chat.HistoryWindow = w
		}
	}
}
