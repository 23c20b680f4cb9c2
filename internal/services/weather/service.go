package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

const (
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 1
)

// promptMetrics are the forecast fields that survive shaping. Everything
// else in the upstream payload is dropped before prompt composition.
var promptMetrics = []string{"temp", "wind_speed", "dew_point", "humidity", "uvi"}

// APIError represents a non-200 response from the forecast provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("forecast API error: %s (status: %d)", e.Message, e.StatusCode)
}

// Service fetches one-call forecasts and shapes them for prompt use.
// Implements interfaces.WeatherService.
type Service struct {
	baseURL    string
	apiKey     string
	units      string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// Option configures the Service.
type Option func(*Service)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *Service) {
		s.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.httpClient.Timeout = timeout
	}
}

// NewService creates a forecast client against a one-call style endpoint.
func NewService(baseURL, apiKey, units string, logger arbor.ILogger, opts ...Option) *Service {
	if units == "" {
		units = "imperial"
	}

	s := &Service{
		baseURL: baseURL,
		apiKey:  apiKey,
		units:   units,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// oneCallResponse is the subset of the upstream payload we consume.
type oneCallResponse struct {
	Current map[string]any   `json:"current"`
	Hourly  []map[string]any `json:"hourly"`
	Daily   []map[string]any `json:"daily"`
}

// Forecast fetches the requested categories for the coordinates in a single
// upstream call. Unrequested categories are excluded server-side; minutely
// and alerts are always excluded. The response is shaped down to the prompt
// metric set before it is returned.
func (s *Service) Forecast(ctx context.Context, lat, lon float64, include models.CategorySet) (*models.WeatherSnapshot, error) {
	if len(include) == 0 {
		return &models.WeatherSnapshot{}, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("appid", s.apiKey)
	params.Set("units", s.units)
	params.Set("exclude", strings.Join(excludedCategories(include), ","))

	reqURL := s.baseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Strs("include", include.List()).
		Msg("Fetching forecast")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &interfaces.UpstreamError{Service: "weather", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &interfaces.UpstreamError{Service: "weather", Err: &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}}
	}

	var raw oneCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, &interfaces.MalformedResponseError{Service: "weather", Detail: err.Error()}
	}

	snapshot := shapeSnapshot(&raw)

	s.logger.Debug().
		Bool("has_current", snapshot.Current != nil).
		Int("hourly_count", len(snapshot.Hourly)).
		Int("daily_count", len(snapshot.Daily)).
		Msg("Forecast shaped")

	return snapshot, nil
}

// excludedCategories computes the exclude parameter: every category the
// caller did not ask for. Minutely and alerts are never requestable, so they
// always appear here.
func excludedCategories(include models.CategorySet) []string {
	excluded := models.NewCategorySet()
	for _, c := range models.AllWeatherCategories {
		if !include.Has(c) {
			excluded.Add(c)
		}
	}
	excluded.Add(models.WeatherMinutely)
	excluded.Add(models.WeatherAlerts)
	return excluded.List()
}

// shapeSnapshot reduces the raw payload to the prompt metric set. Categories
// absent from the raw payload stay absent in the snapshot.
func shapeSnapshot(raw *oneCallResponse) *models.WeatherSnapshot {
	snapshot := &models.WeatherSnapshot{}

	if raw.Current != nil {
		snapshot.Current = shapeMetrics(raw.Current)
	}

	if raw.Hourly != nil {
		snapshot.Hourly = make([]map[string]any, 0, len(raw.Hourly))
		for _, entry := range raw.Hourly {
			snapshot.Hourly = append(snapshot.Hourly, shapeMetrics(entry))
		}
	}

	if raw.Daily != nil {
		snapshot.Daily = make([]models.DailyForecast, 0, len(raw.Daily))
		for _, entry := range raw.Daily {
			snapshot.Daily = append(snapshot.Daily, models.DailyForecast{
				Date:    dailyDate(entry),
				Metrics: shapeMetrics(entry),
			})
		}
	}

	return snapshot
}

// shapeMetrics keeps only the prompt metrics from a raw forecast entry.
// Applying it to an already-shaped entry is a no-op.
func shapeMetrics(entry map[string]any) map[string]any {
	shaped := make(map[string]any, len(promptMetrics))
	for _, metric := range promptMetrics {
		if value, ok := entry[metric]; ok {
			shaped[metric] = value
		}
	}
	return shaped
}

// dailyDate renders a daily entry's unix timestamp as a calendar date.
func dailyDate(entry map[string]any) string {
	dt, ok := entry["dt"].(float64)
	if !ok {
		return ""
	}
	return time.Unix(int64(dt), 0).UTC().Format("2006-01-02")
}
