package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
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
	DefaultRateLimit = 10
)

// APIError represents a non-200 response from the search service.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("search API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// CortexService retrieves label-document evidence from the hosted semantic
// search service. Implements interfaces.EvidenceSearchService.
type CortexService struct {
	baseURL    string
	service    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// Option configures the CortexService.
type Option func(*CortexService)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(s *CortexService) {
		s.httpClient = httpClient
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) Option {
	return func(s *CortexService) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *CortexService) {
		s.httpClient.Timeout = timeout
	}
}

// NewCortexService creates a search service client. The service name selects
// which hosted search index handles the query.
func NewCortexService(baseURL, service, apiKey string, logger arbor.ILogger, opts ...Option) *CortexService {
	s := &CortexService{
		baseURL: baseURL,
		service: service,
		apiKey:  apiKey,
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

// Search runs a semantic search over the label corpus. A productFilter of
// models.FilterAll searches all products; any other value restricts results
// with an equality predicate on PRODUCTNAME.
func (s *CortexService) Search(ctx context.Context, query, productFilter string, limit int) (*models.SearchResponse, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	request := interfaces.SearchRequest{
		Query:   query,
		Columns: models.SearchColumns,
		Limit:   limit,
	}
	if productFilter != "" && productFilter != models.FilterAll {
		request.Filter = &interfaces.SearchFilter{
			Eq: map[string]string{"PRODUCTNAME": productFilter},
		}
	}

	s.logger.Debug().
		Str("query", query).
		Str("product_filter", productFilter).
		Int("limit", limit).
		Msg("Searching label corpus")

	var response models.SearchResponse
	if err := s.post(ctx, "/services/"+s.service+"/search", &request, &response); err != nil {
		return nil, &interfaces.UpstreamError{Service: "search", Err: err}
	}

	s.logger.Debug().
		Int("result_count", len(response.Results)).
		Msg("Label search completed")

	return &response, nil
}

// post performs a JSON POST request to the search service.
func (s *CortexService) post(ctx context.Context, path string, body, result interface{}) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
