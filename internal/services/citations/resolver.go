package citations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// DefaultTimeout is the default HTTP timeout.
const DefaultTimeout = 30 * time.Second

// Resolver turns retrieved evidence into citations with short-lived signed
// URLs. Implements interfaces.CitationResolver.
type Resolver struct {
	baseURL       string
	stage         string
	apiKey        string
	expirySeconds int
	httpClient    *http.Client
	logger        arbor.ILogger
}

// Option configures the Resolver.
type Option func(*Resolver)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = httpClient
	}
}

// NewResolver creates a citation resolver against the document store's
// signed-URL endpoint. The stage identifies the storage location holding the
// original label PDFs.
func NewResolver(baseURL, stage, apiKey string, expirySeconds int, logger arbor.ILogger, opts ...Option) *Resolver {
	if expirySeconds <= 0 {
		expirySeconds = 360
	}

	r := &Resolver{
		baseURL:       baseURL,
		stage:         stage,
		apiKey:        apiKey,
		expirySeconds: expirySeconds,
		logger:        logger,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve deduplicates the source paths in the response and resolves each to
// a signed URL. A path that fails to resolve is logged and skipped; the
// remaining citations are still returned, in sorted path order so repeated
// renders of the same evidence are stable.
func (r *Resolver) Resolve(ctx context.Context, response *models.SearchResponse) ([]models.Citation, error) {
	if response == nil || len(response.Results) == 0 {
		return nil, nil
	}

	paths := uniquePaths(response)

	citations := make([]models.Citation, 0, len(paths))
	for _, path := range paths {
		signedURL, err := r.presign(ctx, path)
		if err != nil {
			r.logger.Warn().
				Err(err).
				Str("path", path).
				Msg("Failed to resolve citation URL, skipping source")
			continue
		}
		citations = append(citations, models.Citation{
			Source: path,
			URL:    signedURL,
		})
	}

	r.logger.Debug().
		Int("sources", len(paths)).
		Int("resolved", len(citations)).
		Msg("Citations resolved")

	return citations, nil
}

// uniquePaths collects the distinct relative paths across all results,
// sorted for stable output.
func uniquePaths(response *models.SearchResponse) []string {
	seen := make(map[string]struct{}, len(response.Results))
	paths := make([]string, 0, len(response.Results))
	for _, result := range response.Results {
		if result.RelativePath == "" {
			continue
		}
		if _, ok := seen[result.RelativePath]; ok {
			continue
		}
		seen[result.RelativePath] = struct{}{}
		paths = append(paths, result.RelativePath)
	}
	sort.Strings(paths)
	return paths
}

// presign requests a time-limited URL for one document path.
func (r *Resolver) presign(ctx context.Context, path string) (string, error) {
	params := url.Values{}
	params.Set("stage", r.stage)
	params.Set("path", path)
	params.Set("expiry", strconv.Itoa(r.expirySeconds))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/presign?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	if r.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("presign failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("presign returned empty url")
	}

	return result.URL, nil
}
