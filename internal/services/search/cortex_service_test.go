package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/interfaces"
	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func TestSearchRequestShape(t *testing.T) {
	var captured interfaces.SearchRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/services/CC_SEARCH_SERVICE_CS/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		captured = interfaces.SearchRequest{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(models.SearchResponse{
			Results: []models.EvidenceChunk{
				{Chunk: "Apply at 2 oz per acre.", RelativePath: "labels/a.pdf", ProductName: "Sevin"},
			},
		})
	}))
	defer server.Close()

	svc := NewCortexService(server.URL, "CC_SEARCH_SERVICE_CS", "test-key", testLogger())

	t.Run("named product adds equality filter", func(t *testing.T) {
		resp, err := svc.Search(context.Background(), "aphid control rate", "Sevin", 10)
		require.NoError(t, err)
		require.Len(t, resp.Results, 1)

		assert.Equal(t, "aphid control rate", captured.Query)
		assert.Equal(t, models.SearchColumns, captured.Columns)
		assert.Equal(t, 10, captured.Limit)
		require.NotNil(t, captured.Filter)
		assert.Equal(t, map[string]string{"PRODUCTNAME": "Sevin"}, captured.Filter.Eq)
	})

	t.Run("ALL omits the filter", func(t *testing.T) {
		_, err := svc.Search(context.Background(), "aphid control rate", models.FilterAll, 10)
		require.NoError(t, err)
		assert.Nil(t, captured.Filter)
	})

	t.Run("empty filter omits the filter", func(t *testing.T) {
		_, err := svc.Search(context.Background(), "aphid control rate", "", 10)
		require.NoError(t, err)
		assert.Nil(t, captured.Filter)
	})
}

func TestSearchErrors(t *testing.T) {
	t.Run("empty query rejected", func(t *testing.T) {
		svc := NewCortexService("http://localhost:1", "svc", "", testLogger())
		_, err := svc.Search(context.Background(), "", models.FilterAll, 10)
		assert.Error(t, err)
	})

	t.Run("non-200 becomes upstream error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "quota exceeded", http.StatusTooManyRequests)
		}))
		defer server.Close()

		svc := NewCortexService(server.URL, "svc", "", testLogger())
		_, err := svc.Search(context.Background(), "rate question", models.FilterAll, 10)
		require.Error(t, err)

		var upstream *interfaces.UpstreamError
		require.ErrorAs(t, err, &upstream)
		assert.Equal(t, "search", upstream.Service)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	})
}
