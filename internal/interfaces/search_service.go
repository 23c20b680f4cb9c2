package interfaces

import (
	"context"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// SearchFilter is the structured predicate sent to the search service.
// Only equality on metadata columns is supported.
type SearchFilter struct {
	Eq map[string]string `json:"@eq"`
}

// SearchRequest is the wire request for an evidence search.
type SearchRequest struct {
	Query   string        `json:"query"`
	Columns []string      `json:"columns"`
	Filter  *SearchFilter `json:"filter,omitempty"`
	Limit   int           `json:"limit"`
}

// EvidenceSearchService retrieves relevant label-document chunks for a query.
type EvidenceSearchService interface {
	// Search runs a semantic search over the label corpus. A productFilter of
	// models.FilterAll searches all products; any other value restricts
	// results to that product name.
	Search(ctx context.Context, query, productFilter string, limit int) (*models.SearchResponse, error)
}
