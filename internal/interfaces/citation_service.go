package interfaces

import (
	"context"

	"github.com/AjjayK/Kronia-Pesticide-LLM/internal/models"
)

// CitationResolver turns retrieved evidence into user-facing citations with
// signed document links.
type CitationResolver interface {
	// Resolve deduplicates the source paths in the response and resolves each
	// to a short-lived access URL. Paths that fail to resolve are skipped;
	// the remaining citations are still returned.
	Resolve(ctx context.Context, response *models.SearchResponse) ([]models.Citation, error)
}
