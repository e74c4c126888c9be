// -----------------------------------------------------------------------
// Embedding Service Interface - Text to vector conversion
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// EmbeddingService maps text to fixed-length vectors for indexing and search.
//
// Document and query embedding may use different task framing internally, but
// both MUST resolve to the same underlying model and dimensionality for a
// given collection. The pipelines enforce this by configuration: the provider
// does not self-report dimensionality, so there is no runtime guard.
type EmbeddingService interface {
	// EmbedSegments embeds segments for indexing, preserving input order.
	// The returned slice is index-aligned with segments.
	EmbedSegments(ctx context.Context, segments []models.Segment) ([][]float32, error)

	// EmbedQuery embeds a search query. Implementations may apply
	// query-oriented task framing distinct from document embedding.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimension returns the configured embedding dimensionality.
	Dimension() int
}
