// -----------------------------------------------------------------------
// Retrieval Pipeline - Embed a query and fetch its nearest segments
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Pipeline turns a natural-language query into ranked context: embed the
// query, then run k-nearest-neighbor search against the collection. Each
// call works on its own locals; the pipeline itself is stateless and safe
// for concurrent use.
type Pipeline struct {
	embedder   interfaces.EmbeddingService
	index      interfaces.VectorIndex
	collection string
	defaultK   int
	logger     arbor.ILogger
}

// NewPipeline creates a retrieval pipeline. defaultK is used when a caller
// passes a non-positive k.
func NewPipeline(
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	collection string,
	defaultK int,
	logger arbor.ILogger,
) *Pipeline {
	return &Pipeline{
		embedder:   embedder,
		index:      index,
		collection: collection,
		defaultK:   defaultK,
		logger:     logger,
	}
}

// Retrieve returns the k records most similar to query, ranked by
// non-increasing similarity. A missing collection at query time surfaces as
// retrieval_error: from the caller's view the system cannot retrieve, and
// the cause stays inspectable through the error chain.
func (p *Pipeline) Retrieve(ctx context.Context, query string, k int) (*models.RetrievalResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewPipelineError(models.ErrKindRetrieval, "query is empty", nil)
	}
	if k <= 0 {
		k = p.defaultK
	}

	start := time.Now()

	queryVector, err := p.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	collection, err := p.index.EnsureCollection(ctx, p.collection)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindRetrieval,
			"collection unavailable for retrieval", err)
	}

	result, err := p.index.Search(ctx, collection, queryVector, k)
	if err != nil {
		return nil, err
	}
	result.Query = query

	p.logger.Debug().
		Str("collection", collection.Name).
		Int("k", k).
		Int("hits", len(result.Records)).
		Dur("duration", time.Since(start)).
		Msg("Retrieval completed")

	return result, nil
}
