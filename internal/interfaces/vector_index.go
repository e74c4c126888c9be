// -----------------------------------------------------------------------
// Vector Index Interface - Named persistent collection with k-NN search
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// Collection is a handle to an existing named collection in the vector index.
type Collection struct {
	Name      string `json:"name"`
	Dimension int    `json:"dimension"`
	Distance  string `json:"distance"`
}

// VectorIndex is a named, persistent store of (vector, text, metadata)
// records supporting batch insertion and k-nearest-neighbor search.
//
// The index owns all persisted records once a batch commits; the pipelines
// hold no state between calls. Collections must exist before use: creation
// requires a dimensionality and distance choice this core does not own, so
// EnsureCollection never creates implicitly.
type VectorIndex interface {
	// EnsureCollection resolves name to an existing collection. Idempotent
	// and side-effect free. Fails with collection_not_found if the
	// collection was never provisioned.
	EnsureCollection(ctx context.Context, name string) (*Collection, error)

	// Upsert appends records as one atomic batch: if any record is
	// malformed, none are written and the call fails with upsert_error.
	Upsert(ctx context.Context, collection *Collection, records []models.IndexRecord) error

	// Search returns the k records most similar to queryVector, ordered by
	// non-increasing similarity, ties broken by insertion order (earliest
	// first). k must be positive; k larger than the collection returns all
	// records. Fails with search_error on transport failure or a vanished
	// collection.
	Search(ctx context.Context, collection *Collection, queryVector []float32, k int) (*models.RetrievalResult, error)
}
