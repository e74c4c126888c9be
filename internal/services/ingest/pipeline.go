// -----------------------------------------------------------------------
// Ingestion Pipeline - Load, embed, and index an uploaded document
// -----------------------------------------------------------------------

package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Phase labels for ingestion progress, used in logs
const (
	phaseReceived = "received"
	phaseLoaded   = "loaded"
	phaseEmbedded = "embedded"
	phaseIndexed  = "indexed"
	phaseFailed   = "failed"
)

// Result summarizes a completed ingestion
type Result struct {
	DocumentID string        `json:"document_id"`
	Filename   string        `json:"filename"`
	Segments   int           `json:"segments"`
	Collection string        `json:"collection"`
	Duration   time.Duration `json:"duration"`
}

// Pipeline runs the full ingestion flow for one uploaded document: load it
// into segments, embed the segments, and commit them to the vector index as
// one atomic batch. The pipeline holds no state between calls; every run
// gets its own locals, so concurrent ingestions never interfere.
//
// The stored upload is transient input: it is removed when the run finishes,
// whether ingestion succeeded or failed. The index is the only durable
// output. Re-ingesting the same file is not deduplicated and simply appends
// another batch of records.
type Pipeline struct {
	loader     interfaces.DocumentLoader
	embedder   interfaces.EmbeddingService
	index      interfaces.VectorIndex
	uploads    interfaces.UploadStore
	collection string
	logger     arbor.ILogger
}

// NewPipeline creates an ingestion pipeline
func NewPipeline(
	loader interfaces.DocumentLoader,
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndex,
	uploads interfaces.UploadStore,
	collection string,
	logger arbor.ILogger,
) *Pipeline {
	return &Pipeline{
		loader:     loader,
		embedder:   embedder,
		index:      index,
		uploads:    uploads,
		collection: collection,
		logger:     logger,
	}
}

// Ingest processes one stored upload end to end. On failure the index gains
// no records from this run; the stored file is removed either way.
func (p *Pipeline) Ingest(ctx context.Context, doc *models.Document) (*Result, error) {
	if doc == nil {
		return nil, models.NewPipelineError(models.ErrKindLoad, "document is nil", nil)
	}

	start := time.Now()
	p.logger.Info().
		Str("document_id", doc.ID).
		Str("filename", doc.OriginalFilename).
		Str("phase", phaseReceived).
		Msg("Ingestion started")

	// The upload is consumed by this run regardless of outcome. Removal
	// happens on every exit path, including panics in downstream services.
	defer func() {
		if err := p.uploads.Remove(doc); err != nil {
			p.logger.Warn().Err(err).
				Str("document_id", doc.ID).
				Msg("Failed to remove stored upload")
		}
	}()

	segments, err := p.loader.Load(ctx, doc)
	if err != nil {
		return nil, p.fail(doc, phaseReceived, err)
	}
	p.logger.Debug().
		Str("document_id", doc.ID).
		Int("segments", len(segments)).
		Str("phase", phaseLoaded).
		Msg("Document loaded")

	vectors, err := p.embedder.EmbedSegments(ctx, segments)
	if err != nil {
		return nil, p.fail(doc, phaseLoaded, err)
	}
	if len(vectors) != len(segments) {
		return nil, p.fail(doc, phaseLoaded, models.NewPipelineError(
			models.ErrKindEmbedding, "embedding count does not match segment count", nil))
	}
	p.logger.Debug().
		Str("document_id", doc.ID).
		Str("phase", phaseEmbedded).
		Msg("Segments embedded")

	collection, err := p.index.EnsureCollection(ctx, p.collection)
	if err != nil {
		return nil, p.fail(doc, phaseEmbedded, err)
	}

	records := make([]models.IndexRecord, len(segments))
	for i, segment := range segments {
		records[i] = models.IndexRecord{
			ID:      uuid.New().String(),
			Vector:  vectors[i],
			Segment: segment,
		}
	}

	if err := p.index.Upsert(ctx, collection, records); err != nil {
		return nil, p.fail(doc, phaseEmbedded, err)
	}

	result := &Result{
		DocumentID: doc.ID,
		Filename:   doc.OriginalFilename,
		Segments:   len(records),
		Collection: collection.Name,
		Duration:   time.Since(start),
	}

	p.logger.Info().
		Str("document_id", doc.ID).
		Int("segments", result.Segments).
		Str("collection", result.Collection).
		Dur("duration", result.Duration).
		Str("phase", phaseIndexed).
		Msg("Ingestion completed")

	return result, nil
}

func (p *Pipeline) fail(doc *models.Document, lastPhase string, err error) error {
	p.logger.Warn().Err(err).
		Str("document_id", doc.ID).
		Str("last_phase", lastPhase).
		Str("phase", phaseFailed).
		Msg("Ingestion failed")
	return err
}
