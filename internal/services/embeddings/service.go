// -----------------------------------------------------------------------
// Embedding Service - Segment and query embedding over the LLM provider
// -----------------------------------------------------------------------

package embeddings

import (
	"context"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// defaultTitleHint is attached to document embeddings when the source
// filename is unavailable.
const defaultTitleHint = "Uploaded Document"

// Backend is the narrow embedding surface the service needs from the LLM
// provider layer. Document and query embedding must resolve to the same
// model and dimensionality.
type Backend interface {
	EmbedDocuments(ctx context.Context, texts []string, title string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	EmbedDimension() int
}

// Service implements the EmbeddingService interface
type Service struct {
	backend Backend
	logger  arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.EmbeddingService = (*Service)(nil)

// NewService creates a new embedding service
func NewService(backend Backend, logger arbor.ILogger) *Service {
	return &Service{
		backend: backend,
		logger:  logger,
	}
}

// EmbedSegments embeds segments for indexing in one order-preserving batch.
// The source filename of the first segment is used as the document title
// hint for retrieval-document task framing.
func (s *Service) EmbedSegments(ctx context.Context, segments []models.Segment) ([][]float32, error) {
	if len(segments) == 0 {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "no segments to embed", nil)
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}

	title := defaultTitleHint
	if segments[0].Source != "" {
		title = segments[0].Source
	}

	start := time.Now()
	vectors, err := s.backend.EmbedDocuments(ctx, texts, title)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("segments", len(segments)).
		Int("dimension", s.backend.EmbedDimension()).
		Dur("duration", time.Since(start)).
		Msg("Embedded document segments")

	return vectors, nil
}

// EmbedQuery embeds a search query with query task framing.
func (s *Service) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, models.NewPipelineError(models.ErrKindEmbedding, "query is empty", nil)
	}

	return s.backend.EmbedQuery(ctx, query)
}

// Dimension returns the configured embedding dimensionality.
func (s *Service) Dimension() int {
	return s.backend.EmbedDimension()
}
