package embeddings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/models"
)

// mockBackend implements Backend for testing
type mockBackend struct {
	embedDocumentsFunc func(ctx context.Context, texts []string, title string) ([][]float32, error)
	embedQueryFunc     func(ctx context.Context, text string) ([]float32, error)
	dimension          int
}

func (m *mockBackend) EmbedDocuments(ctx context.Context, texts []string, title string) ([][]float32, error) {
	if m.embedDocumentsFunc != nil {
		return m.embedDocumentsFunc(ctx, texts, title)
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1}
	}
	return vectors, nil
}

func (m *mockBackend) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.embedQueryFunc != nil {
		return m.embedQueryFunc(ctx, text)
	}
	return []float32{0.5, 0.5}, nil
}

func (m *mockBackend) EmbedDimension() int {
	if m.dimension > 0 {
		return m.dimension
	}
	return 2
}

func testSegments() []models.Segment {
	return []models.Segment{
		{Text: "First page text", Source: "report.pdf", PageNumber: 1},
		{Text: "Second page text", Source: "report.pdf", PageNumber: 2},
	}
}

func TestEmbedSegments_OrderPreserved(t *testing.T) {
	var gotTexts []string
	backend := &mockBackend{
		embedDocumentsFunc: func(ctx context.Context, texts []string, title string) ([][]float32, error) {
			gotTexts = texts
			return [][]float32{{1, 0}, {0, 1}}, nil
		},
	}
	service := NewService(backend, arbor.NewLogger())

	vectors, err := service.EmbedSegments(context.Background(), testSegments())
	require.NoError(t, err)

	assert.Equal(t, []string{"First page text", "Second page text"}, gotTexts)
	assert.Equal(t, [][]float32{{1, 0}, {0, 1}}, vectors)
}

func TestEmbedSegments_TitleHint(t *testing.T) {
	var gotTitle string
	backend := &mockBackend{
		embedDocumentsFunc: func(ctx context.Context, texts []string, title string) ([][]float32, error) {
			gotTitle = title
			return [][]float32{{1}}, nil
		},
	}
	service := NewService(backend, arbor.NewLogger())

	_, err := service.EmbedSegments(context.Background(), []models.Segment{
		{Text: "text", Source: "report.pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", gotTitle)

	_, err = service.EmbedSegments(context.Background(), []models.Segment{
		{Text: "text"},
	})
	require.NoError(t, err)
	assert.Equal(t, defaultTitleHint, gotTitle)
}

func TestEmbedSegments_Empty(t *testing.T) {
	service := NewService(&mockBackend{}, arbor.NewLogger())

	_, err := service.EmbedSegments(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindEmbedding, models.KindOf(err))
}

func TestEmbedSegments_BackendFailure(t *testing.T) {
	backendErr := models.NewPipelineError(models.ErrKindEmbedding, "quota exhausted", errors.New("429"))
	backend := &mockBackend{
		embedDocumentsFunc: func(ctx context.Context, texts []string, title string) ([][]float32, error) {
			return nil, backendErr
		},
	}
	service := NewService(backend, arbor.NewLogger())

	_, err := service.EmbedSegments(context.Background(), testSegments())
	require.Error(t, err)
	assert.Equal(t, models.ErrKindEmbedding, models.KindOf(err))
}

func TestEmbedQuery(t *testing.T) {
	service := NewService(&mockBackend{}, arbor.NewLogger())

	vector, err := service.EmbedQuery(context.Background(), "what is on page two")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vector)
}

func TestEmbedQuery_Blank(t *testing.T) {
	service := NewService(&mockBackend{}, arbor.NewLogger())

	_, err := service.EmbedQuery(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, models.ErrKindEmbedding, models.KindOf(err))
}

func TestDimension(t *testing.T) {
	service := NewService(&mockBackend{dimension: 768}, arbor.NewLogger())
	assert.Equal(t, 768, service.Dimension())
}
