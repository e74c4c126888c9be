package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// mockEmbedder implements interfaces.EmbeddingService
type mockEmbedder struct {
	embedQueryFunc func(ctx context.Context, query string) ([]float32, error)
}

func (m *mockEmbedder) EmbedSegments(ctx context.Context, segments []models.Segment) ([][]float32, error) {
	return nil, nil
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.embedQueryFunc != nil {
		return m.embedQueryFunc(ctx, query)
	}
	return []float32{1, 0}, nil
}

func (m *mockEmbedder) Dimension() int { return 2 }

// mockIndex implements interfaces.VectorIndex
type mockIndex struct {
	ensureFunc func(ctx context.Context, name string) (*interfaces.Collection, error)
	searchFunc func(ctx context.Context, collection *interfaces.Collection, queryVector []float32, k int) (*models.RetrievalResult, error)
	gotK       int
}

func (m *mockIndex) EnsureCollection(ctx context.Context, name string) (*interfaces.Collection, error) {
	if m.ensureFunc != nil {
		return m.ensureFunc(ctx, name)
	}
	return &interfaces.Collection{Name: name, Dimension: 2, Distance: "Cosine"}, nil
}

func (m *mockIndex) Upsert(ctx context.Context, collection *interfaces.Collection, records []models.IndexRecord) error {
	return nil
}

func (m *mockIndex) Search(ctx context.Context, collection *interfaces.Collection, queryVector []float32, k int) (*models.RetrievalResult, error) {
	m.gotK = k
	if m.searchFunc != nil {
		return m.searchFunc(ctx, collection, queryVector, k)
	}
	return &models.RetrievalResult{
		Records: []models.ScoredRecord{
			{Record: models.IndexRecord{ID: "a", Segment: models.Segment{Text: "first"}}, Score: 0.9},
			{Record: models.IndexRecord{ID: "b", Segment: models.Segment{Text: "second"}}, Score: 0.7},
		},
	}, nil
}

func newTestPipeline(embedder *mockEmbedder, index *mockIndex) *Pipeline {
	return NewPipeline(embedder, index, "docs", 2, arbor.NewLogger())
}

func TestRetrieve(t *testing.T) {
	index := &mockIndex{}
	pipeline := newTestPipeline(&mockEmbedder{}, index)

	result, err := pipeline.Retrieve(context.Background(), "what is on page two", 0)
	require.NoError(t, err)

	assert.Equal(t, "what is on page two", result.Query)
	assert.Equal(t, 2, index.gotK, "non-positive k falls back to the default")
	require.Len(t, result.Records, 2)
	assert.Equal(t, "first", result.Records[0].Record.Segment.Text)
	assert.GreaterOrEqual(t, result.Records[0].Score, result.Records[1].Score)
}

func TestRetrieve_ExplicitK(t *testing.T) {
	index := &mockIndex{}
	pipeline := newTestPipeline(&mockEmbedder{}, index)

	_, err := pipeline.Retrieve(context.Background(), "query", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, index.gotK)
}

func TestRetrieve_EmptyQuery(t *testing.T) {
	pipeline := newTestPipeline(&mockEmbedder{}, &mockIndex{})

	_, err := pipeline.Retrieve(context.Background(), "   ", 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindRetrieval, models.KindOf(err))
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	embedder := &mockEmbedder{
		embedQueryFunc: func(ctx context.Context, query string) ([]float32, error) {
			return nil, models.NewPipelineError(models.ErrKindEmbedding, "quota exhausted", nil)
		},
	}
	pipeline := newTestPipeline(embedder, &mockIndex{})

	_, err := pipeline.Retrieve(context.Background(), "query", 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindEmbedding, models.KindOf(err))
}

func TestRetrieve_MissingCollection(t *testing.T) {
	index := &mockIndex{
		ensureFunc: func(ctx context.Context, name string) (*interfaces.Collection, error) {
			return nil, models.NewPipelineError(models.ErrKindCollectionNotFound,
				"collection docs does not exist", nil)
		},
	}
	pipeline := newTestPipeline(&mockEmbedder{}, index)

	_, err := pipeline.Retrieve(context.Background(), "query", 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindRetrieval, models.KindOf(err),
		"a missing collection surfaces as a retrieval failure")
	assert.True(t, models.IsKind(err, models.ErrKindRetrieval))
}

func TestRetrieve_SearchFailure(t *testing.T) {
	index := &mockIndex{
		searchFunc: func(ctx context.Context, collection *interfaces.Collection, queryVector []float32, k int) (*models.RetrievalResult, error) {
			return nil, models.NewPipelineError(models.ErrKindSearch, "search returned status 500", nil)
		},
	}
	pipeline := newTestPipeline(&mockEmbedder{}, index)

	_, err := pipeline.Retrieve(context.Background(), "query", 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindSearch, models.KindOf(err))
}

func TestRetrieve_EmptyIndex(t *testing.T) {
	index := &mockIndex{
		searchFunc: func(ctx context.Context, collection *interfaces.Collection, queryVector []float32, k int) (*models.RetrievalResult, error) {
			return &models.RetrievalResult{}, nil
		},
	}
	pipeline := newTestPipeline(&mockEmbedder{}, index)

	result, err := pipeline.Retrieve(context.Background(), "query", 2)
	require.NoError(t, err)
	assert.Empty(t, result.Records, "an empty index is not an error")
}
