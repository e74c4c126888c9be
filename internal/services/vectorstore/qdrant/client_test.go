package qdrant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := &common.QdrantConfig{
		URL:     server.URL,
		Timeout: "5s",
	}
	return NewClient(config, arbor.NewLogger())
}

func collectionInfoHandler(t *testing.T, size int, distance string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"result":{"config":{"params":{"vectors":{"size":%d,"distance":%q}}}},"status":"ok"}`,
			size, distance)
	}
}

func TestEnsureCollection(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/collections/docs", r.URL.Path)
		collectionInfoHandler(t, 768, "Cosine")(w, r)
	}))

	collection, err := client.EnsureCollection(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, "docs", collection.Name)
	assert.Equal(t, 768, collection.Dimension)
	assert.Equal(t, "Cosine", collection.Distance)

	// Idempotent: a second call succeeds and writes nothing
	_, err = client.EnsureCollection(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestEnsureCollection_NotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.EnsureCollection(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, models.ErrKindCollectionNotFound, models.KindOf(err))
}

func TestEnsureCollection_APIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		collectionInfoHandler(t, 4, "Cosine")(w, r)
	}))
	defer server.Close()

	client := NewClient(&common.QdrantConfig{URL: server.URL, APIKey: "secret"}, arbor.NewLogger())
	_, err := client.EnsureCollection(context.Background(), "docs")
	require.NoError(t, err)
}

func testRecords(dimension int) []models.IndexRecord {
	records := make([]models.IndexRecord, 2)
	for i := range records {
		vector := make([]float32, dimension)
		vector[0] = float32(i + 1)
		records[i] = models.IndexRecord{
			ID:     fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i+1),
			Vector: vector,
			Segment: models.Segment{
				Text:       fmt.Sprintf("segment %d", i+1),
				DocumentID: "doc-1",
				Source:     "report.pdf",
				PageNumber: i + 1,
			},
		}
	}
	return records
}

func TestUpsert(t *testing.T) {
	var got upsertRequest
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/docs/points", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("wait"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"status":"ok"}`)
	}))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	err := client.Upsert(context.Background(), collection, testRecords(4))
	require.NoError(t, err)

	require.Len(t, got.Points, 2)
	assert.Equal(t, "segment 1", got.Points[0].Payload.Text)
	assert.Equal(t, 1, got.Points[0].Payload.PageNumber)
	assert.Less(t, got.Points[0].Payload.Sequence, got.Points[1].Payload.Sequence,
		"sequence numbers follow insertion order")
}

func TestUpsert_MalformedBatchWritesNothing(t *testing.T) {
	var requests int
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"status":"ok"}`)
	}))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}

	// One good record, one with the wrong dimensionality
	records := testRecords(4)
	records[1].Vector = []float32{1, 2}
	err := client.Upsert(context.Background(), collection, records)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindUpsert, models.KindOf(err))

	// Empty text is also rejected up front
	records = testRecords(4)
	records[0].Segment.Text = "   "
	err = client.Upsert(context.Background(), collection, records)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindUpsert, models.KindOf(err))

	assert.Zero(t, requests, "no HTTP call for a malformed batch")
}

func TestUpsert_ServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage failure", http.StatusInternalServerError)
	}))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	err := client.Upsert(context.Background(), collection, testRecords(4))
	require.Error(t, err)
	assert.Equal(t, models.ErrKindUpsert, models.KindOf(err))
}

func searchResultHandler(t *testing.T, hits ...map[string]any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.WithPayload)

		response := map[string]any{"result": hits, "status": "ok"}
		require.NoError(t, json.NewEncoder(w).Encode(response))
	}
}

func hit(id string, score float64, text string, sequence int64) map[string]any {
	return map[string]any{
		"id":    id,
		"score": score,
		"payload": map[string]any{
			"text":     text,
			"sequence": sequence,
		},
	}
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, searchResultHandler(t,
		hit("a", 0.92, "first", 10),
		hit("b", 0.75, "second", 11),
	))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	result, err := client.Search(context.Background(), collection, []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "a", result.Records[0].Record.ID)
	assert.Equal(t, 0.92, result.Records[0].Score)
	assert.Equal(t, "first", result.Records[0].Record.Segment.Text)
}

func TestSearch_TieBreakByInsertionOrder(t *testing.T) {
	// Equal scores: the earlier-inserted record (lower sequence) wins
	client := newTestClient(t, searchResultHandler(t,
		hit("later", 0.8, "inserted second", 20),
		hit("earlier", 0.8, "inserted first", 19),
	))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	result, err := client.Search(context.Background(), collection, []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)

	require.Len(t, result.Records, 2)
	assert.Equal(t, "earlier", result.Records[0].Record.ID)
	assert.Equal(t, "later", result.Records[1].Record.ID)
}

func TestSearch_InvalidK(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP call expected")
	}))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	_, err := client.Search(context.Background(), collection, []float32{1, 0, 0, 0}, 0)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindSearch, models.KindOf(err))
}

func TestSearch_VanishedCollection(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	collection := &interfaces.Collection{Name: "docs", Dimension: 4}
	_, err := client.Search(context.Background(), collection, []float32{1, 0, 0, 0}, 2)
	require.Error(t, err)
	assert.Equal(t, models.ErrKindSearch, models.KindOf(err))
}

func TestCreateAndDeleteCollection(t *testing.T) {
	var created, deleted bool
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			created = true
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			vectors := body["vectors"].(map[string]any)
			assert.Equal(t, float64(768), vectors["size"])
			assert.Equal(t, "Cosine", vectors["distance"])
		case http.MethodDelete:
			deleted = true
		}
		fmt.Fprint(w, `{"status":"ok"}`)
	}))

	require.NoError(t, client.CreateCollection(context.Background(), "docs", 768))
	require.NoError(t, client.DeleteCollection(context.Background(), "docs"))
	assert.True(t, created)
	assert.True(t, deleted)
}

func TestOrderHits(t *testing.T) {
	ordered := orderHits([]scoredHit{
		{record: models.ScoredRecord{Record: models.IndexRecord{ID: "c"}, Score: 0.5}, sequence: 3},
		{record: models.ScoredRecord{Record: models.IndexRecord{ID: "a"}, Score: 0.9}, sequence: 2},
		{record: models.ScoredRecord{Record: models.IndexRecord{ID: "b"}, Score: 0.9}, sequence: 1},
	})

	require.Len(t, ordered, 3)
	assert.Equal(t, "b", ordered[0].Record.ID, "equal scores order by sequence")
	assert.Equal(t, "a", ordered[1].Record.ID)
	assert.Equal(t, "c", ordered[2].Record.ID)
}
