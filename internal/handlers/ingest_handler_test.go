package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/ingest"
)

// mockUploadStore implements interfaces.UploadStore
type mockUploadStore struct {
	saveFunc func(originalFilename string, content io.Reader) (*models.Document, error)
	saved    []string
}

func (m *mockUploadStore) Save(originalFilename string, content io.Reader) (*models.Document, error) {
	m.saved = append(m.saved, originalFilename)
	if m.saveFunc != nil {
		return m.saveFunc(originalFilename, content)
	}
	return &models.Document{
		ID:               "doc-1",
		OriginalFilename: originalFilename,
		StoragePath:      "/tmp/doc-1-" + originalFilename,
	}, nil
}

func (m *mockUploadStore) Remove(doc *models.Document) error       { return nil }
func (m *mockUploadStore) Sweep(maxAge time.Duration) (int, error) { return 0, nil }

// mockIngestor implements Ingestor
type mockIngestor struct {
	ingestFunc func(ctx context.Context, doc *models.Document) (*ingest.Result, error)
	calls      int
}

func (m *mockIngestor) Ingest(ctx context.Context, doc *models.Document) (*ingest.Result, error) {
	m.calls++
	if m.ingestFunc != nil {
		return m.ingestFunc(ctx, doc)
	}
	return &ingest.Result{
		DocumentID: doc.ID,
		Filename:   doc.OriginalFilename,
		Segments:   3,
		Collection: "docs",
	}, nil
}

func multipartRequest(t *testing.T, fieldName, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func newIngestTestHandler(uploads *mockUploadStore, pipeline *mockIngestor) *IngestHandler {
	return NewIngestHandler(uploads, pipeline, 1024*1024, arbor.NewLogger())
}

func TestIngestHandler(t *testing.T) {
	uploads := &mockUploadStore{}
	pipeline := &mockIngestor{}
	handler := newIngestTestHandler(uploads, pipeline)

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "pdf", "report.pdf", []byte("%PDF-1.4 content")))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "uploaded", body["message"])
	assert.Equal(t, "doc-1", body["document_id"])
	assert.Equal(t, float64(3), body["segments"])
	assert.Equal(t, []string{"report.pdf"}, uploads.saved)
	assert.Equal(t, 1, pipeline.calls)
}

func TestIngestHandler_MissingField(t *testing.T) {
	pipeline := &mockIngestor{}
	handler := newIngestTestHandler(&mockUploadStore{}, pipeline)

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "file", "report.pdf", []byte("data")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, pipeline.calls)
}

func TestIngestHandler_NonPDFRejected(t *testing.T) {
	uploads := &mockUploadStore{}
	handler := newIngestTestHandler(uploads, &mockIngestor{})

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "pdf", "notes.txt", []byte("plain text")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, uploads.saved, "nothing stored for a rejected upload")
}

func TestIngestHandler_MethodNotAllowed(t *testing.T) {
	handler := newIngestTestHandler(&mockUploadStore{}, &mockIngestor{})

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, httptest.NewRequest(http.MethodGet, "/api/ingest", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestIngestHandler_LoadFailure(t *testing.T) {
	pipeline := &mockIngestor{
		ingestFunc: func(ctx context.Context, doc *models.Document) (*ingest.Result, error) {
			return nil, models.NewPipelineError(models.ErrKindLoad, "not a PDF", nil)
		},
	}
	handler := newIngestTestHandler(&mockUploadStore{}, pipeline)

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "pdf", "broken.pdf", []byte("not really a pdf")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, string(models.ErrKindLoad), body["kind"])
}

func TestIngestHandler_MissingCollection(t *testing.T) {
	pipeline := &mockIngestor{
		ingestFunc: func(ctx context.Context, doc *models.Document) (*ingest.Result, error) {
			return nil, models.NewPipelineError(models.ErrKindCollectionNotFound,
				"collection docs does not exist", nil)
		},
	}
	handler := newIngestTestHandler(&mockUploadStore{}, pipeline)

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "pdf", "report.pdf", []byte("%PDF-1.4")))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestIngestHandler_OversizedUpload(t *testing.T) {
	uploads := &mockUploadStore{}
	handler := NewIngestHandler(uploads, &mockIngestor{}, 64, arbor.NewLogger())

	rec := httptest.NewRecorder()
	handler.IngestHandler(rec, multipartRequest(t, "pdf", "big.pdf", bytes.Repeat([]byte("x"), 4096)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, uploads.saved)
}
