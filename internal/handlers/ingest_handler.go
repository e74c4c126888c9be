// -----------------------------------------------------------------------
// Ingest Handler - PDF upload and indexing endpoint
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
	"github.com/ternarybob/quaestor/internal/services/ingest"
)

// uploadFieldName is the multipart form field carrying the PDF
const uploadFieldName = "pdf"

// Ingestor runs the ingestion pipeline for a stored upload
type Ingestor interface {
	Ingest(ctx context.Context, doc *models.Document) (*ingest.Result, error)
}

// IngestHandler accepts PDF uploads and runs them through the ingestion
// pipeline synchronously: the response reports the final outcome.
type IngestHandler struct {
	uploads     interfaces.UploadStore
	pipeline    Ingestor
	maxFileSize int64
	logger      arbor.ILogger
}

// NewIngestHandler creates an ingest handler
func NewIngestHandler(uploads interfaces.UploadStore, pipeline Ingestor, maxFileSize int64, logger arbor.ILogger) *IngestHandler {
	return &IngestHandler{
		uploads:     uploads,
		pipeline:    pipeline,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// IngestHandler handles POST /api/ingest with a multipart "pdf" field
func (h *IngestHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile(uploadFieldName)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Missing 'pdf' file field")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		WriteError(w, http.StatusBadRequest, "Only PDF files are accepted")
		return
	}

	doc, err := h.uploads.Save(filename, file)
	if err != nil {
		h.logger.Warn().Err(err).Str("filename", filename).Msg("Failed to store upload")
		WriteError(w, http.StatusInternalServerError, "Failed to store upload")
		return
	}

	result, err := h.pipeline.Ingest(r.Context(), doc)
	if err != nil {
		WritePipelineError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "success",
		"message":     "uploaded",
		"document_id": result.DocumentID,
		"filename":    result.Filename,
		"segments":    result.Segments,
		"collection":  result.Collection,
	})
}
