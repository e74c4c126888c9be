// -----------------------------------------------------------------------
// Query Handler - Retrieval-grounded question answering endpoint
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/models"
)

// Retriever fetches ranked context for a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (*models.RetrievalResult, error)
}

// Answerer generates a grounded answer from retrieved context
type Answerer interface {
	Answer(ctx context.Context, retrieved *models.RetrievalResult, model string) (*models.Answer, error)
}

// QueryHandler answers questions about previously ingested documents
type QueryHandler struct {
	retriever Retriever
	answerer  Answerer
	logger    arbor.ILogger
}

// NewQueryHandler creates a query handler
func NewQueryHandler(retriever Retriever, answerer Answerer, logger arbor.ILogger) *QueryHandler {
	return &QueryHandler{
		retriever: retriever,
		answerer:  answerer,
		logger:    logger,
	}
}

// querySource is one retrieved segment reference in the response
type querySource struct {
	Source     string  `json:"source"`
	PageNumber int     `json:"page_number"`
	Score      float64 `json:"score"`
}

// QueryHandler handles GET /api/query?message=...&k=...&model=...
func (h *QueryHandler) QueryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	message := strings.TrimSpace(r.URL.Query().Get("message"))
	if message == "" {
		WriteError(w, http.StatusBadRequest, "Missing 'message' query parameter")
		return
	}

	k := 0
	if kStr := r.URL.Query().Get("k"); kStr != "" {
		parsed, err := strconv.Atoi(kStr)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "Parameter 'k' must be a positive integer")
			return
		}
		k = parsed
	}
	model := r.URL.Query().Get("model")

	retrieved, err := h.retriever.Retrieve(r.Context(), message, k)
	if err != nil {
		WritePipelineError(w, err)
		return
	}

	answer, err := h.answerer.Answer(r.Context(), retrieved, model)
	if err != nil {
		WritePipelineError(w, err)
		return
	}

	sources := make([]querySource, len(answer.Context.Records))
	for i, scored := range answer.Context.Records {
		sources[i] = querySource{
			Source:     scored.Record.Segment.Source,
			PageNumber: scored.Record.Segment.PageNumber,
			Score:      scored.Score,
		}
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": answer.Text,
		"model":   answer.Model,
		"sources": sources,
	})
}
