// -----------------------------------------------------------------------
// API Handler - Health and version endpoints
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
)

const healthCheckTimeout = 10 * time.Second

// APIHandler serves system-level endpoints
type APIHandler struct {
	generator  interfaces.GenerationService
	index      interfaces.VectorIndex
	collection string
	logger     arbor.ILogger
}

// NewAPIHandler creates an API handler
func NewAPIHandler(generator interfaces.GenerationService, index interfaces.VectorIndex, collection string, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		generator:  generator,
		index:      index,
		collection: collection,
		logger:     logger,
	}
}

// HealthHandler handles GET /api/health. It probes the generation provider
// and the vector index; degraded dependencies turn the response 503.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	components := map[string]string{
		"llm":          "ok",
		"vector_index": "ok",
	}
	healthy := true

	if err := h.generator.HealthCheck(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("LLM health check failed")
		components["llm"] = err.Error()
		healthy = false
	}

	if _, err := h.index.EnsureCollection(ctx, h.collection); err != nil {
		h.logger.Warn().Err(err).Str("collection", h.collection).Msg("Vector index health check failed")
		components["vector_index"] = err.Error()
		healthy = false
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	WriteJSON(w, statusCode, map[string]interface{}{
		"status":     status,
		"components": components,
		"version":    common.GetVersion(),
	})
}

// VersionHandler handles GET /api/version
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.Build,
		"commit":  common.GitCommit,
	})
}
