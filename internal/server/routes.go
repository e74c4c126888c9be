package server

import (
	"net/http"

	"github.com/ternarybob/quaestor/internal/handlers"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Documents
	mux.HandleFunc("/api/ingest", s.app.IngestHandler.IngestHandler) // POST - upload and index a PDF
	mux.HandleFunc("/api/query", s.app.QueryHandler.QueryHandler)    // GET - retrieval-grounded answer

	// API routes - System
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)

	// Everything else is 404
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "Not found")
	})

	return mux
}
