package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/quaestor/internal/models"
)

// RequireMethod validates that the HTTP request uses the specified method.
// Returns true if the method matches, false otherwise (and writes error response).
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a standard success JSON response.
func WriteSuccess(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": message,
	})
}

// WriteError writes a standard error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// StatusForError maps a pipeline failure to an HTTP status code. Unclassified
// errors fall through to 500.
func StatusForError(err error) int {
	switch models.KindOf(err) {
	case models.ErrKindLoad:
		return http.StatusBadRequest
	case models.ErrKindEmbedding, models.ErrKindGeneration,
		models.ErrKindUpsert, models.ErrKindSearch:
		return http.StatusBadGateway
	case models.ErrKindCollectionNotFound, models.ErrKindRetrieval:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// WritePipelineError writes an error response with a status derived from the
// error's kind, exposing the kind so clients can react programmatically.
func WritePipelineError(w http.ResponseWriter, err error) error {
	return WriteJSON(w, StatusForError(err), map[string]string{
		"status": "error",
		"kind":   string(models.KindOf(err)),
		"error":  err.Error(),
	})
}
