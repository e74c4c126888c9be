package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure so callers can distinguish
// failure modes without parsing messages.
type ErrorKind string

const (
	// ErrKindLoad indicates the uploaded document was unreadable, empty,
	// or not a supported format.
	ErrKindLoad ErrorKind = "load_error"
	// ErrKindEmbedding indicates the embedding provider failed or rejected input.
	ErrKindEmbedding ErrorKind = "embedding_error"
	// ErrKindCollectionNotFound indicates the configured collection does not
	// exist in the vector index. Collections are never created implicitly.
	ErrKindCollectionNotFound ErrorKind = "collection_not_found"
	// ErrKindUpsert indicates a batch write to the vector index failed.
	// No records from the batch were written.
	ErrKindUpsert ErrorKind = "upsert_error"
	// ErrKindSearch indicates a similarity search against the vector index failed.
	ErrKindSearch ErrorKind = "search_error"
	// ErrKindRetrieval indicates the retrieval pipeline failed end-to-end,
	// including queries against a collection that was never provisioned.
	ErrKindRetrieval ErrorKind = "retrieval_error"
	// ErrKindGeneration indicates the generative model call failed.
	ErrKindGeneration ErrorKind = "generation_error"
)

// PipelineError is the structured failure returned across pipeline boundaries.
// Every external-call failure is classified into one of the kinds above before
// it reaches a handler.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError wraps err with a kind and human-readable message.
// err may be nil when the failure originates locally.
func NewPipelineError(kind ErrorKind, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the error kind carried by err, or empty string if err is not
// a PipelineError. Wrapped chains are searched.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

// IsKind reports whether err carries the given pipeline error kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}
