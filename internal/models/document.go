package models

import "time"

// Document is an uploaded file awaiting ingestion. The stored file is
// transient: it is deleted once ingestion completes, success or failure.
type Document struct {
	ID               string    `json:"id"`
	OriginalFilename string    `json:"original_filename"`
	StoragePath      string    `json:"storage_path"`
	Size             int64     `json:"size"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// Segment is one addressable unit of text extracted from a document.
// Segments are produced once per ingestion and never mutated.
type Segment struct {
	Text       string `json:"text"`
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
}

// IndexRecord is the persisted unit inside the vector index: one segment's
// text plus its embedding and metadata. Immutable once written.
type IndexRecord struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Segment Segment   `json:"segment"`
}

// ScoredRecord is one search hit: a stored record with its similarity score.
type ScoredRecord struct {
	Record IndexRecord `json:"record"`
	Score  float64     `json:"score"`
}

// RetrievalResult is an ordered sequence of the top-k records most similar to
// a query, ranked by non-increasing similarity. Constructed per query, never
// persisted.
type RetrievalResult struct {
	Query   string         `json:"query"`
	Records []ScoredRecord `json:"records"`
}

// Answer is the generated response to a query, grounded on retrieved context.
type Answer struct {
	Text     string          `json:"text"`
	Model    string          `json:"model"`
	Context  RetrievalResult `json:"context"`
	Duration time.Duration   `json:"duration"`
}
