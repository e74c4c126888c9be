package common

import (
	"github.com/google/uuid"
)

// NewUploadID generates a collision-free identifier for an uploaded document.
// Concurrent uploads each get their own ID so stored files never overwrite
// each other.
func NewUploadID() string {
	return uuid.New().String()
}
