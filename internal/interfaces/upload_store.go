// -----------------------------------------------------------------------
// Upload Store Interface - Transient storage for uploaded documents
// -----------------------------------------------------------------------

package interfaces

import (
	"io"
	"time"

	"github.com/ternarybob/quaestor/internal/models"
)

// UploadStore holds uploaded documents between receipt and ingestion.
// Storage is transient: every saved document must eventually be removed,
// and filenames are collision-free so concurrent uploads never overwrite
// each other.
type UploadStore interface {
	// Save writes the upload under a unique generated name and returns the
	// document handle.
	Save(originalFilename string, content io.Reader) (*models.Document, error)

	// Remove deletes the stored file. Removing an already-removed document
	// is not an error.
	Remove(doc *models.Document) error

	// Sweep deletes stored files older than maxAge and returns the number
	// removed. Used by the janitor for leftovers from crashed requests.
	Sweep(maxAge time.Duration) (int, error)
}
