// -----------------------------------------------------------------------
// Document Loader Interface - Split uploaded documents into text segments
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/quaestor/internal/models"
)

// DocumentLoader turns an uploaded file into an ordered sequence of text
// segments with positional metadata.
//
// The returned slice is complete or the call fails wholesale: implementations
// must never surface an error after segments have already been handed to the
// caller, so ingestion stays all-or-nothing at the source level. Unreadable,
// empty, or unsupported input fails with a load_error kind.
type DocumentLoader interface {
	// Load extracts segments from the document stored at doc.StoragePath,
	// in document order.
	Load(ctx context.Context, doc *models.Document) ([]models.Segment, error)
}
