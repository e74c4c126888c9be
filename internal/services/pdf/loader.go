// -----------------------------------------------------------------------
// PDF Loader Service - Split PDF documents into per-page text segments
// Uses pdfcpu for Go-native PDF processing
// -----------------------------------------------------------------------

package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Loader implements the DocumentLoader interface using pdfcpu. Each PDF page
// becomes one segment carrying its page number and source filename.
type Loader struct {
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.DocumentLoader = (*Loader)(nil)

// NewLoader creates a new PDF document loader
func NewLoader(logger arbor.ILogger) *Loader {
	return &Loader{logger: logger}
}

// Load extracts per-page segments from the PDF at doc.StoragePath. The call
// either returns the complete ordered segment list or fails wholesale with a
// load_error kind; no partial sequence is ever surfaced.
func (l *Loader) Load(ctx context.Context, doc *models.Document) ([]models.Segment, error) {
	if doc == nil || doc.StoragePath == "" {
		return nil, models.NewPipelineError(models.ErrKindLoad, "no document to load", nil)
	}

	if _, err := os.Stat(doc.StoragePath); err != nil {
		return nil, models.NewPipelineError(models.ErrKindLoad, "document is unreadable", err)
	}

	// ReadContextFile fails on corrupted or non-PDF payloads, which is the
	// format gate for this loader.
	pdfCtx, err := api.ReadContextFile(doc.StoragePath)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindLoad, "document is not a readable PDF", err)
	}

	pageCount := pdfCtx.PageCount
	if pageCount == 0 {
		return nil, models.NewPipelineError(models.ErrKindLoad, "document has no pages", nil)
	}

	if err := ctx.Err(); err != nil {
		return nil, models.NewPipelineError(models.ErrKindLoad, "load cancelled", err)
	}

	pageTexts, err := l.extractPageTexts(doc.StoragePath, pageCount)
	if err != nil {
		return nil, models.NewPipelineError(models.ErrKindLoad, "failed to extract text content", err)
	}

	segments := make([]models.Segment, 0, pageCount)
	for pageNum := 1; pageNum <= pageCount; pageNum++ {
		text := strings.TrimSpace(pageTexts[pageNum])
		if text == "" {
			continue
		}
		segments = append(segments, models.Segment{
			Text:       text,
			DocumentID: doc.ID,
			Source:     doc.OriginalFilename,
			PageNumber: pageNum,
		})
	}

	if len(segments) == 0 {
		return nil, models.NewPipelineError(models.ErrKindLoad, "document contains no extractable text", nil)
	}

	l.logger.Debug().
		Str("doc_id", doc.ID).
		Int("pages", pageCount).
		Int("segments", len(segments)).
		Msg("Loaded PDF document")

	return segments, nil
}

// extractPageTexts extracts decoded text per page via pdfcpu content
// extraction. Returns a map keyed by 1-based page number.
func (l *Loader) extractPageTexts(path string, pageCount int) (map[int]string, error) {
	outDir, err := os.MkdirTemp("", "quaestor-pdf-")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(outDir)

	conf := pdfmodel.NewDefaultConfiguration()
	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return nil, fmt.Errorf("failed to extract PDF content: %w", err)
	}

	pageTexts := make(map[int]string, pageCount)
	files, err := os.ReadDir(outDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		var pageNum int
		name := file.Name()
		if _, err := fmt.Sscanf(name, "Content_page_%d", &pageNum); err != nil {
			if _, err := fmt.Sscanf(name, "page_%d", &pageNum); err != nil {
				continue
			}
		}
		content, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read extracted page %d: %w", pageNum, err)
		}
		pageTexts[pageNum] = decodeContentText(content)
	}

	return pageTexts, nil
}
