// -----------------------------------------------------------------------
// Upload Store - Transient disk storage for uploaded documents
// -----------------------------------------------------------------------

package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaestor/internal/common"
	"github.com/ternarybob/quaestor/internal/interfaces"
	"github.com/ternarybob/quaestor/internal/models"
)

// Store writes uploads to a local directory under collision-free names.
// Files are transient: the ingestion pipeline removes them when done, and
// the janitor sweeps anything left behind.
type Store struct {
	dir         string
	maxFileSize int64
	logger      arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.UploadStore = (*Store)(nil)

// NewStore creates an upload store rooted at dir, creating the directory
// if needed.
func NewStore(dir string, maxFileSize int64, logger arbor.ILogger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory %s: %w", dir, err)
	}

	return &Store{
		dir:         dir,
		maxFileSize: maxFileSize,
		logger:      logger,
	}, nil
}

// Save writes the upload under a unique generated name. The stored name is
// "<uuid>-<original filename>" so concurrent uploads never collide.
func (s *Store) Save(originalFilename string, content io.Reader) (*models.Document, error) {
	id := common.NewUploadID()
	storedName := fmt.Sprintf("%s-%s", id, filepath.Base(originalFilename))
	storagePath := filepath.Join(s.dir, storedName)

	f, err := os.Create(storagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	reader := content
	if s.maxFileSize > 0 {
		reader = io.LimitReader(content, s.maxFileSize+1)
	}

	size, err := io.Copy(f, reader)
	if err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("failed to write upload file: %w", err)
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		os.Remove(storagePath)
		return nil, fmt.Errorf("upload exceeds maximum file size of %d bytes", s.maxFileSize)
	}

	doc := &models.Document{
		ID:               id,
		OriginalFilename: originalFilename,
		StoragePath:      storagePath,
		Size:             size,
		UploadedAt:       time.Now(),
	}

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Str("filename", originalFilename).
		Int64("size", size).
		Msg("Upload saved to transient storage")

	return doc, nil
}

// Remove deletes the stored file. Missing files are not an error so cleanup
// can run unconditionally on every exit path.
func (s *Store) Remove(doc *models.Document) error {
	if doc == nil || doc.StoragePath == "" {
		return nil
	}

	if err := os.Remove(doc.StoragePath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove upload file %s: %w", doc.StoragePath, err)
	}

	s.logger.Debug().
		Str("doc_id", doc.ID).
		Msg("Transient upload removed")

	return nil
}

// Sweep deletes stored files older than maxAge. Leftovers only exist when a
// request died before its cleanup ran.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("Failed to sweep stale upload")
			continue
		}
		removed++
	}

	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("Swept stale uploads")
	}

	return removed, nil
}
