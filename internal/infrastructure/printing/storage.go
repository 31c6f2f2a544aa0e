package printing

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DocumentStore keeps printed label PDFs
type DocumentStore interface {
	// Store saves a PDF and returns where it can be fetched
	Store(ctx context.Context, req *StoreRequest) (*StoreResult, error)
	// Get opens a stored PDF by its path
	Get(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes a stored PDF; deleting a missing PDF is not an error
	Delete(ctx context.Context, path string) error
	// GetURL returns the accessible URL for a stored PDF
	GetURL(path string) string
}

// StoreRequest contains the parameters for storing a PDF
type StoreRequest struct {
	// Key names the document, usually the label job id
	Key string
	// PrintedAt decides the year/month partition; zero means now
	PrintedAt time.Time
	PDFData   []byte
}

// StoreResult contains the result of storing a PDF
type StoreResult struct {
	// Path is relative to the store root
	Path string
	URL  string
	Size int64
}

// Validate checks the request before anything is written
func (r *StoreRequest) Validate() error {
	if r == nil {
		return NewRenderError(ErrCodeStorageFailed, "store request is nil", nil)
	}
	if r.Key == "" || strings.ContainsAny(r.Key, `/\`) || r.Key == "." || r.Key == ".." {
		return NewRenderError(ErrCodeStorageFailed, "invalid document key: "+r.Key, nil)
	}
	if len(r.PDFData) == 0 {
		return NewRenderError(ErrCodeStorageFailed, "PDF data is empty", nil)
	}
	return nil
}

// ObjectPath returns {year}/{month}/{key}.pdf, the layout shared by all stores
func (r *StoreRequest) ObjectPath() string {
	at := r.PrintedAt
	if at.IsZero() {
		at = time.Now()
	}
	return fmt.Sprintf("%04d/%02d/%s.pdf", at.Year(), at.Month(), r.Key)
}

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory. Default: /data/labels
	BasePath string
	// BaseURL prefixes returned URLs. Default: /labels
	BaseURL string
	Logger  *zap.Logger
}

// FileSystemStorage stores label PDFs under a local directory
type FileSystemStorage struct {
	basePath string
	baseURL  string
	logger   *zap.Logger
}

// NewFileSystemStorage creates the base directory if needed
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	s := &FileSystemStorage{
		basePath: valueOr(config.BasePath, "/data/labels"),
		baseURL:  strings.TrimSuffix(valueOr(config.BaseURL, "/labels"), "/"),
		logger:   config.Logger,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			"failed to create storage directory: "+s.basePath, err)
	}
	return s, nil
}

// Store writes {base}/{year}/{month}/{key}.pdf
func (s *FileSystemStorage) Store(ctx context.Context, req *StoreRequest) (*StoreResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	relPath := req.ObjectPath()
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to create directory", err)
	}
	if err := os.WriteFile(fullPath, req.PDFData, 0o644); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to write PDF file", err)
	}

	url := s.GetURL(relPath)
	s.logger.Info("label PDF stored",
		zap.String("path", fullPath),
		zap.Int("size", len(req.PDFData)),
		zap.String("url", url))

	return &StoreResult{Path: relPath, URL: url, Size: int64(len(req.PDFData))}, nil
}

// Get opens a stored PDF by its relative path
func (s *FileSystemStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewRenderError(ErrCodeStorageFailed, "PDF not found", err)
		}
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to open PDF file", err)
	}
	return file, nil
}

// Delete removes a stored PDF
func (s *FileSystemStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return NewRenderError(ErrCodeStorageFailed, "operation cancelled", err)
	}
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return NewRenderError(ErrCodeStorageFailed, "failed to delete PDF file", err)
	}
	s.logger.Info("label PDF deleted", zap.String("path", path))
	return nil
}

// CleanupOlderThan removes PDFs whose modification time is older than age
func (s *FileSystemStorage) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := filepath.WalkDir(s.basePath, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || filepath.Ext(path) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		if os.Remove(path) == nil {
			deleted++
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("label PDF cleanup completed", zap.Int("deleted", deleted), zap.Duration("age", age))
	return deleted, nil
}

// GetURL returns the accessible URL for a stored PDF
func (s *FileSystemStorage) GetURL(path string) string {
	return s.baseURL + "/" + filepath.ToSlash(filepath.Clean(path))
}

// resolve maps a relative path to a file under basePath, rejecting
// absolute paths and any ".." component.
func (s *FileSystemStorage) resolve(path string) (string, error) {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
	if filepath.IsAbs(path) || slices.Contains(parts, "..") {
		s.logger.Warn("blocked path outside storage root", zap.String("path", path))
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(filepath.Join(s.basePath, filepath.Clean(path)))
	if err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", NewRenderError(ErrCodeStorageFailed, "invalid path", nil)
	}
	return absPath, nil
}

var _ DocumentStore = (*FileSystemStorage)(nil)
