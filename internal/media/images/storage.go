// Package images provides managed storage for catalog image assets.
//
// The uploads tree is partitioned by entity kind and bar:
// {uploads}/{kind}/{barID}/{slug}_{suffix}.{ext}. Target names carry a
// random suffix so re-running an import never silently overwrites an
// asset a previous run relocated for the same owner.
package images

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/barkeepapp/barkeep-server/internal/id"
)

// ErrSourceMissing is returned when the file to relocate does not exist.
// Callers treat it as a skip: a missing asset never aborts an otherwise
// valid record.
var ErrSourceMissing = errors.New("source image does not exist")

// suffixLength is the random filename suffix appended to relocated assets.
const suffixLength = 6

// Storage manages image filesystem operations under one uploads root.
// Thread-safe for concurrent operations.
type Storage struct {
	basePath string
	mu       sync.Mutex // Protects file operations
}

// NewStorage creates a Storage over an uploads root directory,
// creating it if absent.
func NewStorage(basePath string) (*Storage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("uploads path cannot be empty")
	}

	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}

	return &Storage{basePath: basePath}, nil
}

// Relocate copies a source file into the bar's managed directory for the
// given entity kind, creating the kind/bar subdirectory on demand, and
// names the target after the owning entity's slug plus a random suffix.
// It returns the uploads-relative path and the file extension (without
// dot).
//
// A missing source returns ErrSourceMissing and relocates nothing.
func (s *Storage) Relocate(srcPath, kind, barID, slug string) (relPath, ext string, err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", "", ErrSourceMissing
		}
		return "", "", fmt.Errorf("open source image: %w", err)
	}
	defer src.Close()

	ext = strings.TrimPrefix(strings.ToLower(filepath.Ext(srcPath)), ".")

	suffix, err := id.Suffix(suffixLength)
	if err != nil {
		return "", "", err
	}

	name := fmt.Sprintf("%s_%s.%s", slug, suffix, ext)
	relPath = filepath.ToSlash(filepath.Join(kind, barID, name))

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.basePath, kind, barID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("create %s directory: %w", dir, err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", "", fmt.Errorf("create target image: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", fmt.Errorf("copy image: %w", err)
	}

	return relPath, ext, nil
}

// Path returns the absolute path for an uploads-relative path.
func (s *Storage) Path(rel string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(rel))
}

// Exists checks whether an uploads-relative file exists.
func (s *Storage) Exists(rel string) bool {
	info, err := os.Stat(s.Path(rel))
	return err == nil && !info.IsDir()
}
