package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pixology-backend/internal/shared/storage/object"
)

// Store implements ObjectStore using the local filesystem. Objects are served
// back through the artifacts route, so the public URL points at this API.
type Store struct {
	baseDir       string
	publicBaseURL string
}

// New creates a local object store rooted at baseDir. publicBaseURL is the
// externally reachable base of this API, without a trailing slash.
func New(baseDir, publicBaseURL string) *Store {
	return &Store{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Put writes the body to disk under the given key and returns its public URL.
// Object metadata has no filesystem representation and is not persisted.
func (s *Store) Put(ctx context.Context, in object.PutInput) (object.PutResult, error) {
	if err := ctx.Err(); err != nil {
		return object.PutResult{}, err
	}

	clean, err := cleanKey(in.Key)
	if err != nil {
		return object.PutResult{}, err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return object.PutResult{}, fmt.Errorf("mkdir: %w", err)
	}

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return object.PutResult{}, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, in.Body)
	if err != nil {
		return object.PutResult{}, fmt.Errorf("write body: %w", err)
	}

	return object.PutResult{
		URL:       s.publicBaseURL + "/api/v1/artifacts/" + clean,
		SizeBytes: written,
	}, nil
}

// Open opens a stored object for reading.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	clean, err := cleanKey(storageKey)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func cleanKey(key string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean(strings.TrimLeft(key, "/")))
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid storage key")
	}
	return clean, nil
}

var _ object.ObjectStore = (*Store)(nil)
