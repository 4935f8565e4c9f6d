package object

import (
	"context"
	"io"
)

// PutInput describes one object upload.
type PutInput struct {
	Key         string
	ContentType string
	Metadata    map[string]string
	Body        io.Reader
}

// PutResult reports where the stored object is publicly reachable.
type PutResult struct {
	URL       string
	SizeBytes int64
}

// ObjectStore defines the contract for storing and retrieving binary objects.
// Stored objects are publicly readable at the returned URL.
type ObjectStore interface {
	Put(ctx context.Context, in PutInput) (PutResult, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
