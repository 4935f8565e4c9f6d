package imagegen

import (
	"context"
	"errors"
)

// Client abstracts generative image providers.
type Client interface {
	// Generate produces one image for the prompt. Implementations make
	// exactly one upstream call per invocation; retry policy belongs to
	// the caller.
	Generate(ctx context.Context, prompt string) (RawImage, error)
}

// RawImage is the provider-agnostic payload of a generation call.
type RawImage struct {
	Data     []byte
	MimeType string
}

// ErrNoImage indicates the provider answered without a usable image candidate.
var ErrNoImage = errors.New("no image in model response")

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("image provider not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Generate returns ErrNotConfigured.
func (PlaceholderClient) Generate(ctx context.Context, prompt string) (RawImage, error) {
	_ = ctx
	_ = prompt
	return RawImage{}, ErrNotConfigured
}
