package generations

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrQuotaExceeded      = errors.New("daily generation limit reached")
	ErrUpstreamGeneration = errors.New("image generation failed")
	ErrStorage            = errors.New("artifact storage failed")
	ErrOrchestration      = errors.New("generation record write failed")
)
