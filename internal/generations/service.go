package generations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pixology-backend/internal/artifacts"
	"pixology-backend/internal/imagegen"
	"pixology-backend/internal/shared/metrics"
	"pixology-backend/internal/shared/telemetry"
)

// QuotaGate decides whether a user may start another generation today.
type QuotaGate interface {
	HasReachedDailyLimit(ctx context.Context, userID string) bool
}

// ArtifactStore persists generated image bytes and returns a public reference.
type ArtifactStore interface {
	Put(ctx context.Context, p artifacts.Payload, userID, suggestedName string, meta artifacts.Metadata) (artifacts.Ref, error)
}

// Service orchestrates one generation attempt: quota gate, prompt
// composition, the upstream model call, artifact persistence and the
// provenance record. It is the sole entry point used by the transport layer.
type Service struct {
	Repo      Repo
	Quota     QuotaGate
	Client    imagegen.Client
	Artifacts ArtifactStore

	DefaultWidth  int
	DefaultHeight int
}

// Result is the caller-facing outcome of a successful attempt.
type Result struct {
	ID          string           `json:"id"`
	ArtifactURL string           `json:"artifactUrl"`
	Prompt      string           `json:"prompt"`
	Style       *StyleParameters `json:"styleParameters,omitempty"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	SizeBytes   int64            `json:"sizeBytes"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// Generate runs one generation attempt for the user. Every attempt that gets
// past the quota gate leaves exactly one terminal record, completed or
// failed; a quota rejection never started an attempt and writes nothing.
// Failures surface as one of the package sentinel errors with upstream
// detail kept out of the caller's view.
//
// The quota check and the record write are not atomic: concurrent attempts
// from one user can each pass the gate before either record lands, letting
// the user overshoot the daily limit by a small margin. Accepted behavior.
func (s *Service) Generate(ctx context.Context, userID, prompt string, style *StyleParameters) (Result, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(prompt) == "" {
		return Result{}, errors.New("userID and prompt are required")
	}

	id := uuid.NewString()
	startedAt := time.Now().UTC()
	metrics.IncGenerationStarted()

	if s.Quota != nil && s.Quota.HasReachedDailyLimit(ctx, userID) {
		metrics.IncGenerationQuotaRejected()
		telemetry.Info("generation.status", map[string]any{
			"generation_id": id,
			"user_id":       userID,
			"status":        "quota_rejected",
		})
		return Result{}, ErrQuotaExceeded
	}

	attempt := Generation{
		ID:        id,
		UserID:    userID,
		Prompt:    prompt,
		Style:     style,
		CreatedAt: startedAt,
	}

	enhanced := ComposePrompt(prompt, style)

	img, err := s.Client.Generate(ctx, enhanced)
	if err != nil {
		s.failGeneration(attempt, fmt.Errorf("upstream generate: %w", err), startedAt)
		return Result{}, ErrUpstreamGeneration
	}

	ref, err := s.Artifacts.Put(ctx, artifacts.Payload{Data: img.Data, MimeType: img.MimeType}, userID, id+artifactExt(img.MimeType), artifacts.Metadata{
		UserID:     userID,
		Prompt:     prompt,
		UploadedAt: startedAt,
	})
	if err != nil {
		s.failGeneration(attempt, fmt.Errorf("store artifact: %w", err), startedAt)
		return Result{}, ErrStorage
	}

	width, height := s.effectiveDimensions(style)

	record := attempt
	record.Status = StatusCompleted
	record.ArtifactURL = ref.URL
	record.ArtifactSizeBytes = ref.SizeBytes
	record.MimeType = ref.MimeType
	record.Width = width
	record.Height = height

	if err := s.Repo.Create(ctx, record); err != nil {
		// The artifact is already stored; this leaves it orphaned with no
		// record. Known gap in the current design, surfaced as a distinct
		// error rather than papered over.
		metrics.IncGenerationFailed()
		telemetry.Error("generation.record_write_failed", map[string]any{
			"generation_id": id,
			"user_id":       userID,
			"artifact_url":  ref.URL,
			"error":         err.Error(),
		})
		return Result{}, ErrOrchestration
	}

	metrics.IncGenerationCompleted()
	metrics.ObserveGenerationDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("generation.status", map[string]any{
		"generation_id": id,
		"user_id":       userID,
		"status":        StatusCompleted,
		"artifact_url":  ref.URL,
		"size_bytes":    ref.SizeBytes,
		"duration_ms":   float64(time.Since(startedAt).Microseconds()) / 1000.0,
	})

	return Result{
		ID:          id,
		ArtifactURL: ref.URL,
		Prompt:      prompt,
		Style:       style,
		Width:       width,
		Height:      height,
		SizeBytes:   ref.SizeBytes,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Get returns one record scoped to its owner.
func (s *Service) Get(ctx context.Context, userID, generationID string) (Generation, error) {
	if generationID == "" {
		return Generation{}, errors.New("generationID is required")
	}
	gen, err := s.Repo.GetByID(ctx, generationID)
	if err != nil {
		return Generation{}, err
	}
	if gen.UserID != userID {
		return Generation{}, ErrNotFound
	}
	return gen, nil
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// failGeneration records a failed attempt. The write is best effort on a
// background context so a canceled request cannot suppress it; its own
// failure is logged and never replaces the primary error being reported.
func (s *Service) failGeneration(attempt Generation, cause error, startedAt time.Time) {
	summary := sanitizeError(cause)
	record := attempt
	record.Status = StatusFailed
	record.ErrorSummary = &summary

	if err := s.Repo.Create(context.Background(), record); err != nil {
		telemetry.Error("generation.failure_record_write_failed", map[string]any{
			"generation_id": attempt.ID,
			"user_id":       attempt.UserID,
			"error":         err.Error(),
			"cause":         summary,
		})
	}

	metrics.IncGenerationFailed()
	metrics.ObserveGenerationDurationMs(float64(time.Since(startedAt).Microseconds()) / 1000.0)
	telemetry.Info("generation.status", map[string]any{
		"generation_id": attempt.ID,
		"user_id":       attempt.UserID,
		"status":        StatusFailed,
		"error":         summary,
	})
}

func (s *Service) effectiveDimensions(style *StyleParameters) (int, int) {
	width := s.DefaultWidth
	height := s.DefaultHeight
	if width <= 0 {
		width = 1024
	}
	if height <= 0 {
		height = 1024
	}
	if style != nil {
		if style.Width > 0 {
			width = style.Width
		}
		if style.Height > 0 {
			height = style.Height
		}
	}
	return width, height
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		cut := maxLen
		// Back up so the cap never splits a multi-byte rune.
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}

func artifactExt(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	default:
		return ".png"
	}
}
