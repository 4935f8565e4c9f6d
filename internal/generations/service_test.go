package generations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"pixology-backend/internal/artifacts"
	"pixology-backend/internal/imagegen"
	"pixology-backend/internal/quota"
	"pixology-backend/internal/shared/storage/object/local"
)

type stubImageClient struct {
	img   imagegen.RawImage
	err   error
	calls int
	last  string
}

func (s *stubImageClient) Generate(ctx context.Context, prompt string) (imagegen.RawImage, error) {
	_ = ctx
	s.calls++
	s.last = prompt
	if s.err != nil {
		return imagegen.RawImage{}, s.err
	}
	return s.img, nil
}

type failingArtifactStore struct {
	calls int
}

func (f *failingArtifactStore) Put(ctx context.Context, p artifacts.Payload, userID, suggestedName string, meta artifacts.Metadata) (artifacts.Ref, error) {
	_ = ctx
	_ = p
	_ = userID
	_ = suggestedName
	_ = meta
	f.calls++
	return artifacts.Ref{}, errors.New("bucket unavailable")
}

// writeBrokenRepo reads through the embedded MemoryRepo but fails every
// record write, simulating the document store being down.
type writeBrokenRepo struct {
	*MemoryRepo
	creates int
}

func (r *writeBrokenRepo) Create(ctx context.Context, gen Generation) error {
	_ = ctx
	_ = gen
	r.creates++
	return errors.New("document store unavailable")
}

func setupService(t *testing.T, client imagegen.Client, dailyLimit int) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	store := artifacts.NewStore(local.New(t.TempDir(), "http://localhost:8080"))
	svc := &Service{
		Repo:          repo,
		Quota:         quota.NewGate(repo, dailyLimit),
		Client:        client,
		Artifacts:     store,
		DefaultWidth:  1024,
		DefaultHeight: 1024,
	}
	return svc, repo
}

func seedCompletedToday(t *testing.T, repo *MemoryRepo, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := repo.Create(context.Background(), Generation{
			ID:        fmt.Sprintf("seed-%s-%d", userID, i),
			UserID:    userID,
			Prompt:    "seed",
			Status:    StatusCompleted,
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}
}

func TestGenerateSuccessWritesCompletedRecord(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{0x89, 0x50, 0x4E, 0x47}, MimeType: "image/png"}}
	svc, repo := setupService(t, client, 5)

	result, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.ArtifactURL == "" {
		t.Fatalf("expected artifact url")
	}
	if result.Width != 1024 || result.Height != 1024 {
		t.Fatalf("expected default dimensions, got %dx%d", result.Width, result.Height)
	}
	if client.calls != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", client.calls)
	}

	rec, err := repo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Status != StatusCompleted {
		t.Fatalf("expected completed record, got %s", rec.Status)
	}
	if rec.Prompt != "sunset" {
		t.Fatalf("expected original prompt persisted, got %q", rec.Prompt)
	}
	if rec.ArtifactURL != result.ArtifactURL {
		t.Fatalf("record url %q != result url %q", rec.ArtifactURL, result.ArtifactURL)
	}
	if rec.ArtifactSizeBytes != 4 {
		t.Fatalf("expected size 4, got %d", rec.ArtifactSizeBytes)
	}
}

func TestGenerateSendsEnhancedPromptButRecordsOriginal(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{1}, MimeType: "image/png"}}
	svc, repo := setupService(t, client, 5)

	style := &StyleParameters{Style: "realistic", Mood: "calm"}
	result, err := svc.Generate(context.Background(), "user-1", "a cat", style)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if client.last != "a cat, in realistic style, calm mood" {
		t.Fatalf("unexpected upstream prompt: %q", client.last)
	}

	rec, err := repo.GetByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if rec.Prompt != "a cat" {
		t.Fatalf("expected un-enhanced prompt in record, got %q", rec.Prompt)
	}
}

func TestGenerateStyleDimensionsOverrideDefaults(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{1}, MimeType: "image/png"}}
	svc, _ := setupService(t, client, 5)

	result, err := svc.Generate(context.Background(), "user-1", "a cat", &StyleParameters{Width: 512, Height: 768})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if result.Width != 512 || result.Height != 768 {
		t.Fatalf("expected 512x768, got %dx%d", result.Width, result.Height)
	}
}

func TestGenerateUpstreamFailureWritesFailedRecord(t *testing.T) {
	client := &stubImageClient{err: errors.New("model unavailable")}
	svc, repo := setupService(t, client, 5)

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected ErrUpstreamGeneration, got %v", err)
	}

	records, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(records))
	}
	rec := records[0]
	if rec.Status != StatusFailed {
		t.Fatalf("expected failed record, got %s", rec.Status)
	}
	if rec.ErrorSummary == nil || !strings.Contains(*rec.ErrorSummary, "upstream generate") {
		t.Fatalf("expected error summary, got %v", rec.ErrorSummary)
	}
	if rec.ArtifactURL != "" {
		t.Fatalf("expected no artifact url on failed record, got %q", rec.ArtifactURL)
	}
}

func TestGenerateQuotaExceededWritesNothing(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{1}, MimeType: "image/png"}}
	svc, repo := setupService(t, client, 3)
	seedCompletedToday(t, repo, "user-1", 3)

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no upstream call on quota rejection, got %d", client.calls)
	}

	records, err := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected record count unchanged at 3, got %d", len(records))
	}
}

func TestGenerateFailedAttemptsConsumeQuota(t *testing.T) {
	client := &stubImageClient{err: errors.New("model unavailable")}
	svc, repo := setupService(t, client, 2)

	for i := 0; i < 2; i++ {
		if _, err := svc.Generate(context.Background(), "user-1", "sunset", nil); !errors.Is(err, ErrUpstreamGeneration) {
			t.Fatalf("attempt %d: expected ErrUpstreamGeneration, got %v", i, err)
		}
	}

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota exhausted by failed attempts, got %v", err)
	}

	records, _ := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestGenerateStorageFailureWritesFailedRecord(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{1}, MimeType: "image/png"}}
	repo := NewMemoryRepo()
	store := &failingArtifactStore{}
	svc := &Service{
		Repo:          repo,
		Quota:         quota.NewGate(repo, 5),
		Client:        client,
		Artifacts:     store,
		DefaultWidth:  1024,
		DefaultHeight: 1024,
	}

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
	if store.calls != 1 {
		t.Fatalf("expected one store call, got %d", store.calls)
	}

	records, _ := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if len(records) != 1 {
		t.Fatalf("expected one failed record, got %d", len(records))
	}
	if records[0].Status != StatusFailed {
		t.Fatalf("expected failed record, got %s", records[0].Status)
	}
	if records[0].ArtifactURL != "" {
		t.Fatalf("expected no partial artifact reference, got %q", records[0].ArtifactURL)
	}
}

func TestGenerateCanceledRequestStillRecordsFailure(t *testing.T) {
	client := &stubImageClient{err: context.Canceled}
	svc, repo := setupService(t, client, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Generate(ctx, "user-1", "sunset", nil)
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected ErrUpstreamGeneration, got %v", err)
	}

	records, listErr := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(records) != 1 || records[0].Status != StatusFailed {
		t.Fatalf("expected one failed record despite canceled request, got %+v", records)
	}
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	client := &stubImageClient{}
	svc, _ := setupService(t, client, 5)

	if _, err := svc.Generate(context.Background(), "user-1", "  ", nil); err == nil {
		t.Fatalf("expected validation error")
	}
	if client.calls != 0 {
		t.Fatalf("expected no upstream call, got %d", client.calls)
	}
}

func TestGetIsOwnerScoped(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{1}, MimeType: "image/png"}}
	svc, _ := setupService(t, client, 5)

	result, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if _, err := svc.Get(context.Background(), "user-2", result.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other user, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "user-1", result.ID); err != nil {
		t.Fatalf("expected owner read to succeed, got %v", err)
	}
}

func TestGenerateFinalRecordWriteFailureReturnsOrchestrationError(t *testing.T) {
	client := &stubImageClient{img: imagegen.RawImage{Data: []byte{0x89, 0x50, 0x4E, 0x47}, MimeType: "image/png"}}
	repo := &writeBrokenRepo{MemoryRepo: NewMemoryRepo()}
	dir := t.TempDir()
	svc := &Service{
		Repo:          repo,
		Quota:         quota.NewGate(repo, 5),
		Client:        client,
		Artifacts:     artifacts.NewStore(local.New(dir, "http://localhost:8080")),
		DefaultWidth:  1024,
		DefaultHeight: 1024,
	}

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrOrchestration) {
		t.Fatalf("expected ErrOrchestration, got %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", client.calls)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one record write attempt, got %d", repo.creates)
	}

	// The artifact was stored before the write failed and stays orphaned.
	stored := 0
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			stored++
		}
		return nil
	})
	if walkErr != nil {
		t.Fatalf("walk store dir: %v", walkErr)
	}
	if stored != 1 {
		t.Fatalf("expected one stored artifact, got %d", stored)
	}

	records, listErr := repo.ListByUser(context.Background(), "user-1", 10, 0)
	if listErr != nil {
		t.Fatalf("list: %v", listErr)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestGenerateCompensatingWriteFailureKeepsPrimaryError(t *testing.T) {
	client := &stubImageClient{err: errors.New("model unavailable")}
	repo := &writeBrokenRepo{MemoryRepo: NewMemoryRepo()}
	svc := &Service{
		Repo:          repo,
		Quota:         quota.NewGate(repo, 5),
		Client:        client,
		Artifacts:     artifacts.NewStore(local.New(t.TempDir(), "http://localhost:8080")),
		DefaultWidth:  1024,
		DefaultHeight: 1024,
	}

	_, err := svc.Generate(context.Background(), "user-1", "sunset", nil)
	if !errors.Is(err, ErrUpstreamGeneration) {
		t.Fatalf("expected primary error preserved, got %v", err)
	}
	if repo.creates != 1 {
		t.Fatalf("expected one compensating write attempt, got %d", repo.creates)
	}
}

func TestSanitizeErrorStripsNewlinesAndCaps(t *testing.T) {
	t.Parallel()

	msg := sanitizeError(errors.New("line one\nline two\r" + strings.Repeat("x", 600)))
	if strings.ContainsAny(msg, "\n\r") {
		t.Fatalf("expected newlines stripped: %q", msg)
	}
	if len(msg) > 500 {
		t.Fatalf("expected message capped at 500, got %d", len(msg))
	}
}

func TestSanitizeErrorCapKeepsValidUTF8(t *testing.T) {
	t.Parallel()

	// One leading byte shifts the 500-byte cap into the middle of a
	// two-byte rune.
	msg := sanitizeError(errors.New("x" + strings.Repeat("é", 300)))
	if len(msg) > 500 {
		t.Fatalf("expected message capped at 500, got %d", len(msg))
	}
	if !utf8.ValidString(msg) {
		t.Fatalf("expected valid UTF-8 after cap: %q", msg)
	}
}
