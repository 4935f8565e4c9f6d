package artifacts

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"pixology-backend/internal/shared/storage/object"
	"pixology-backend/internal/shared/util"
)

const (
	defaultMimeType = "image/png"
	maxPromptTag    = 256
)

// ErrEmptyPayload indicates there were no bytes to store.
var ErrEmptyPayload = errors.New("empty artifact payload")

// Payload is the decoded byte content of an artifact.
type Payload struct {
	Data     []byte
	MimeType string
}

// Metadata is attribution recorded alongside the stored object.
type Metadata struct {
	UserID     string
	Prompt     string
	UploadedAt time.Time
}

// Ref is the durable reference to a stored artifact.
type Ref struct {
	URL       string `json:"url"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// Store persists artifacts to an object store under a per-user namespace.
type Store struct {
	Objects object.ObjectStore
}

// NewStore constructs a Store.
func NewStore(objects object.ObjectStore) *Store {
	return &Store{Objects: objects}
}

// Put stores the payload at users/{user}/images/{uniqueName} with attribution
// metadata and returns its public reference. The object name embeds a fresh
// random id, so key collisions are not checked for.
func (s *Store) Put(ctx context.Context, p Payload, userID, suggestedName string, meta Metadata) (Ref, error) {
	if len(p.Data) == 0 {
		return Ref{}, ErrEmptyPayload
	}

	mimeType := p.MimeType
	if strings.TrimSpace(mimeType) == "" {
		mimeType = defaultMimeType
	}

	name, err := util.SanitizeFileName(suggestedName)
	if err != nil {
		name = "image" + extensionFor(mimeType)
	}
	finalName := uuid.NewString() + "_" + name
	key := path.Join("users", userSegment(userID), "images", finalName)

	uploadedAt := meta.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = time.Now().UTC()
	}

	res, err := s.Objects.Put(ctx, object.PutInput{
		Key:         key,
		ContentType: mimeType,
		Metadata: map[string]string{
			"owner":       meta.UserID,
			"uploaded-at": uploadedAt.Format(time.RFC3339),
			"prompt":      truncate(meta.Prompt, maxPromptTag),
		},
		Body: bytes.NewReader(p.Data),
	})
	if err != nil {
		return Ref{}, fmt.Errorf("store artifact key=%s: %w", key, err)
	}

	return Ref{
		URL:       res.URL,
		SizeBytes: res.SizeBytes,
		MimeType:  mimeType,
	}, nil
}

// DecodePayload interprets an encoded image payload. A data URL yields its
// declared MIME type; anything else is treated as bare base64 with the
// default image MIME type.
func DecodePayload(raw string) (Payload, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Payload{}, ErrEmptyPayload
	}

	mimeType := defaultMimeType
	encoded := raw
	if strings.HasPrefix(raw, "data:") {
		idx := strings.Index(raw, ";base64,")
		if idx < 0 {
			return Payload{}, fmt.Errorf("unsupported data url encoding")
		}
		if mt := strings.TrimSpace(raw[len("data:"):idx]); mt != "" {
			mimeType = mt
		}
		encoded = raw[idx+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Payload{}, fmt.Errorf("decode artifact payload: %w", err)
	}
	if len(data) == 0 {
		return Payload{}, ErrEmptyPayload
	}
	return Payload{Data: data, MimeType: mimeType}, nil
}

// userSegment returns a key-safe namespace segment for the user. IDs that
// fail sanitization fall back to a stable hash so the namespace survives.
func userSegment(userID string) string {
	seg, err := util.SanitizeFileName(userID)
	if err != nil {
		return util.HashUserKey(userID)
	}
	return seg
}

func extensionFor(mimeType string) string {
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Back up so the cap never splits a multi-byte rune.
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
