package generations

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new generation record.
func (r *PGRepo) Create(ctx context.Context, gen Generation) error {
	const query = `
INSERT INTO generations (
	id, user_id, prompt, style, status, artifact_url, artifact_size_bytes,
	mime_type, width, height, error_summary, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, COALESCE($12, now()))`

	stylePayload, err := marshalStyle(gen.Style)
	if err != nil {
		return err
	}

	var createdAt any
	if !gen.CreatedAt.IsZero() {
		createdAt = gen.CreatedAt
	}

	_, err = r.DB.ExecContext(ctx, query,
		gen.ID,
		gen.UserID,
		gen.Prompt,
		stylePayload,
		gen.Status,
		nullableString(gen.ArtifactURL),
		gen.ArtifactSizeBytes,
		nullableString(gen.MimeType),
		gen.Width,
		gen.Height,
		gen.ErrorSummary,
		createdAt,
	)
	return err
}

// GetByID returns a generation record by ID.
func (r *PGRepo) GetByID(ctx context.Context, generationID string) (Generation, error) {
	const query = `
SELECT id, user_id, prompt, style, status, artifact_url, artifact_size_bytes,
       mime_type, width, height, error_summary, created_at
FROM generations
WHERE id = $1
LIMIT 1`

	row := r.DB.QueryRowContext(ctx, query, generationID)
	gen, err := scanGeneration(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Generation{}, ErrNotFound
		}
		return Generation{}, err
	}
	return gen, nil
}

// ListByUser returns records for a user, newest first, with limit/offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	const query = `
SELECT id, user_id, prompt, style, status, artifact_url, artifact_size_bytes,
       mime_type, width, height, error_summary, created_at
FROM generations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Generation{}
	for rows.Next() {
		gen, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, gen)
	}
	return out, rows.Err()
}

// RecentCreationTimes returns creation times of the user's newest records.
func (r *PGRepo) RecentCreationTimes(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	const query = `
SELECT created_at
FROM generations
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2`

	if limit <= 0 {
		return []time.Time{}, nil
	}

	rows, err := r.DB.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []time.Time{}
	for rows.Next() {
		var t time.Time
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneration(row rowScanner) (Generation, error) {
	var gen Generation
	var style sql.NullString
	var artifactURL sql.NullString
	var mimeType sql.NullString
	var errorSummary sql.NullString

	err := row.Scan(
		&gen.ID,
		&gen.UserID,
		&gen.Prompt,
		&style,
		&gen.Status,
		&artifactURL,
		&gen.ArtifactSizeBytes,
		&mimeType,
		&gen.Width,
		&gen.Height,
		&errorSummary,
		&gen.CreatedAt,
	)
	if err != nil {
		return Generation{}, err
	}

	if style.Valid && style.String != "" {
		var params StyleParameters
		if err := json.Unmarshal([]byte(style.String), &params); err == nil {
			gen.Style = &params
		}
	}
	if artifactURL.Valid {
		gen.ArtifactURL = artifactURL.String
	}
	if mimeType.Valid {
		gen.MimeType = mimeType.String
	}
	if errorSummary.Valid {
		gen.ErrorSummary = &errorSummary.String
	}
	return gen, nil
}

func marshalStyle(style *StyleParameters) (any, error) {
	if style == nil {
		return nil, nil
	}
	payload, err := json.Marshal(style)
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
