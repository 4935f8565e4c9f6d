package generations

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores generation records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Generation
	byUser map[string][]Generation
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Generation),
		byUser: make(map[string][]Generation),
	}
}

// Create stores the record. A record id is written at most once.
func (r *MemoryRepo) Create(ctx context.Context, gen Generation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[gen.ID]; exists {
		return fmt.Errorf("generation %s already recorded", gen.ID)
	}
	if gen.CreatedAt.IsZero() {
		gen.CreatedAt = time.Now().UTC()
	}
	r.byID[gen.ID] = gen
	r.byUser[gen.UserID] = append(r.byUser[gen.UserID], gen)
	return nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, generationID string) (Generation, error) {
	if err := ctx.Err(); err != nil {
		return Generation{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.byID[generationID]
	if !ok {
		return Generation{}, ErrNotFound
	}
	return gen, nil
}

// ListByUser returns records for a user, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	sorted := r.sortedByUser(userID)
	if len(sorted) == 0 || offset >= len(sorted) {
		return []Generation{}, nil
	}

	end := len(sorted)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return sorted[offset:end], nil
}

// RecentCreationTimes returns creation times of the user's newest records.
func (r *MemoryRepo) RecentCreationTimes(ctx context.Context, userID string, limit int) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []time.Time{}, nil
	}

	sorted := r.sortedByUser(userID)
	if limit > len(sorted) {
		limit = len(sorted)
	}
	out := make([]time.Time, 0, limit)
	for _, gen := range sorted[:limit] {
		out = append(out, gen.CreatedAt)
	}
	return out, nil
}

func (r *MemoryRepo) sortedByUser(userID string) []Generation {
	r.mu.RLock()
	records := r.byUser[userID]
	out := make([]Generation, len(records))
	copy(out, records)
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

var _ Repo = (*MemoryRepo)(nil)
