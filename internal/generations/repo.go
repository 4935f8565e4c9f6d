package generations

import (
	"context"
	"time"
)

// Repo defines persistence operations for generation records. Records are
// create/read only; there is no update or delete.
type Repo interface {
	Create(ctx context.Context, gen Generation) error
	GetByID(ctx context.Context, generationID string) (Generation, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Generation, error)
	// RecentCreationTimes returns the creation times of the user's most
	// recent records, newest first, capped at limit. It feeds the quota gate.
	RecentCreationTimes(ctx context.Context, userID string, limit int) ([]time.Time, error)
}
