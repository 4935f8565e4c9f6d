package quota

import (
	"context"
	"time"

	"pixology-backend/internal/shared/telemetry"
)

// RecordSource exposes the creation times of a user's most recent generation
// records, newest first. The records themselves are the quota ledger.
type RecordSource interface {
	RecentCreationTimes(ctx context.Context, userID string, limit int) ([]time.Time, error)
}

// Gate decides whether a user may start another generation today. The window
// is the current calendar day in server-local time.
type Gate struct {
	Source     RecordSource
	DailyLimit int

	// now is overridable in tests.
	now func() time.Time
}

// NewGate constructs a Gate with the given daily limit.
func NewGate(source RecordSource, dailyLimit int) *Gate {
	return &Gate{Source: source, DailyLimit: dailyLimit, now: time.Now}
}

// Status is a caller-facing snapshot of today's consumption.
type Status struct {
	Limit     int       `json:"limit"`
	UsedToday int       `json:"usedToday"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// HasReachedDailyLimit reports whether the user has used up today's quota.
// The gate fails open: if the ledger cannot be read it admits the request
// rather than blocking all generation on a store outage. Callers must not
// tighten this to fail-closed without revisiting that availability choice.
func (g *Gate) HasReachedDailyLimit(ctx context.Context, userID string) bool {
	used, err := g.UsedToday(ctx, userID)
	if err != nil {
		telemetry.Error("quota.read_failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return false
	}
	return used >= g.DailyLimit
}

// UsedToday counts the user's records created since local midnight. The read
// is capped at limit+1 rows; only whether the count reaches the limit matters.
func (g *Gate) UsedToday(ctx context.Context, userID string) (int, error) {
	times, err := g.Source.RecentCreationTimes(ctx, userID, g.DailyLimit+1)
	if err != nil {
		return 0, err
	}

	start := startOfDay(g.clock()())
	used := 0
	for _, t := range times {
		if !t.Before(start) {
			used++
		}
	}
	return used, nil
}

// Snapshot returns the caller-facing quota status for the user.
func (g *Gate) Snapshot(ctx context.Context, userID string) (Status, error) {
	used, err := g.UsedToday(ctx, userID)
	if err != nil {
		return Status{}, err
	}
	remaining := g.DailyLimit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Limit:     g.DailyLimit,
		UsedToday: used,
		Remaining: remaining,
		ResetsAt:  startOfDay(g.clock()()).AddDate(0, 0, 1),
	}, nil
}

func (g *Gate) clock() func() time.Time {
	if g.now != nil {
		return g.now
	}
	return time.Now
}

// startOfDay returns local midnight for the day containing t. Records are
// stored in UTC; comparing against a local-zone boundary is intentional.
func startOfDay(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}
