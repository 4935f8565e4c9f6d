package users

import (
	"context"
	"errors"
)

// ErrNotFound indicates no stored user matches the id.
var ErrNotFound = errors.New("user not found")

// Repo persists user identities.
type Repo interface {
	// Upsert creates or refreshes the identity row for user.ID.
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
