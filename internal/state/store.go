// Package state persists whole placement.User values keyed by user id.
package state

import (
	"context"
	"errors"
	"fmt"

	"placement-backend/internal/placement"
)

var (
	// ErrNotFound is returned when no state exists for a user id.
	ErrNotFound = errors.New("user state not found")
	// ErrConflict is returned by Put when the stored version moved since the user was read.
	ErrConflict = errors.New("user state changed concurrently")
)

// maxUpdateAttempts bounds how often Update re-reads after a conflict.
const maxUpdateAttempts = 5

// Store is a key-value container of user states.
//
// Put is a compare-and-set on placement.User.Version: it succeeds only when the
// stored version equals user.Version (zero for a user that does not exist yet)
// and stores the user with Version+1. Otherwise it returns ErrConflict.
type Store interface {
	Get(ctx context.Context, userID string) (placement.User, error)
	Put(ctx context.Context, user placement.User) error
	Delete(ctx context.Context, userID string) error
	ListIDs(ctx context.Context) ([]string, error)
}

// Update loads a user, applies fn and stores the result. When another writer
// stored the user in between, the cycle is repeated on the fresh state, so fn
// may run more than once and must not have side effects.
func Update(ctx context.Context, store Store, userID string, fn func(placement.User) (placement.User, error)) (placement.User, error) {
	for attempt := 1; ; attempt++ {
		u, err := store.Get(ctx, userID)
		if err != nil {
			return placement.User{}, err
		}
		next, err := fn(u)
		if err != nil {
			return placement.User{}, err
		}
		if next.ID != userID {
			return placement.User{}, fmt.Errorf("update changed user id %q to %q", userID, next.ID)
		}
		next.Version = u.Version
		err = store.Put(ctx, next)
		switch {
		case err == nil:
			next.Version++
			return next, nil
		case errors.Is(err, ErrConflict) && attempt < maxUpdateAttempts:
			continue
		default:
			return placement.User{}, fmt.Errorf("put user %s: %w", userID, err)
		}
	}
}
