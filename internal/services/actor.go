package services

import (
	"context"
	"time"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/repositories"
)

// Actor is the authenticated staff member performing an operation.
type Actor struct {
	UserID   int64
	Username string
	Role     string
	BranchID *int64
}

// createWithID allocates the next id for collection and runs create with it
// inside one transaction, so a failed allocation never leaves a document behind.
func createWithID(ctx context.Context, store docstore.Store, counters repositories.CounterRepository,
	collection string, create func(ctx context.Context, tx docstore.Tx, id int64) error) error {
	return store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		id, err := counters.Allocate(ctx, tx, collection)
		if err != nil {
			return err
		}
		return create(ctx, tx, id)
	})
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
