package repositories

import (
	"context"
	"errors"
	"fmt"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"
)

// CounterRepository hands out sequential integer ids per collection.
type CounterRepository interface {
	// Allocate reads counters/<collection>, treats a missing counter as 0,
	// writes count+1 and returns it, all through tx.
	Allocate(ctx context.Context, tx docstore.Tx, collection string) (int64, error)
	// NextID allocates in a transaction of its own.
	NextID(ctx context.Context, collection string) (int64, error)
	// Current returns the last id issued for collection, 0 if none.
	Current(ctx context.Context, collection string) (int64, error)
}

type counterRepository struct {
	store    docstore.Store
	observer func(collection string)
}

// NewCounterRepository creates a new CounterRepository. observer, when not nil,
// is called for every allocation attempt.
func NewCounterRepository(store docstore.Store, observer func(collection string)) CounterRepository {
	return &counterRepository{store: store, observer: observer}
}

func (r *counterRepository) read(ctx context.Context, ex Executor, collection string) (int64, error) {
	doc, err := ex.Get(ctx, models.CollectionCounters, collection)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return 0, nil
		}
		return 0, storeErr("read counter", err)
	}
	var c models.Counter
	if err := doc.DataTo(&c); err != nil {
		return 0, storeErr("decode counter", err)
	}
	return c.Count, nil
}

func (r *counterRepository) Allocate(ctx context.Context, tx docstore.Tx, collection string) (int64, error) {
	if collection == "" {
		return 0, fmt.Errorf("allocate id: empty collection name")
	}
	current, err := r.read(ctx, tx, collection)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := tx.Set(ctx, models.CollectionCounters, collection, models.Counter{Count: next}); err != nil {
		return 0, storeErr("write counter", err)
	}
	if r.observer != nil {
		r.observer(collection)
	}
	return next, nil
}

func (r *counterRepository) NextID(ctx context.Context, collection string) (int64, error) {
	var id int64
	err := r.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		var err error
		id, err = r.Allocate(ctx, tx, collection)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("allocate %s id: %w", collection, err)
	}
	return id, nil
}

func (r *counterRepository) Current(ctx context.Context, collection string) (int64, error) {
	return r.read(ctx, r.store, collection)
}
