package repositories

import (
	"context"
	"errors"
	"fmt"

	"petpos_backend/internal/docstore"
	"petpos_backend/pkg/utils"
)

var (
	// ErrNotFound is returned when a specific record is not found.
	ErrNotFound = errors.New("requested record not found")

	// ErrDatabaseError is returned for unexpected store errors.
	// The underlying error stays in the chain so transaction retries can see it.
	ErrDatabaseError = errors.New("database error")
)

// Executor is satisfied by docstore.Store and docstore.Tx, so repository
// methods can run inside a transaction or directly against the store.
type Executor = docstore.Executor

// Counter is the part of a store that can count documents.
type Counter interface {
	Count(ctx context.Context, collection string, filters ...docstore.Filter) (int64, error)
}

// storeErr maps store errors onto repository sentinels.
func storeErr(op string, err error) error {
	switch {
	case errors.Is(err, docstore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, docstore.ErrTxConflict):
		return fmt.Errorf("%s: %w", op, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, ErrDatabaseError, err)
	}
}

func docID(id int64) string {
	return utils.Int64ToStr(id)
}

// collection gives typed access to one document collection.
type collection[T any] struct {
	name string
}

func (c collection[T]) get(ctx context.Context, ex Executor, id int64) (*T, error) {
	doc, err := ex.Get(ctx, c.name, docID(id))
	if err != nil {
		return nil, storeErr("get "+c.name, err)
	}
	v := new(T)
	if err := doc.DataTo(v); err != nil {
		return nil, storeErr("decode "+c.name, err)
	}
	return v, nil
}

func (c collection[T]) find(ctx context.Context, ex Executor, filters ...docstore.Filter) ([]T, error) {
	docs, err := ex.Find(ctx, c.name, filters...)
	if err != nil {
		return nil, storeErr("find "+c.name, err)
	}
	out := make([]T, 0, len(docs))
	for i := range docs {
		var v T
		if err := docs[i].DataTo(&v); err != nil {
			return nil, storeErr("decode "+c.name, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// first returns the lowest-id document matching filters.
func (c collection[T]) first(ctx context.Context, ex Executor, filters ...docstore.Filter) (*T, error) {
	items, err := c.find(ctx, ex, filters...)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (c collection[T]) set(ctx context.Context, ex Executor, id int64, v *T) error {
	if err := ex.Set(ctx, c.name, docID(id), v); err != nil {
		return storeErr("set "+c.name, err)
	}
	return nil
}

func (c collection[T]) update(ctx context.Context, ex Executor, id int64, fields map[string]interface{}) error {
	if err := ex.Update(ctx, c.name, docID(id), fields); err != nil {
		return storeErr("update "+c.name, err)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, ex Executor, id int64) error {
	if err := ex.Delete(ctx, c.name, docID(id)); err != nil {
		return storeErr("delete "+c.name, err)
	}
	return nil
}

func (c collection[T]) count(ctx context.Context, cn Counter, filters ...docstore.Filter) (int64, error) {
	n, err := cn.Count(ctx, c.name, filters...)
	if err != nil {
		return 0, storeErr("count "+c.name, err)
	}
	return n, nil
}

// Paginate slices items for a 1-based page and returns the total before slicing.
func Paginate[T any](items []T, page, pageSize int) ([]T, int) {
	total := len(items)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		return items, total
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []T{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return items[start:end], total
}

// reversed returns items newest first, given ascending id order.
func reversed[T any](items []T) []T {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}
