package docstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name     string  `json:"name"`
	BranchID int64   `json:"branch_id"`
	Quantity float64 `json:"quantity"`
}

func TestMemoryStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "items", "1", item{Name: "kibble", BranchID: 1, Quantity: 4}))

	doc, err := s.Get(ctx, "items", "1")
	require.NoError(t, err)
	var got item
	require.NoError(t, doc.DataTo(&got))
	assert.Equal(t, "kibble", got.Name)

	require.NoError(t, s.Delete(ctx, "items", "1"))
	_, err = s.Get(ctx, "items", "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "items", "1"), ErrNotFound)
}

func TestMemoryStoreRejectsNonObjects(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Set(context.Background(), "items", "1", []int{1, 2}), ErrNotObject)
}

func TestMemoryStoreUpdateAndIncrement(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, "customers", "1", map[string]interface{}{"name": "Ann"}))

	require.NoError(t, s.Update(ctx, "customers", "1", map[string]interface{}{
		"loyalty_points":  Increment(2),
		"total_purchases": Increment(210),
		"name":            "Ann B",
	}))
	require.NoError(t, s.Update(ctx, "customers", "1", map[string]interface{}{"loyalty_points": Increment(3)}))

	doc, err := s.Get(ctx, "customers", "1")
	require.NoError(t, err)
	var got map[string]interface{}
	require.NoError(t, doc.DataTo(&got))
	assert.Equal(t, 5.0, got["loyalty_points"])
	assert.Equal(t, 210.0, got["total_purchases"])
	assert.Equal(t, "Ann B", got["name"])

	err = s.Update(ctx, "customers", "2", map[string]interface{}{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Update(ctx, "customers", "1", map[string]interface{}{"bad-field": 1})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestMemoryStoreFindFiltersAndOrdersNumerically(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, id := range []string{"10", "2", "1"} {
		require.NoError(t, s.Set(ctx, "stock", id, item{Name: "s" + id, BranchID: 1}))
	}
	require.NoError(t, s.Set(ctx, "stock", "3", item{Name: "other", BranchID: 2}))

	docs, err := s.Find(ctx, "stock", Where("branch_id", 1))
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"1", "2", "10"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})

	n, err := s.Count(ctx, "stock")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	n, err = s.Count(ctx, "stock", Where("branch_id", int64(2)), Where("name", "other"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryTransactionSeesOwnWritesAndDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	boom := errors.New("boom")

	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.Set(ctx, "items", "1", item{Name: "a", BranchID: 1}))
		docs, err := tx.Find(ctx, "items", Where("branch_id", 1))
		require.NoError(t, err)
		assert.Len(t, docs, 1)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Get(ctx, "items", "1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTransactionRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	retries := 0
	s := NewMemoryStore(WithRetryHook(func(int) { retries++ }))
	require.NoError(t, s.Set(ctx, "counters", "sales", map[string]interface{}{"count": 0}))

	runs := 0
	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		runs++
		if _, err := tx.Get(ctx, "counters", "sales"); err != nil {
			return err
		}
		if runs == 1 {
			// A concurrent writer commits between our read and our commit.
			require.NoError(t, s.Update(ctx, "counters", "sales", map[string]interface{}{"count": Increment(1)}))
		}
		return tx.Update(ctx, "counters", "sales", map[string]interface{}{"count": Increment(1)})
	})
	require.NoError(t, err)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, retries)

	doc, err := s.Get(ctx, "counters", "sales")
	require.NoError(t, err)
	var c struct{ Count int64 }
	require.NoError(t, doc.DataTo(&c))
	assert.Equal(t, int64(2), c.Count)
}

func TestMemoryTransactionGivesUpAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(WithMaxAttempts(3))

	err := s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := tx.Get(ctx, "counters", "x"); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		require.NoError(t, s.Set(ctx, "counters", "x", map[string]interface{}{"count": 1}))
		return tx.Set(ctx, "counters", "x", map[string]interface{}{"count": 1})
	})
	assert.ErrorIs(t, err, ErrTxConflict)
}

func TestMemoryTransactionConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	const workers = 32
	s := NewMemoryStore(WithMaxAttempts(workers * 2))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
				var c struct {
					Count int64 `json:"count"`
				}
				doc, err := tx.Get(ctx, "counters", "n")
				if err == nil {
					if err := doc.DataTo(&c); err != nil {
						return err
					}
				} else if !errors.Is(err, ErrNotFound) {
					return err
				}
				return tx.Set(ctx, "counters", "n", map[string]interface{}{"count": c.Count + 1})
			})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	doc, err := s.Get(ctx, "counters", "n")
	require.NoError(t, err)
	var c struct {
		Count int64 `json:"count"`
	}
	require.NoError(t, doc.DataTo(&c))
	assert.Equal(t, int64(workers), c.Count)
}
