package repositories

import (
	"context"
	"sort"
	"sync"
	"testing"

	"petpos_backend/internal/docstore"
	"petpos_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIDStartsAtOneAndIsSequential(t *testing.T) {
	ctx := context.Background()
	counters := NewCounterRepository(docstore.NewMemoryStore(), nil)

	for want := int64(1); want <= 5; want++ {
		got, err := counters.NextID(ctx, models.CollectionProducts)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	current, err := counters.Current(ctx, models.CollectionProducts)
	require.NoError(t, err)
	assert.Equal(t, int64(5), current)
}

func TestNextIDConcurrentCallsCoverRangeWithoutGaps(t *testing.T) {
	ctx := context.Background()
	const workers = 32
	store := docstore.NewMemoryStore(docstore.WithMaxAttempts(workers * 2))
	counters := NewCounterRepository(store, nil)

	require.NoError(t, store.Set(ctx, models.CollectionCounters, models.CollectionSales, models.Counter{Count: 40}))

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids []int64
	)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := counters.NextID(ctx, models.CollectionSales)
			if err != nil {
				errs <- err
				return
			}
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	require.Len(t, ids, workers)
	for i, id := range ids {
		assert.Equal(t, int64(41+i), id)
	}
}

func TestTwoConcurrentAllocationsFromFive(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	counters := NewCounterRepository(store, nil)
	require.NoError(t, store.Set(ctx, models.CollectionCounters, "sales", models.Counter{Count: 5}))

	results := make(chan int64, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := counters.NextID(ctx, "sales")
			if err == nil {
				results <- id
			}
		}()
	}
	wg.Wait()
	close(results)

	var got []int64
	for id := range results {
		got = append(got, id)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })
	assert.Equal(t, []int64{6, 7}, got)
}

func TestAllocationIsPerCollection(t *testing.T) {
	ctx := context.Background()
	counters := NewCounterRepository(docstore.NewMemoryStore(), nil)

	for i := 0; i < 3; i++ {
		_, err := counters.NextID(ctx, "a")
		require.NoError(t, err)
	}
	b, err := counters.Current(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(0), b)

	id, err := counters.NextID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	a, err := counters.Current(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(3), a)
}

func TestAllocateFailureLeavesCounterUntouched(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemoryStore(docstore.WithMaxAttempts(2))
	var observed []string
	counters := NewCounterRepository(store, func(c string) { observed = append(observed, c) })

	err := store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Tx) error {
		if _, err := counters.Allocate(ctx, tx, "sales"); err != nil {
			return err
		}
		// A concurrent writer bumps the counter on every attempt.
		_, err := counters.NextID(ctx, "sales")
		return err
	})
	assert.ErrorIs(t, err, docstore.ErrTxConflict)

	current, err := counters.Current(ctx, "sales")
	require.NoError(t, err)
	assert.Equal(t, int64(2), current, "only the two interfering allocations committed")
	assert.NotEmpty(t, observed)
}
