package postgres

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnreadRepository_IncrementAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewUnreadRepository(testPool)

	require.NoError(t, repo.Reset(ctx))

	first, err := repo.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), first)

	second, err := repo.Increment(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), second)

	count, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUnreadRepository_Reset(t *testing.T) {
	ctx := context.Background()
	repo := NewUnreadRepository(testPool)

	_, err := repo.Increment(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.Reset(ctx))

	count, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// Resetting an already-zero counter is a no-op, not an error.
	require.NoError(t, repo.Reset(ctx))
}

func TestUnreadRepository_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := NewUnreadRepository(testPool)

	require.NoError(t, repo.Reset(ctx))

	const workers = 10
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := repo.Increment(ctx); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(workers*perWorker), count, "no increment may be lost")
}
