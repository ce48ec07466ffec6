package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/mriflash/internal/jobs"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/worker"
)

type recordingCache struct {
	mu   sync.Mutex
	ids  []string
	done chan struct{}
}

func (c *recordingCache) Prefetch(_ context.Context, img models.Image) error {
	c.mu.Lock()
	c.ids = append(c.ids, img.ID)
	c.mu.Unlock()
	c.done <- struct{}{}
	return nil
}

func TestWorkerQueue_PrefetchesThroughPool(t *testing.T) {
	pool := worker.NewPool(1, 4)
	pool.Start(context.Background())
	defer pool.Stop()

	cache := &recordingCache{done: make(chan struct{}, 4)}
	q := jobs.NewWorkerQueue(pool, cache, 100)

	require.NoError(t, q.EnqueuePrefetch(models.Image{ID: "IXI002-T1", Category: models.CategoryT1}))
	require.NoError(t, q.EnqueuePrefetch(models.Image{ID: "IXI002-T2", Category: models.CategoryT2}))

	for i := 0; i < 2; i++ {
		select {
		case <-cache.done:
		case <-time.After(2 * time.Second):
			t.Fatal("prefetch did not run")
		}
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.ElementsMatch(t, []string{"IXI002-T1", "IXI002-T2"}, cache.ids)
}

func TestWorkerQueue_FullQueueRejects(t *testing.T) {
	pool := worker.NewPool(1, 1)
	defer pool.Stop()
	q := jobs.NewWorkerQueue(pool, &recordingCache{done: make(chan struct{}, 1)}, 0)

	require.NoError(t, q.EnqueuePrefetch(models.Image{ID: "a"}))
	assert.ErrorIs(t, q.EnqueuePrefetch(models.Image{ID: "b"}), worker.ErrQueueFull)
}
