package jobs

import (
	"golang.org/x/time/rate"

	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/worker"
)

// WorkerQueue implements PrefetchQueue on a worker pool. Job starts are
// throttled by a shared token bucket.
type WorkerQueue struct {
	pool    *worker.Pool
	cache   worker.Prefetcher
	limiter *rate.Limiter
}

// NewWorkerQueue returns a queue submitting to pool. perSecond <= 0 disables
// throttling.
func NewWorkerQueue(pool *worker.Pool, cache worker.Prefetcher, perSecond int) *WorkerQueue {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(perSecond), perSecond)
	}
	return &WorkerQueue{pool: pool, cache: cache, limiter: limiter}
}

var _ PrefetchQueue = (*WorkerQueue)(nil)

func (q *WorkerQueue) EnqueuePrefetch(img models.Image) error {
	return q.pool.Submit(&worker.PrefetchImageJob{
		Cache:   q.cache,
		Limiter: q.limiter,
		Image:   img,
	})
}
