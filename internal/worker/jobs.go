package worker

import (
	"context"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
)

// Prefetcher warms a cache with an image.
type Prefetcher interface {
	Prefetch(ctx context.Context, img models.Image) error
}

// Limiter throttles job starts.
type Limiter interface {
	Wait(ctx context.Context) error
}

// PrefetchImageJob loads an upcoming image so it is ready when displayed.
// Failures are logged at debug and never reported: a cold cache only costs
// a disk read later.
type PrefetchImageJob struct {
	Cache   Prefetcher
	Limiter Limiter
	Image   models.Image
}

func (j *PrefetchImageJob) Name() string { return "prefetch_image" }

func (j *PrefetchImageJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("image_id", j.Image.ID)

	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx); err != nil {
			log.Debug("prefetch skipped: %v", err)
			return nil
		}
	}
	if err := j.Cache.Prefetch(ctx, j.Image); err != nil {
		log.Debug("prefetch failed: %v", err)
		return nil
	}
	log.Debug("prefetched %s", j.Image.URL())
	return nil
}
