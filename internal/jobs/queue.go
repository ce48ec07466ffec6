package jobs

import "github.com/vytor/mriflash/internal/models"

// PrefetchQueue accepts images to warm ahead of display. Enqueueing never
// blocks; a full queue rejects the image.
type PrefetchQueue interface {
	EnqueuePrefetch(img models.Image) error
}
