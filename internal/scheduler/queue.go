package scheduler

import (
	"slices"
	"time"

	"github.com/vytor/mriflash/internal/models"
)

// BuildQueue draws a category-balanced session queue from pool and orders it
// by priority, highest first.
//
// Each category gets half of the resolved length; an odd leftover slot goes to
// either category with equal odds. When one category runs short, the other
// fills the gap, so the queue always has length.Resolve(usable) items, where
// usable counts the images with a valid category. Others are skipped.
func BuildQueue(pool []models.Image, length models.SessionLength, now time.Time, rng Rand) []models.Item {
	var t1, t2 []models.Image
	for _, img := range pool {
		switch img.Category {
		case models.CategoryT1:
			t1 = append(t1, img)
		case models.CategoryT2:
			t2 = append(t2, img)
		}
	}

	n := length.Resolve(len(t1) + len(t2))
	if n == 0 {
		return []models.Item{}
	}
	Shuffle(t1, rng)
	Shuffle(t2, rng)

	want1, want2 := splitTargets(n, len(t1), len(t2), rng)

	picked := make([]models.Image, 0, n)
	picked = append(picked, t1[:want1]...)
	picked = append(picked, t2[:want2]...)
	Shuffle(picked, rng)

	queue := make([]models.Item, len(picked))
	for i, img := range picked {
		queue[i] = NewItem(img, now)
	}
	slices.SortStableFunc(queue, func(a, b models.Item) int {
		return b.Priority - a.Priority
	})
	return queue
}

// splitTargets decides how many items to draw from each category.
// n must not exceed have1+have2.
func splitTargets(n, have1, have2 int, rng Rand) (int, int) {
	want1, want2 := n/2, n/2
	if n%2 == 1 {
		if rng.Intn(2) == 0 {
			want1++
		} else {
			want2++
		}
	}
	if want1 > have1 {
		want2 += want1 - have1
		want1 = have1
	}
	if want2 > have2 {
		want1 += want2 - have2
		want2 = have2
	}
	return want1, want2
}
