package scheduler

import "github.com/vytor/mriflash/internal/models"

const (
	minReinsertOffset = 3
	maxReinsertOffset = 7
)

// ReinsertOffset picks how far ahead a missed item is pushed, in [3, 7].
func ReinsertOffset(rng Rand) int {
	return minReinsertOffset + rng.Intn(maxReinsertOffset-minReinsertOffset+1)
}

// Reinsert moves the item at source forward by offset positions and returns
// the new queue; queue itself is left untouched. An offset running past the
// end places the item last. An out of range source yields an unchanged copy.
func Reinsert(queue []models.Item, source, offset int) []models.Item {
	out := make([]models.Item, 0, len(queue))
	if source < 0 || source >= len(queue) {
		return append(out, queue...)
	}

	moved := queue[source]
	out = append(out, queue[:source]...)
	out = append(out, queue[source+1:]...)

	at := min(source+offset, len(out))
	if at < 0 {
		at = 0
	}
	out = append(out, models.Item{})
	copy(out[at+1:], out[at:])
	out[at] = moved
	return out
}
