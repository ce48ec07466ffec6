package scheduler_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/scheduler"
)

func queueOf(ids ...string) []models.Item {
	q := make([]models.Item, len(ids))
	for i, id := range ids {
		q[i] = models.Item{Image: models.Image{ID: id}}
	}
	return q
}

func idsOf(q []models.Item) []string {
	out := make([]string, len(q))
	for i, item := range q {
		out[i] = item.Image.ID
	}
	return out
}

func TestReinsert(t *testing.T) {
	tests := []struct {
		name     string
		source   int
		offset   int
		expected []string
	}{
		{name: "move head forward three", source: 0, offset: 3, expected: []string{"b", "c", "d", "a", "e", "f", "g", "h"}},
		{name: "move middle forward", source: 2, offset: 4, expected: []string{"a", "b", "d", "e", "f", "g", "c", "h"}},
		{name: "offset lands on end", source: 1, offset: 6, expected: []string{"a", "c", "d", "e", "f", "g", "h", "b"}},
		{name: "offset past end", source: 5, offset: 7, expected: []string{"a", "b", "c", "d", "e", "g", "h", "f"}},
		{name: "last item stays last", source: 7, offset: 3, expected: []string{"a", "b", "c", "d", "e", "f", "g", "h"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := queueOf("a", "b", "c", "d", "e", "f", "g", "h")

			out := scheduler.Reinsert(queue, tt.source, tt.offset)

			assert.Equal(t, tt.expected, idsOf(out))
		})
	}
}

func TestReinsert_Immutable(t *testing.T) {
	queue := queueOf("a", "b", "c", "d", "e")

	out := scheduler.Reinsert(queue, 0, 3)
	out[0].Image.ID = "changed"

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, idsOf(queue))
}

func TestReinsert_InvalidSource(t *testing.T) {
	queue := queueOf("a", "b", "c")

	assert.Equal(t, []string{"a", "b", "c"}, idsOf(scheduler.Reinsert(queue, -1, 3)))
	assert.Equal(t, []string{"a", "b", "c"}, idsOf(scheduler.Reinsert(queue, 3, 3)))
	assert.Empty(t, scheduler.Reinsert(nil, 0, 3))
}

func TestReinsert_ConservesItems(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	ids := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}
	queue := queueOf(ids...)

	for source := 0; source < len(queue); source++ {
		for offset := 0; offset <= 12; offset++ {
			out := scheduler.Reinsert(queue, source, offset)
			require.Len(t, out, len(queue))
			assert.ElementsMatch(t, ids, idsOf(out))
		}
	}

	for i := 0; i < 100; i++ {
		queue = scheduler.Reinsert(queue, rng.Intn(len(queue)), scheduler.ReinsertOffset(rng))
	}
	assert.ElementsMatch(t, ids, idsOf(queue))
}

func TestReinsertOffset_Range(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	seen := make(map[int]bool)

	for i := 0; i < 500; i++ {
		off := scheduler.ReinsertOffset(rng)
		assert.GreaterOrEqual(t, off, 3)
		assert.LessOrEqual(t, off, 7)
		seen[off] = true
	}

	assert.Len(t, seen, 5, "every offset in [3,7] should come up")
}
