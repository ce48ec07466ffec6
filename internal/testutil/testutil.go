package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/vytor/mriflash/internal/db"
	"github.com/vytor/mriflash/internal/models"
)

// NewTestDB creates a private in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	require.NoError(t, err)
	return conn.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// Images returns a pool of t1 T1 images followed by t2 T2 images.
func Images(t1, t2 int) []models.Image {
	images := make([]models.Image, 0, t1+t2)
	for i := 0; i < t1; i++ {
		images = append(images, image(i, models.CategoryT1))
	}
	for i := 0; i < t2; i++ {
		images = append(images, image(i, models.CategoryT2))
	}
	return images
}

func image(i int, cat models.Category) models.Image {
	subject := fmt.Sprintf("IXI%03d", i)
	return models.Image{
		ID:       subject + "-" + string(cat),
		Filename: subject + "-HH-0001-" + string(cat) + ".png",
		Category: cat,
		Subject:  subject,
	}
}

// FixedClock returns a clock frozen at t that can be moved with Advance.
type FixedClock struct {
	T time.Time
}

func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{T: t}
}

func (c *FixedClock) Now() time.Time {
	return c.T
}

func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
