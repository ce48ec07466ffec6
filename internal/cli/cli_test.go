package cli

import (
	"bytes"
	"context"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vytor/mriflash/internal/catalog"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/repository/sqlite"
	"github.com/vytor/mriflash/internal/services"
	"github.com/vytor/mriflash/internal/storage"
	"github.com/vytor/mriflash/internal/testutil"
)

func newService(t *testing.T) services.QuizService {
	t.Helper()
	conn := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, conn) })

	meta := filepath.Join(t.TempDir(), "metadata.json")
	require.NoError(t, catalog.Write(meta, models.NewMetadata(testutil.Images(2, 2))))

	clock := testutil.NewFixedClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC))
	svc := services.NewQuizService(services.QuizDeps{
		Loader:  catalog.NewLoader(meta),
		Store:   storage.New(sqlite.NewKVRepository(conn), 1<<20),
		History: sqlite.NewHistoryRepository(conn),
		Mastery: sqlite.NewMasteryRepository(conn),
		Rand:    rand.New(rand.NewSource(3)),
		Clock:   clock.Now,
	})
	svc.Init(context.Background())
	return svc
}

func TestPlay_CompletesSession(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer

	in := strings.Repeat("1\n\n", 4)
	require.NoError(t, Play(context.Background(), svc, models.SessionAll, strings.NewReader(in), &out))

	assert.Contains(t, out.String(), "Session of 4 images.")
	assert.Contains(t, out.String(), "Memory aid:")
	assert.Contains(t, out.String(), "/4 (")
	assert.Equal(t, models.PhaseResults, svc.View(context.Background()).Phase)
}

func TestPlay_QuitShowsResults(t *testing.T) {
	svc := newService(t)
	var out bytes.Buffer

	require.NoError(t, Play(context.Background(), svc, models.SessionAll, strings.NewReader("x\nq\n"), &out))

	assert.Contains(t, out.String(), "Answer 1 (T1), 2 (T2) or q.")
	assert.Contains(t, out.String(), "Score: 0/0 (0.0%)")
}

func TestPlay_ResumesAfterEOF(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, Play(ctx, svc, models.SessionAll, strings.NewReader("2\n"), &bytes.Buffer{}))
	view := svc.View(ctx)
	assert.Equal(t, models.PhaseExplanation, view.Phase)
	assert.Equal(t, 1, view.TotalAnswered)

	var out bytes.Buffer
	require.NoError(t, Play(ctx, svc, models.SessionAll, strings.NewReader("q\n"), &out))
	assert.Contains(t, out.String(), "Resuming session (1/4 answered)")
	assert.Contains(t, out.String(), "/1 (")
}

func TestStats(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, Stats(ctx, svc, models.MasteryFilter{}, 5, &out))
	assert.Contains(t, out.String(), "CATEGORY")
	assert.Contains(t, out.String(), "No images reviewed yet.")
	assert.Contains(t, out.String(), "No sessions recorded yet.")

	require.NoError(t, Play(ctx, svc, models.SessionAll, strings.NewReader("1\n\n"), &bytes.Buffer{}))

	out.Reset()
	require.NoError(t, Stats(ctx, svc, models.MasteryFilter{}, 5, &out))
	assert.Contains(t, out.String(), "NEXT REVIEW")
	assert.Contains(t, out.String(), "IXI00")
	assert.Contains(t, out.String(), "SESSION")
	assert.Contains(t, out.String(), "1 (")

	out.Reset()
	require.NoError(t, Stats(ctx, svc, models.MasteryFilter{}, 0, &out))
	assert.NotContains(t, out.String(), "SESSION")
}
