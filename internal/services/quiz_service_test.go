package services_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vytor/mriflash/internal/catalog"
	apperrors "github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
	"github.com/vytor/mriflash/internal/repository/sqlite"
	"github.com/vytor/mriflash/internal/services"
	"github.com/vytor/mriflash/internal/storage"
	"github.com/vytor/mriflash/internal/testutil"
	"github.com/vytor/mriflash/internal/testutil/mocks"
)

type stubLoader struct {
	meta models.Metadata
	err  error
}

func (l stubLoader) Load(context.Context) (models.Metadata, error) {
	return l.meta, l.err
}

type fixture struct {
	db       *sqlx.DB
	store    *storage.Store
	history  *mocks.MockHistoryRepository
	mastery  *mocks.MockMasteryRepository
	prefetch *mocks.MockPrefetchQueue
	clock    *testutil.FixedClock
	pool     []models.Image
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	f := &fixture{
		db:       db,
		store:    storage.New(sqlite.NewKVRepository(db), 0),
		history:  new(mocks.MockHistoryRepository),
		mastery:  new(mocks.MockMasteryRepository),
		prefetch: new(mocks.MockPrefetchQueue),
		clock:    testutil.NewFixedClock(time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)),
		pool:     testutil.Images(15, 15),
	}
	f.history.On("InsertSession", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.history.On("InsertAnswer", mock.Anything, mock.Anything).Return(int64(1), nil).Maybe()
	f.history.On("CompleteSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.mastery.On("Upsert", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.prefetch.On("EnqueuePrefetch", mock.Anything).Return(nil).Maybe()
	return f
}

func (f *fixture) service(seed int64, loader catalog.PoolLoader) services.QuizService {
	if loader == nil {
		loader = stubLoader{meta: models.NewMetadata(f.pool)}
	}
	svc := services.NewQuizService(services.QuizDeps{
		Loader:        loader,
		Store:         f.store,
		History:       f.history,
		Mastery:       f.mastery,
		Prefetch:      f.prefetch,
		PrefetchAhead: 3,
		Rand:          rand.New(rand.NewSource(seed)),
		Clock:         f.clock.Now,
	})
	svc.Init(context.Background())
	return svc
}

func (f *fixture) categoryOf(id string) models.Category {
	for _, img := range f.pool {
		if img.ID == id {
			return img.Category
		}
	}
	return ""
}

func TestQuizService_InitCachesPool(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)

	assert.Equal(t, 30, svc.Pool().Stats.Total)

	var cached models.Metadata
	require.True(t, f.store.Get(context.Background(), storage.KeyMetadata, &cached))
	assert.Len(t, cached.Images, 30)

	// A later failing source falls back to the cached copy.
	again := f.service(1, stubLoader{err: errors.New("offline")})
	assert.Equal(t, 30, again.Pool().Stats.Total)
}

func TestQuizService_InitFiltersCachedPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cached := models.Metadata{Images: append(testutil.Images(3, 0),
		models.Image{ID: "IXI001-FLAIR", Filename: "IXI001-FLAIR.png", Category: "FLAIR"},
		models.Image{ID: "IXI002-T2", Filename: "IXI002-T2.png", Category: "t2"},
	)}
	require.NoError(t, f.store.Save(ctx, storage.KeyMetadata, cached))

	pool := f.service(1, stubLoader{err: errors.New("offline")}).Pool()
	assert.Equal(t, 4, pool.Stats.Total)
	assert.Equal(t, 1, pool.Stats.T2Count)
	for _, img := range pool.Images {
		assert.True(t, img.Category.Valid(), img.ID)
	}

	// Nothing usable in the cache means the built-in pool.
	require.NoError(t, f.store.Save(ctx, storage.KeyMetadata, models.Metadata{Images: []models.Image{
		{ID: "IXI001-FLAIR", Category: "FLAIR"},
	}}))
	assert.Equal(t, catalog.Fallback(), f.service(1, stubLoader{err: errors.New("offline")}).Pool())
}

func TestQuizService_InitFallsBackToBuiltInPool(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, stubLoader{err: errors.New("offline")})

	assert.Equal(t, catalog.Fallback(), svc.Pool())
	assert.Equal(t, models.PhaseSetup, svc.View(context.Background()).Phase)
}

func TestQuizService_StartValidatesLength(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)

	_, err := svc.Start(context.Background(), models.SessionLength(30))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestQuizService_SubmitValidatesLabel(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)

	_, err := svc.Submit(context.Background(), models.Category("PD"))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeValidation, appErr.Code)
}

func TestQuizService_FullSessionAllCorrect(t *testing.T) {
	f := newFixture(t)
	svc := f.service(7, nil)
	ctx := context.Background()

	view, err := svc.Start(ctx, 20)
	require.NoError(t, err)
	require.True(t, view.Applied)
	assert.Equal(t, models.PhaseQuestion, view.Phase)
	assert.Equal(t, 20, view.Target)
	assert.Equal(t, 1, view.Position)
	assert.NotEmpty(t, view.SessionID)
	require.NotNil(t, view.Current)
	assert.Empty(t, view.Current.Category, "category is hidden while the question is open")
	assert.Len(t, view.Upcoming, 3)

	for i := 0; i < 20; i++ {
		label := f.categoryOf(view.Current.ImageID)
		view, err = svc.Submit(ctx, label)
		require.NoError(t, err)
		require.True(t, view.Applied)
		assert.Equal(t, models.PhaseExplanation, view.Phase)
		assert.Equal(t, label, view.Current.Category)
		require.NotNil(t, view.LastAnswer)
		assert.True(t, view.LastAnswer.Correct)

		view, err = svc.Advance(ctx)
		require.NoError(t, err)
		require.True(t, view.Applied)
		require.NotNil(t, view.LastReview)
		assert.False(t, view.LastReview.Reinserted)
	}

	assert.Equal(t, models.PhaseResults, view.Phase)
	assert.Equal(t, 20, view.Score)
	assert.Equal(t, 20, view.TotalAnswered)

	f.history.AssertCalled(t, "InsertSession", mock.Anything, mock.MatchedBy(func(r models.SessionRecord) bool {
		return r.ID == view.SessionID && r.Target == 20 && r.SessionLength == "20"
	}))
	f.history.AssertNumberOfCalls(t, "InsertAnswer", 20)
	f.history.AssertCalled(t, "CompleteSession", mock.Anything, view.SessionID, 20, 20, f.clock.Now())
	f.mastery.AssertNumberOfCalls(t, "Upsert", 20)
	f.mastery.AssertCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(r models.MasteryRecord) bool {
		return r.Repetitions == 1 && r.TimesSeen == 1 && r.TimesCorrect == 1 && r.IntervalDays == 1
	}))

	summary := svc.Summary(ctx)
	assert.Equal(t, 100.0, summary.Summary.Percentage)
	assert.Equal(t, quiz.FeedbackOutstanding, summary.Summary.Feedback)
	assert.Empty(t, summary.Attempts, "only missed images are reviewed")
}

func TestQuizService_MissReinserts(t *testing.T) {
	f := newFixture(t)
	svc := f.service(3, nil)
	ctx := context.Background()

	view, err := svc.Start(ctx, 20)
	require.NoError(t, err)
	missed := view.Current.ImageID

	view, err = svc.Submit(ctx, f.categoryOf(missed).Other())
	require.NoError(t, err)
	assert.False(t, view.LastAnswer.Correct)

	view, err = svc.Advance(ctx)
	require.NoError(t, err)
	require.NotNil(t, view.LastReview)
	assert.True(t, view.LastReview.Reinserted)
	assert.Equal(t, missed, view.LastReview.ImageID)
	assert.GreaterOrEqual(t, view.LastReview.Position, 3)
	assert.LessOrEqual(t, view.LastReview.Position, 7)
	assert.NotEqual(t, missed, view.Current.ImageID)
	assert.Equal(t, 2, view.Position)

	f.mastery.AssertCalled(t, "Upsert", mock.Anything, mock.MatchedBy(func(r models.MasteryRecord) bool {
		return r.ImageID == missed && r.TimesCorrect == 0 && r.Repetitions == 0 && r.EaseFactor < 2.5
	}))

	summary := svc.Summary(ctx)
	require.Len(t, summary.Attempts, 1)
	assert.Equal(t, missed, summary.Attempts[0].ImageID)
	assert.Equal(t, quiz.StatusRepeatedFailure, summary.Attempts[0].Status)
	assert.Equal(t, 0.0, summary.Summary.Percentage)
}

func TestQuizService_InvalidPhaseActionsAreIgnored(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	ctx := context.Background()

	view, err := svc.Submit(ctx, models.CategoryT1)
	require.NoError(t, err)
	assert.False(t, view.Applied)
	assert.Equal(t, models.PhaseSetup, view.Phase)

	view, err = svc.Advance(ctx)
	require.NoError(t, err)
	assert.False(t, view.Applied)

	_, err = svc.Start(ctx, 20)
	require.NoError(t, err)
	view, err = svc.Start(ctx, 50)
	require.NoError(t, err)
	assert.False(t, view.Applied, "start is only valid during setup")
	assert.Equal(t, 20, view.Target)

	f.history.AssertNotCalled(t, "InsertAnswer", mock.Anything, mock.Anything)
}

func TestQuizService_RestoresPersistedSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.service(5, nil)
	view, err := first.Start(ctx, 20)
	require.NoError(t, err)
	view, err = first.Submit(ctx, f.categoryOf(view.Current.ImageID))
	require.NoError(t, err)

	second := f.service(9, nil)
	restored := second.View(ctx)

	assert.Equal(t, models.PhaseExplanation, restored.Phase)
	assert.Equal(t, view.SessionID, restored.SessionID)
	assert.Equal(t, view.Current.ImageID, restored.Current.ImageID)
	assert.Equal(t, 1, restored.Score)

	next, err := second.Advance(ctx)
	require.NoError(t, err)
	assert.True(t, next.Applied)
	assert.Equal(t, models.PhaseQuestion, next.Phase)
}

func TestQuizService_ResetPersistsSetup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := f.service(5, nil)
	_, err := svc.Start(ctx, 20)
	require.NoError(t, err)

	view := svc.Reset(ctx)
	assert.Equal(t, models.PhaseSetup, view.Phase)
	assert.Empty(t, view.SessionID)
	assert.Equal(t, quiz.DefaultLength, view.Length)

	again := f.service(5, nil)
	assert.Equal(t, models.PhaseSetup, again.View(ctx).Phase)
}

func TestQuizService_FinishCompletesSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(5, nil)

	view, err := svc.Start(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 30, view.Target, "target is capped by the pool size")

	view = svc.Finish(ctx)
	assert.Equal(t, models.PhaseResults, view.Phase)
	f.history.AssertCalled(t, "CompleteSession", mock.Anything, view.SessionID, 0, 0, mock.Anything)

	svc.Finish(ctx)
	f.history.AssertNumberOfCalls(t, "CompleteSession", 1)
}

func TestQuizService_CollaboratorFailuresAreNotFatal(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)

	history := new(mocks.MockHistoryRepository)
	history.On("InsertSession", mock.Anything, mock.Anything).Return(errors.New("locked"))
	history.On("InsertAnswer", mock.Anything, mock.Anything).Return(int64(0), errors.New("locked"))
	mastery := new(mocks.MockMasteryRepository)
	mastery.On("Upsert", mock.Anything, mock.Anything).Return(errors.New("locked"))
	prefetch := new(mocks.MockPrefetchQueue)
	prefetch.On("EnqueuePrefetch", mock.Anything).Return(errors.New("worker queue full"))

	pool := testutil.Images(5, 5)
	svc := services.NewQuizService(services.QuizDeps{
		Loader:        stubLoader{meta: models.NewMetadata(pool)},
		Store:         storage.New(sqlite.NewKVRepository(db), 0),
		History:       history,
		Mastery:       mastery,
		Prefetch:      prefetch,
		PrefetchAhead: 3,
		Rand:          rand.New(rand.NewSource(2)),
	})
	ctx := context.Background()
	svc.Init(ctx)

	view, err := svc.Start(ctx, models.SessionAll)
	require.NoError(t, err)
	assert.Equal(t, 10, view.Target)

	view, err = svc.Submit(ctx, models.CategoryT1)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseExplanation, view.Phase)

	view, err = svc.Advance(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseQuestion, view.Phase)
}

func TestQuizService_Explanation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(5, nil)

	_, err := svc.Explanation(ctx)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)

	view, err := svc.Start(ctx, 20)
	require.NoError(t, err)
	truth := f.categoryOf(view.Current.ImageID)
	_, err = svc.Submit(ctx, truth.Other())
	require.NoError(t, err)

	exp, err := svc.Explanation(ctx)
	require.NoError(t, err)
	assert.Equal(t, truth, exp.Category)
	assert.Contains(t, exp.Feedback, "This is a")
}

func TestQuizService_Mastery(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	filter := models.MasteryFilter{Category: "T1"}

	f.mastery.On("List", mock.Anything, filter).Return([]models.MasteryRecord{{ImageID: "IXI001-T1"}}, nil)
	f.mastery.On("Stats", mock.Anything, f.clock.Now()).Return([]models.MasteryStat{{Category: "T1", Images: 1}}, nil)

	view, err := svc.Mastery(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, view.Records, 1)
	assert.Equal(t, 1, view.Stats[0].Images)
}

func TestQuizService_MasteryError(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	f.mastery.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.Mastery(context.Background(), models.MasteryFilter{})
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
}

func TestQuizService_MasteryOf(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	ctx := context.Background()

	f.mastery.On("Get", mock.Anything, "IXI001-T1").Return(&models.MasteryRecord{ImageID: "IXI001-T1", TimesSeen: 2}, nil)
	f.mastery.On("Get", mock.Anything, "IXI404-T1").Return(nil, nil)
	f.mastery.On("Get", mock.Anything, "IXI500-T1").Return(nil, errors.New("boom"))

	rec, err := svc.MasteryOf(ctx, "IXI001-T1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.TimesSeen)

	_, err = svc.MasteryOf(ctx, "IXI404-T1")
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeNotFound, appErr.Code)

	_, err = svc.MasteryOf(ctx, "IXI500-T1")
	appErr, ok = apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
}

func TestQuizService_History(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	ctx := context.Background()

	sessions := []models.SessionRecord{{ID: "s2", Target: 10}, {ID: "s1", Target: 20}}
	f.history.On("RecentSessions", mock.Anything, 5).Return(sessions, nil)
	f.history.On("SessionAnswers", mock.Anything, "s2").Return([]models.AnswerHistory{
		{SessionID: "s2", ImageID: "IXI001-T1", Correct: true},
		{SessionID: "s2", ImageID: "IXI002-T2"},
	}, nil)
	f.history.On("SessionAnswers", mock.Anything, "s1").Return([]models.AnswerHistory{}, nil)

	got, err := svc.History(ctx, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s2", got[0].ID)
	assert.Len(t, got[0].Answers, 2)
	assert.Equal(t, "s1", got[1].ID)
	assert.Empty(t, got[1].Answers)
	f.history.AssertExpectations(t)
}

func TestQuizService_HistoryErrors(t *testing.T) {
	f := newFixture(t)
	svc := f.service(1, nil)
	ctx := context.Background()

	f.history.On("RecentSessions", mock.Anything, 1).Return([]models.SessionRecord{{ID: "s1"}}, nil)
	f.history.On("SessionAnswers", mock.Anything, "s1").Return(nil, errors.New("locked"))
	f.history.On("RecentSessions", mock.Anything, 2).Return(nil, errors.New("locked"))

	for _, limit := range []int{1, 2} {
		_, err := svc.History(ctx, limit)
		appErr, ok := apperrors.As(err)
		require.True(t, ok, "limit %d", limit)
		assert.Equal(t, apperrors.ErrCodeInternal, appErr.Code)
	}

	empty := services.NewQuizService(services.QuizDeps{Loader: stubLoader{meta: models.NewMetadata(f.pool)}, Store: f.store})
	got, err := empty.History(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQuizService_SerializesConcurrentActions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := f.service(11, nil)
	_, err := svc.Start(ctx, 20)
	require.NoError(t, err)

	var applied atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			view, err := svc.Submit(ctx, models.CategoryT1)
			assert.NoError(t, err)
			if view.Applied {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	assert.Equal(t, 1, svc.View(ctx).TotalAnswered)
}
