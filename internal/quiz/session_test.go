package quiz_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
)

var start = time.Date(2026, 5, 2, 18, 30, 0, 0, time.UTC)

func testClock() func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newSession(seed int64) *quiz.Session {
	return quiz.New(
		quiz.WithRand(rand.New(rand.NewSource(seed))),
		quiz.WithClock(testClock()),
	)
}

func fivePool() []models.Image {
	return []models.Image{
		{ID: "img1", Filename: "img1.png", Category: models.CategoryT1, Subject: "Subject1"},
		{ID: "img2", Filename: "img2.png", Category: models.CategoryT2, Subject: "Subject2"},
		{ID: "img3", Filename: "img3.png", Category: models.CategoryT1, Subject: "Subject3"},
		{ID: "img4", Filename: "img4.png", Category: models.CategoryT2, Subject: "Subject4"},
		{ID: "img5", Filename: "img5.png", Category: models.CategoryT1, Subject: "Subject5"},
	}
}

func ids(items []models.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Image.ID
	}
	return out
}

func TestSession_New(t *testing.T) {
	s := newSession(1)

	assert.Equal(t, models.PhaseSetup, s.Phase())
	assert.Equal(t, quiz.DefaultLength, s.Length())
	assert.Equal(t, quiz.ConditionOK, s.Condition())
	_, ok := s.Current()
	assert.False(t, ok)
}

func TestSession_EndToEnd(t *testing.T) {
	s := newSession(3)

	require.True(t, s.Start(20, fivePool()))
	assert.Equal(t, models.PhaseQuestion, s.Phase())
	assert.Len(t, s.Queue(), 5, "pool smaller than request")
	assert.Equal(t, 5, s.Target())
	assert.Equal(t, 0, s.Cursor())

	first, ok := s.Current()
	require.True(t, ok)

	require.True(t, s.Submit(first.Image.Category))
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, 1, s.TotalAnswered())
	assert.Equal(t, models.PhaseExplanation, s.Phase())

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, first.Image.ID, current.Image.ID, "current item is stable through the explanation")
	assert.Equal(t, 0, current.Repetitions, "queue is not touched on submit")

	require.True(t, s.Advance())
	assert.Equal(t, models.PhaseQuestion, s.Phase())
	assert.Equal(t, 1, s.Cursor())
	answered := s.Queue()[0]
	assert.Equal(t, first.Image.ID, answered.Image.ID)
	assert.Equal(t, 1, answered.Repetitions)

	second, ok := s.Current()
	require.True(t, ok)
	require.NotEqual(t, first.Image.ID, second.Image.ID)

	require.True(t, s.Submit(second.Image.Category.Other()))
	assert.Equal(t, 1, s.Score())
	assert.Equal(t, 2, s.TotalAnswered())

	require.True(t, s.Advance())
	assert.Equal(t, models.PhaseQuestion, s.Phase())
	assert.Equal(t, 1, s.Cursor(), "cursor stays put after a miss")

	queue := s.Queue()
	require.Len(t, queue, 5)
	assert.ElementsMatch(t, []string{"img1", "img2", "img3", "img4", "img5"}, ids(queue))
	// removed from index 1 of 5, pushed at least 3 ahead: always lands last
	moved := queue[4]
	assert.Equal(t, second.Image.ID, moved.Image.ID)
	assert.Equal(t, 0, moved.Repetitions)
	assert.Equal(t, 0, moved.ConsecutiveCorrect)
	assert.InDelta(t, 2.3, moved.EaseFactor, 1e-9)

	review, ok := s.LastReview()
	require.True(t, ok)
	assert.True(t, review.Reinserted)
	assert.False(t, review.Correct)
	assert.Equal(t, 4, review.Position)

	next, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, queue[1].Image.ID, next.Image.ID)
}

func TestSession_CurrentIsIdempotent(t *testing.T) {
	s := newSession(5)
	require.True(t, s.Start(models.SessionAll, fivePool()))

	a, okA := s.Current()
	b, okB := s.Current()

	assert.True(t, okA)
	assert.True(t, okB)
	assert.Equal(t, a, b)
}

func TestSession_InvalidTransitionsIgnored(t *testing.T) {
	s := newSession(9)

	assert.False(t, s.Submit(models.CategoryT1), "submit during setup")
	assert.False(t, s.Advance(), "advance during setup")
	assert.Equal(t, models.PhaseSetup, s.Phase())

	require.True(t, s.Start(20, fivePool()))
	before := s.Snapshot()

	assert.False(t, s.Start(50, fivePool()), "start during question")
	assert.False(t, s.Advance(), "advance during question")
	assert.Equal(t, before, s.Snapshot())

	item, _ := s.Current()
	require.True(t, s.Submit(item.Image.Category))
	afterSubmit := s.Snapshot()

	assert.False(t, s.Submit(models.CategoryT2), "double submit")
	assert.Equal(t, afterSubmit, s.Snapshot())
}

func TestSession_InvalidLabel(t *testing.T) {
	s := newSession(2)
	require.True(t, s.Start(20, fivePool()))

	assert.False(t, s.Submit(models.Category("FLAIR")))
	assert.Equal(t, models.PhaseQuestion, s.Phase())
	assert.Equal(t, 0, s.TotalAnswered())
}

func TestSession_EmptyPool(t *testing.T) {
	s := newSession(4)

	require.True(t, s.Start(20, nil))
	assert.Equal(t, models.PhaseQuestion, s.Phase())
	assert.Empty(t, s.Queue())
	assert.Equal(t, quiz.ConditionEmpty, s.Condition())

	_, ok := s.Current()
	assert.False(t, ok)
	assert.False(t, s.Submit(models.CategoryT1))

	s.Reset()
	assert.Equal(t, models.PhaseSetup, s.Phase())
	assert.Equal(t, quiz.ConditionOK, s.Condition())
}

func TestSession_AllCorrectReachesResults(t *testing.T) {
	s := newSession(12)
	require.True(t, s.Start(models.SessionAll, fivePool()))

	for i := 0; i < 5; i++ {
		item, ok := s.Current()
		require.True(t, ok)
		require.True(t, s.Submit(item.Image.Category))
		require.True(t, s.Advance())
	}

	assert.Equal(t, models.PhaseResults, s.Phase())
	assert.Equal(t, 5, s.Score())
	assert.Equal(t, 5, s.TotalAnswered())
	for _, item := range s.Queue() {
		assert.Equal(t, 1, item.Repetitions, "every item, including the last, is rescheduled")
	}
}

func TestSession_CompletesAfterTargetAnswers(t *testing.T) {
	s := newSession(21)
	require.True(t, s.Start(models.SessionAll, fivePool()))

	for i := 0; i < 5; i++ {
		item, ok := s.Current()
		require.True(t, ok, "answer %d", i)
		require.True(t, s.Submit(item.Image.Category.Other()))
		require.True(t, s.Advance())
	}

	assert.Equal(t, models.PhaseResults, s.Phase())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 5, s.TotalAnswered())
	assert.Len(t, s.Answers(), 5)
	assert.Len(t, s.Queue(), 5)
}

func TestSession_MissedItemResurfaces(t *testing.T) {
	pool := make([]models.Image, 0, 20)
	for i := 0; i < 10; i++ {
		pool = append(pool,
			models.Image{ID: "t1-" + string(rune('a'+i)), Category: models.CategoryT1},
			models.Image{ID: "t2-" + string(rune('a'+i)), Category: models.CategoryT2},
		)
	}
	s := newSession(33)
	require.True(t, s.Start(20, pool))

	missed, _ := s.Current()
	require.True(t, s.Submit(missed.Image.Category.Other()))
	require.True(t, s.Advance())

	seenAgain := false
	for i := 0; i < 8 && s.Phase() == models.PhaseQuestion; i++ {
		item, ok := s.Current()
		require.True(t, ok)
		if item.Image.ID == missed.Image.ID {
			seenAgain = true
			assert.NotNil(t, item.LastSeenAt)
			break
		}
		require.True(t, s.Submit(item.Image.Category))
		require.True(t, s.Advance())
	}

	assert.True(t, seenAgain, "missed item should come back within 3 to 7 questions")
}

func TestSession_Finish(t *testing.T) {
	for _, phase := range []string{"setup", "question", "explanation"} {
		t.Run(phase, func(t *testing.T) {
			s := newSession(6)
			if phase != "setup" {
				require.True(t, s.Start(20, fivePool()))
			}
			if phase == "explanation" {
				item, _ := s.Current()
				require.True(t, s.Submit(item.Image.Category))
			}

			s.Finish()

			assert.Equal(t, models.PhaseResults, s.Phase())
		})
	}
}

func TestSession_Reset(t *testing.T) {
	s := newSession(8)
	require.True(t, s.Start(50, fivePool()))
	item, _ := s.Current()
	require.True(t, s.Submit(item.Image.Category))
	s.Finish()

	s.Reset()

	assert.Equal(t, models.PhaseSetup, s.Phase())
	assert.Empty(t, s.Queue())
	assert.Empty(t, s.Answers())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, 0, s.TotalAnswered())
	assert.Equal(t, quiz.DefaultLength, s.Length())
	_, ok := s.LastAnswer()
	assert.False(t, ok)

	assert.True(t, s.Start(20, fivePool()), "a reset session can start again")
}

func TestSession_Upcoming(t *testing.T) {
	s := newSession(10)
	require.True(t, s.Start(models.SessionAll, fivePool()))

	queue := s.Queue()
	assert.Equal(t, ids(queue[1:4]), ids(s.Upcoming(3)))
	assert.Equal(t, ids(queue[1:]), ids(s.Upcoming(10)))
	assert.Nil(t, s.Upcoming(0))
}

func TestSession_AnswerRecord(t *testing.T) {
	s := newSession(14)
	require.True(t, s.Start(20, fivePool()))
	item, _ := s.Current()

	require.True(t, s.Submit(item.Image.Category.Other()))

	last, ok := s.LastAnswer()
	require.True(t, ok)
	assert.Equal(t, item.Image.ID, last.ImageID)
	assert.Equal(t, item.Image.Category.Other(), last.UserAnswer)
	assert.Equal(t, item.Image.Category, last.CorrectAnswer)
	assert.False(t, last.Correct)
	assert.True(t, last.AnsweredAt.After(start))
}

func TestSession_StartDoesNotReorderPool(t *testing.T) {
	pool := fivePool()
	s := newSession(15)

	require.True(t, s.Start(20, pool))

	assert.Equal(t, fivePool(), pool)
}
