// Package quiz holds the session state machine that drives one quiz attempt:
// setup, question, explanation, results.
package quiz

import (
	"math/rand"
	"time"

	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/scheduler"
)

// DefaultLength is the session length a fresh or reset session reports.
const DefaultLength models.SessionLength = 20

// Condition tells the presentation layer whether the session can be shown.
type Condition string

const (
	ConditionOK Condition = "ok"
	// ConditionEmpty means a question is expected but the queue is empty.
	ConditionEmpty Condition = "empty"
	// ConditionInconsistent means the current item or last answer is missing
	// where the phase requires one. The way out is Reset.
	ConditionInconsistent Condition = "inconsistent"
)

// Review is the scheduling outcome of the last Advance.
type Review struct {
	Item       models.Item
	Correct    bool
	Reinserted bool
	// Position is the item's queue index after the update.
	Position int
}

// Session is one quiz attempt. Transitions called from the wrong phase are
// ignored and report false. A Session is not safe for concurrent use.
type Session struct {
	phase   models.Phase
	queue   []models.Item
	cursor  int
	length  models.SessionLength
	target  int
	answers []models.AnswerRecord
	score   int
	total   int
	review  *Review

	rng   scheduler.Rand
	clock func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for shuffling and reinsertion.
func WithRand(rng scheduler.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithClock sets the time source.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) {
		s.clock = clock
	}
}

// New returns a session in the setup phase.
func New(opts ...Option) *Session {
	s := &Session{
		phase:  models.PhaseSetup,
		length: DefaultLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Start builds the queue from pool and moves to the first question.
// Valid only during setup.
func (s *Session) Start(length models.SessionLength, pool []models.Image) bool {
	if s.phase != models.PhaseSetup {
		return false
	}

	shuffled := append([]models.Image(nil), pool...)
	scheduler.Shuffle(shuffled, s.rng)

	s.queue = scheduler.BuildQueue(shuffled, length, s.clock(), s.rng)
	s.cursor = 0
	s.length = length
	s.target = len(s.queue)
	s.answers = nil
	s.score = 0
	s.total = 0
	s.review = nil
	s.phase = models.PhaseQuestion
	return true
}

// Submit records an answer for the current item and moves to the
// explanation. The queue is left alone until Advance.
func (s *Session) Submit(label models.Category) bool {
	if s.phase != models.PhaseQuestion || !label.Valid() {
		return false
	}
	item, ok := s.Current()
	if !ok {
		return false
	}

	correct := label == item.Image.Category
	s.answers = append(s.answers, models.AnswerRecord{
		ImageID:       item.Image.ID,
		UserAnswer:    label,
		CorrectAnswer: item.Image.Category,
		Correct:       correct,
		AnsweredAt:    s.clock(),
	})
	s.total++
	if correct {
		s.score++
	}
	s.phase = models.PhaseExplanation
	return true
}

// Advance applies the last answer to the current item's schedule and moves to
// the next question, or to results once the target is reached. A missed item
// is pushed 3 to 7 places ahead and the cursor stays put, so the item behind
// it becomes current.
func (s *Session) Advance() bool {
	if s.phase != models.PhaseExplanation {
		return false
	}
	item, last, ok := s.pending()
	if !ok {
		if s.total >= s.target {
			s.phase = models.PhaseResults
			return true
		}
		return false
	}

	now := s.clock()
	updated := scheduler.Update(item, last.Correct, now)
	queue := append([]models.Item(nil), s.queue...)
	queue[s.cursor] = updated
	review := Review{Item: updated, Correct: last.Correct, Position: s.cursor}

	// The last answer still updates the schedule, but the queue is final.
	if s.total >= s.target {
		s.queue = queue
		s.review = &review
		s.phase = models.PhaseResults
		return true
	}

	if last.Correct {
		s.cursor++
	} else {
		offset := scheduler.ReinsertOffset(s.rng)
		queue = scheduler.Reinsert(queue, s.cursor, offset)
		review.Reinserted = true
		review.Position = min(s.cursor+offset, len(queue)-1)
	}
	s.queue = queue
	s.review = &review
	s.phase = models.PhaseQuestion
	return true
}

// Finish jumps straight to results from any phase.
func (s *Session) Finish() {
	s.phase = models.PhaseResults
}

// Reset clears the session back to setup from any phase.
func (s *Session) Reset() {
	s.phase = models.PhaseSetup
	s.queue = nil
	s.cursor = 0
	s.length = DefaultLength
	s.target = 0
	s.answers = nil
	s.score = 0
	s.total = 0
	s.review = nil
}

// pending returns the item and answer an Advance would apply.
func (s *Session) pending() (models.Item, models.AnswerRecord, bool) {
	item, ok := s.Current()
	if !ok || len(s.answers) == 0 {
		return models.Item{}, models.AnswerRecord{}, false
	}
	last := s.answers[len(s.answers)-1]
	if last.ImageID != item.Image.ID {
		return models.Item{}, models.AnswerRecord{}, false
	}
	return item, last, true
}

// Current returns the item under the cursor, or false when there is none.
func (s *Session) Current() (models.Item, bool) {
	if s.cursor < 0 || s.cursor >= len(s.queue) {
		return models.Item{}, false
	}
	return s.queue[s.cursor], true
}

// Condition reports whether the current phase has what it needs.
func (s *Session) Condition() Condition {
	switch s.phase {
	case models.PhaseQuestion:
		if len(s.queue) == 0 {
			return ConditionEmpty
		}
		if _, ok := s.Current(); !ok {
			return ConditionInconsistent
		}
	case models.PhaseExplanation:
		if _, _, ok := s.pending(); !ok {
			return ConditionInconsistent
		}
	}
	return ConditionOK
}

// LastAnswer returns the most recent answer record.
func (s *Session) LastAnswer() (models.AnswerRecord, bool) {
	if len(s.answers) == 0 {
		return models.AnswerRecord{}, false
	}
	return s.answers[len(s.answers)-1], true
}

// LastReview returns what the most recent Advance did to the schedule.
func (s *Session) LastReview() (Review, bool) {
	if s.review == nil {
		return Review{}, false
	}
	return *s.review, true
}

func (s *Session) Phase() models.Phase          { return s.phase }
func (s *Session) Score() int                   { return s.score }
func (s *Session) TotalAnswered() int           { return s.total }
func (s *Session) Length() models.SessionLength { return s.length }
func (s *Session) Target() int                  { return s.target }
func (s *Session) Cursor() int                  { return s.cursor }

// Answers returns a copy of the answer log in submission order.
func (s *Session) Answers() []models.AnswerRecord {
	return append([]models.AnswerRecord(nil), s.answers...)
}

// Queue returns a copy of the session queue.
func (s *Session) Queue() []models.Item {
	return append([]models.Item(nil), s.queue...)
}

// Upcoming returns up to n items after the cursor.
func (s *Session) Upcoming(n int) []models.Item {
	start := s.cursor + 1
	if start >= len(s.queue) || n <= 0 {
		return nil
	}
	end := min(start+n, len(s.queue))
	return append([]models.Item(nil), s.queue[start:end]...)
}
