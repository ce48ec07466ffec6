package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/mriflash/internal/catalog"
	"github.com/vytor/mriflash/internal/errors"
	"github.com/vytor/mriflash/internal/explain"
	"github.com/vytor/mriflash/internal/jobs"
	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/quiz"
	"github.com/vytor/mriflash/internal/repository"
	"github.com/vytor/mriflash/internal/scheduler"
	"github.com/vytor/mriflash/internal/storage"
)

// QuizService is the single controller for the learner's quiz session.
// Actions are serialized: each runs its transition and side effects to
// completion before the next one starts.
type QuizService interface {
	// Init loads the item pool and restores a persisted session.
	Init(ctx context.Context)
	View(ctx context.Context) SessionView
	Start(ctx context.Context, length models.SessionLength) (SessionView, error)
	Submit(ctx context.Context, label models.Category) (SessionView, error)
	Advance(ctx context.Context) (SessionView, error)
	Finish(ctx context.Context) SessionView
	Reset(ctx context.Context) SessionView
	Summary(ctx context.Context) SummaryView
	Explanation(ctx context.Context) (explain.Explanation, error)
	Mastery(ctx context.Context, filter models.MasteryFilter) (MasteryView, error)
	MasteryOf(ctx context.Context, imageID string) (models.MasteryRecord, error)
	// History returns up to limit recorded sessions, newest first, each with
	// its answers. limit <= 0 means all.
	History(ctx context.Context, limit int) ([]SessionHistoryView, error)
	Pool() models.Metadata
}

// QuizDeps are the collaborators of a QuizService. Only Loader and Store
// are required.
type QuizDeps struct {
	Loader        catalog.PoolLoader
	Store         *storage.Store
	History       repository.HistoryRepository
	Mastery       repository.MasteryRepository
	Prefetch      jobs.PrefetchQueue
	PrefetchAhead int
	Rand          scheduler.Rand
	Clock         func() time.Time
}

// storedState is what is persisted under storage.KeyState.
type storedState struct {
	SessionID string `json:"session_id,omitempty"`
	quiz.Snapshot
}

type quizService struct {
	mu        sync.Mutex
	deps      QuizDeps
	session   *quiz.Session
	sessionID string
	pool      models.Metadata
	clock     func() time.Time
}

// NewQuizService creates a new QuizService. Call Init before use.
func NewQuizService(deps QuizDeps) QuizService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	s := &quizService{deps: deps, clock: deps.Clock}
	s.session = quiz.New(s.sessionOptions()...)
	return s
}

func (s *quizService) sessionOptions() []quiz.Option {
	opts := []quiz.Option{quiz.WithClock(s.clock)}
	if s.deps.Rand != nil {
		opts = append(opts, quiz.WithRand(s.deps.Rand))
	}
	return opts
}

func (s *quizService) Init(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	s.pool = s.loadPool(ctx)

	var state storedState
	if !s.deps.Store.Get(ctx, storage.KeyState, &state) {
		return
	}
	if state.Phase == "" || state.Phase == models.PhaseSetup {
		return
	}
	s.session = quiz.Restore(state.Snapshot, s.sessionOptions()...)
	if s.session.Phase() == models.PhaseSetup {
		log.Warn("discarded invalid persisted session")
		return
	}
	s.sessionID = state.SessionID
	log.Info("restored session %s in phase %s (%d/%d answered)", s.sessionID, s.session.Phase(), s.session.TotalAnswered(), s.session.Target())
	s.prefetch(ctx)
}

// loadPool prefers the metadata source, then the cached copy, then the
// built-in fallback.
func (s *quizService) loadPool(ctx context.Context) models.Metadata {
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	meta, err := s.deps.Loader.Load(ctx)
	if err == nil {
		s.deps.Store.Set(ctx, storage.KeyMetadata, meta)
		return meta
	}
	log.Warn("failed to load item pool: %v", err)

	var cached models.Metadata
	if s.deps.Store.Get(ctx, storage.KeyMetadata, &cached) {
		if clean := catalog.Clean(cached.Images); len(clean.Images) > 0 {
			log.Info("using cached item pool (%d images)", len(clean.Images))
			return clean
		}
	}
	log.Warn("using built-in fallback pool")
	return catalog.Fallback()
}

func (s *quizService) View(ctx context.Context) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(true)
}

func (s *quizService) Start(ctx context.Context, length models.SessionLength) (SessionView, error) {
	if !length.Valid() {
		return SessionView{}, errors.NewValidationError("length", "must be one of 20, 50, 100, all")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	if !s.session.Start(length, s.pool.Images) {
		log.Debug("start ignored in phase %s", s.session.Phase())
		return s.view(false), nil
	}

	s.sessionID = uuid.NewString()
	log.Info("started session %s: length=%s, target=%d", s.sessionID, length, s.session.Target())

	if s.deps.History != nil {
		err := s.deps.History.InsertSession(ctx, models.SessionRecord{
			ID:            s.sessionID,
			SessionLength: length.String(),
			Target:        s.session.Target(),
			StartedAt:     s.clock(),
		})
		if err != nil {
			log.Warn("failed to record session start: %v", err)
		}
	}

	if cur, ok := s.session.Current(); ok {
		s.enqueue(ctx, cur.Image)
	}
	s.prefetch(ctx)
	s.persist(ctx)
	return s.view(true), nil
}

func (s *quizService) Submit(ctx context.Context, label models.Category) (SessionView, error) {
	if !label.Valid() {
		return SessionView{}, errors.NewValidationError("label", "must be T1 or T2")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	if !s.session.Submit(label) {
		log.Debug("submit ignored in phase %s", s.session.Phase())
		return s.view(false), nil
	}

	last, _ := s.session.LastAnswer()
	log.Debug("answer %s for %s (correct=%t)", label, last.ImageID, last.Correct)

	if s.deps.History != nil && s.sessionID != "" {
		_, err := s.deps.History.InsertAnswer(ctx, models.AnswerHistory{
			SessionID:     s.sessionID,
			ImageID:       last.ImageID,
			UserAnswer:    string(last.UserAnswer),
			CorrectAnswer: string(last.CorrectAnswer),
			Correct:       last.Correct,
			AnsweredAt:    last.AnsweredAt,
		})
		if err != nil {
			log.Warn("failed to record answer: %v", err)
		}
	}

	s.persist(ctx)
	return s.view(true), nil
}

func (s *quizService) Advance(ctx context.Context) (SessionView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	if s.session.Phase() == models.PhaseExplanation && s.session.Condition() == quiz.ConditionInconsistent {
		// Advance still succeeds when the target is already met.
		if s.session.TotalAnswered() < s.session.Target() {
			return s.view(false), errors.NewInvalidStateError("no answer to apply for the current item; reset the session")
		}
	}

	if !s.session.Advance() {
		log.Debug("advance ignored in phase %s", s.session.Phase())
		return s.view(false), nil
	}

	if review, ok := s.session.LastReview(); ok && s.deps.Mastery != nil {
		rec := models.MasteryFromItem(review.Item, review.Correct, s.clock())
		if err := s.deps.Mastery.Upsert(ctx, rec); err != nil {
			log.Warn("failed to record mastery for %s: %v", rec.ImageID, err)
		}
	}

	if s.session.Phase() == models.PhaseResults {
		s.complete(ctx)
	} else {
		s.prefetch(ctx)
	}
	s.persist(ctx)
	return s.view(true), nil
}

func (s *quizService) Finish(ctx context.Context) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasResults := s.session.Phase() == models.PhaseResults
	s.session.Finish()
	if !wasResults {
		s.complete(ctx)
	}
	s.persist(ctx)
	return s.view(true)
}

func (s *quizService) Reset(ctx context.Context) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session.Reset()
	s.sessionID = ""
	s.persist(ctx)
	logger.FromContext(ctx).WithPrefix("quiz_service").Debug("session reset")
	return s.view(true)
}

func (s *quizService) Summary(ctx context.Context) SummaryView {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers := s.session.Answers()

	// The attempt review covers images missed at least once.
	missed := make(map[string]bool)
	for _, a := range answers {
		if !a.Correct {
			missed[a.ImageID] = true
		}
	}
	var reviewed []models.AnswerRecord
	for _, a := range answers {
		if missed[a.ImageID] {
			reviewed = append(reviewed, a)
		}
	}

	attempts := quiz.GroupAnswers(reviewed, s.pool.Images)
	if attempts == nil {
		attempts = []quiz.AttemptGroup{}
	}
	return SummaryView{
		SessionID: s.sessionID,
		Summary:   quiz.Summarize(s.session.Score(), s.session.TotalAnswered(), answers),
		Attempts:  attempts,
	}
}

func (s *quizService) Explanation(ctx context.Context) (explain.Explanation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.session.LastAnswer()
	if !ok {
		return explain.Explanation{}, errors.NewNotFoundError("answer", "last")
	}
	return explain.For(last.CorrectAnswer, last.Correct), nil
}

func (s *quizService) Mastery(ctx context.Context, filter models.MasteryFilter) (MasteryView, error) {
	if s.deps.Mastery == nil {
		return MasteryView{Records: []models.MasteryRecord{}, Stats: []models.MasteryStat{}}, nil
	}
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	records, err := s.deps.Mastery.List(ctx, filter)
	if err != nil {
		log.Error("failed to list mastery: %v", err)
		return MasteryView{}, errors.NewInternalError(err)
	}
	stats, err := s.deps.Mastery.Stats(ctx, s.clock())
	if err != nil {
		log.Error("failed to load mastery stats: %v", err)
		return MasteryView{}, errors.NewInternalError(err)
	}
	return MasteryView{Records: records, Stats: stats}, nil
}

func (s *quizService) MasteryOf(ctx context.Context, imageID string) (models.MasteryRecord, error) {
	if s.deps.Mastery == nil {
		return models.MasteryRecord{}, errors.NewNotFoundError("mastery", imageID)
	}
	rec, err := s.deps.Mastery.Get(ctx, imageID)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("quiz_service").Error("failed to load mastery for %s: %v", imageID, err)
		return models.MasteryRecord{}, errors.NewInternalError(err)
	}
	if rec == nil {
		return models.MasteryRecord{}, errors.NewNotFoundError("mastery", imageID)
	}
	return *rec, nil
}

func (s *quizService) History(ctx context.Context, limit int) ([]SessionHistoryView, error) {
	out := []SessionHistoryView{}
	if s.deps.History == nil {
		return out, nil
	}
	log := logger.FromContext(ctx).WithPrefix("quiz_service")

	sessions, err := s.deps.History.RecentSessions(ctx, limit)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for _, sess := range sessions {
		answers, err := s.deps.History.SessionAnswers(ctx, sess.ID)
		if err != nil {
			log.Error("failed to list answers for session %s: %v", sess.ID, err)
			return nil, errors.NewInternalError(err)
		}
		out = append(out, SessionHistoryView{SessionRecord: sess, Answers: answers})
	}
	return out, nil
}

func (s *quizService) Pool() models.Metadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.Metadata{
		Images: append([]models.Image(nil), s.pool.Images...),
		Stats:  s.pool.Stats,
	}
}

// complete marks the recorded session finished. Callers hold s.mu.
func (s *quizService) complete(ctx context.Context) {
	if s.deps.History == nil || s.sessionID == "" {
		return
	}
	err := s.deps.History.CompleteSession(ctx, s.sessionID, s.session.Score(), s.session.TotalAnswered(), s.clock())
	if err != nil {
		logger.FromContext(ctx).WithPrefix("quiz_service").Warn("failed to record session completion: %v", err)
	}
}

// persist writes the session snapshot through. Callers hold s.mu.
func (s *quizService) persist(ctx context.Context) {
	s.deps.Store.Set(ctx, storage.KeyState, storedState{
		SessionID: s.sessionID,
		Snapshot:  s.session.Snapshot(),
	})
}

// prefetch queues the next few images. Callers hold s.mu.
func (s *quizService) prefetch(ctx context.Context) {
	for _, item := range s.session.Upcoming(s.deps.PrefetchAhead) {
		s.enqueue(ctx, item.Image)
	}
}

func (s *quizService) enqueue(ctx context.Context, img models.Image) {
	if s.deps.Prefetch == nil {
		return
	}
	if err := s.deps.Prefetch.EnqueuePrefetch(img); err != nil {
		logger.FromContext(ctx).WithPrefix("quiz_service").Debug("prefetch of %s dropped: %v", img.ID, err)
	}
}
