package repository

import (
	"context"
	"time"

	"github.com/vytor/mriflash/internal/models"
)

// KVRepository is a raw key/value store.
type KVRepository interface {
	// Get returns found=false when the key does not exist.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Size is the total stored value bytes, not counting exceptKey.
	Size(ctx context.Context, exceptKey string) (int64, error)
}

// MasteryRepository handles cross-session scheduling state per image
type MasteryRepository interface {
	// Upsert replaces the scheduling fields and adds the record's
	// TimesSeen/TimesCorrect to the stored counters.
	Upsert(ctx context.Context, record models.MasteryRecord) error
	Get(ctx context.Context, imageID string) (*models.MasteryRecord, error)
	List(ctx context.Context, filter models.MasteryFilter) ([]models.MasteryRecord, error)
	Count(ctx context.Context, filter models.MasteryFilter) (int, error)
	Stats(ctx context.Context, now time.Time) ([]models.MasteryStat, error)
}

// HistoryRepository handles sessions and their answer log
type HistoryRepository interface {
	InsertSession(ctx context.Context, session models.SessionRecord) error
	CompleteSession(ctx context.Context, id string, score, totalAnswered int, completedAt time.Time) error
	InsertAnswer(ctx context.Context, answer models.AnswerHistory) (int64, error)
	SessionAnswers(ctx context.Context, sessionID string) ([]models.AnswerHistory, error)
	RecentSessions(ctx context.Context, limit int) ([]models.SessionRecord, error)
	// PruneBefore deletes answers older than cutoff, then sessions left
	// without answers that started before cutoff.
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
