package sqlite

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/repository"
)

type historyRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new HistoryRepository implementation
func NewHistoryRepository(db *sqlx.DB) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) InsertSession(ctx context.Context, s models.SessionRecord) error {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	log.Debug("inserting session: id=%s, length=%s, target=%d", s.ID, s.SessionLength, s.Target)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (id, session_length, target, score, total_answered, started_at)
VALUES (?, ?, ?, ?, ?, ?)
`, s.ID, s.SessionLength, s.Target, s.Score, s.TotalAnswered, s.StartedAt.UTC())
	if err != nil {
		log.Error("failed to insert session %s: %v", s.ID, err)
	}
	return err
}

func (r *historyRepository) CompleteSession(ctx context.Context, id string, score, totalAnswered int, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
UPDATE sessions SET score = ?, total_answered = ?, completed_at = ?
WHERE id = ?
`, score, totalAnswered, completedAt.UTC(), id)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("history_repo").Error("failed to complete session %s: %v", id, err)
	}
	return err
}

func (r *historyRepository) InsertAnswer(ctx context.Context, a models.AnswerHistory) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO answer_history (session_id, image_id, user_answer, correct_answer, correct, answered_at)
VALUES (?, ?, ?, ?, ?, ?)
`, a.SessionID, a.ImageID, a.UserAnswer, a.CorrectAnswer, a.Correct, a.AnsweredAt.UTC())
	if err != nil {
		logger.FromContext(ctx).WithPrefix("history_repo").Error("failed to insert answer for %s: %v", a.ImageID, err)
		return 0, err
	}
	return res.LastInsertId()
}

func (r *historyRepository) SessionAnswers(ctx context.Context, sessionID string) ([]models.AnswerHistory, error) {
	q, args, err := sqlBuilder.
		Select("id", "session_id", "image_id", "user_answer", "correct_answer", "correct", "answered_at").
		From("answer_history").
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	answers := []models.AnswerHistory{}
	if err := r.db.SelectContext(ctx, &answers, q, args...); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *historyRepository) RecentSessions(ctx context.Context, limit int) ([]models.SessionRecord, error) {
	query := sqlBuilder.
		Select("id", "session_length", "target", "score", "total_answered", "started_at", "completed_at").
		From("sessions").
		OrderBy("started_at DESC", "id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	sessions := []models.SessionRecord{}
	if err := r.db.SelectContext(ctx, &sessions, q, args...); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *historyRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("history_repo")
	cutoff = cutoff.UTC()

	var pruned int64
	err := tx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM answer_history WHERE answered_at < ?`, cutoff)
		if err != nil {
			return err
		}
		if pruned, err = res.RowsAffected(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
DELETE FROM sessions
WHERE started_at < ?
AND NOT EXISTS (SELECT 1 FROM answer_history a WHERE a.session_id = sessions.id)
`, cutoff)
		return err
	})
	if err != nil {
		log.Error("failed to prune history before %s: %v", cutoff.Format(time.RFC3339), err)
		return 0, err
	}
	log.Info("pruned %d answers older than %s", pruned, cutoff.Format(time.RFC3339))
	return pruned, nil
}
