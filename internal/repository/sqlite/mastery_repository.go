package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/repository"
)

var masteryColumns = []string{
	"image_id", "category", "ease_factor", "interval_days", "repetitions",
	"consecutive_correct", "next_review_at", "last_seen_at", "times_seen",
	"times_correct", "updated_at",
}

var masteryOrder = map[string]string{
	"next_review_at": "next_review_at",
	"ease_factor":    "ease_factor",
	"times_seen":     "times_seen",
	"times_correct":  "times_correct",
	"image_id":       "image_id",
	"updated_at":     "updated_at",
}

type masteryRepository struct {
	db *sqlx.DB
}

// NewMasteryRepository creates a new MasteryRepository implementation
func NewMasteryRepository(db *sqlx.DB) repository.MasteryRepository {
	return &masteryRepository{db: db}
}

func (r *masteryRepository) Upsert(ctx context.Context, rec models.MasteryRecord) error {
	log := logger.FromContext(ctx).WithPrefix("mastery_repo")
	log.Debug("upserting mastery: image_id=%s, reps=%d, ease=%.2f", rec.ImageID, rec.Repetitions, rec.EaseFactor)

	rec.NextReviewAt = rec.NextReviewAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	if rec.LastSeenAt != nil {
		seen := rec.LastSeenAt.UTC()
		rec.LastSeenAt = &seen
	}

	_, err := r.db.NamedExecContext(ctx, `
INSERT INTO item_mastery (image_id, category, ease_factor, interval_days, repetitions, consecutive_correct,
    next_review_at, last_seen_at, times_seen, times_correct, updated_at)
VALUES (:image_id, :category, :ease_factor, :interval_days, :repetitions, :consecutive_correct,
    :next_review_at, :last_seen_at, :times_seen, :times_correct, :updated_at)
ON CONFLICT(image_id) DO UPDATE SET
    category = excluded.category,
    ease_factor = excluded.ease_factor,
    interval_days = excluded.interval_days,
    repetitions = excluded.repetitions,
    consecutive_correct = excluded.consecutive_correct,
    next_review_at = excluded.next_review_at,
    last_seen_at = excluded.last_seen_at,
    times_seen = item_mastery.times_seen + excluded.times_seen,
    times_correct = item_mastery.times_correct + excluded.times_correct,
    updated_at = excluded.updated_at
`, rec)
	if err != nil {
		log.Error("failed to upsert mastery for %s: %v", rec.ImageID, err)
	}
	return err
}

func (r *masteryRepository) Get(ctx context.Context, imageID string) (*models.MasteryRecord, error) {
	q, args, err := sqlBuilder.Select(masteryColumns...).
		From("item_mastery").
		Where(squirrel.Eq{"image_id": imageID}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rec models.MasteryRecord
	err = r.db.GetContext(ctx, &rec, q, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func applyMasteryFilter(query squirrel.SelectBuilder, filter models.MasteryFilter) squirrel.SelectBuilder {
	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.DueAt != nil {
		query = query.Where(squirrel.LtOrEq{"next_review_at": filter.DueAt.UTC()})
	}
	return query
}

func (r *masteryRepository) List(ctx context.Context, filter models.MasteryFilter) ([]models.MasteryRecord, error) {
	log := logger.FromContext(ctx).WithPrefix("mastery_repo")

	query := applyMasteryFilter(sqlBuilder.Select(masteryColumns...).From("item_mastery"), filter).
		OrderBy(orderClause(filter.OrderBy, filter.OrderDir, masteryOrder, "next_review_at ASC"), "image_id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
		if filter.Offset > 0 {
			query = query.Offset(uint64(filter.Offset))
		}
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}
	log.Debug("listing mastery: %s", q)

	records := []models.MasteryRecord{}
	if err := r.db.SelectContext(ctx, &records, q, args...); err != nil {
		log.Error("failed to list mastery: %v", err)
		return nil, err
	}
	return records, nil
}

func (r *masteryRepository) Count(ctx context.Context, filter models.MasteryFilter) (int, error) {
	q, args, err := applyMasteryFilter(sqlBuilder.Select("COUNT(*)").From("item_mastery"), filter).ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = r.db.GetContext(ctx, &n, q, args...)
	return n, err
}

func (r *masteryRepository) Stats(ctx context.Context, now time.Time) ([]models.MasteryStat, error) {
	q, args, err := sqlBuilder.Select(
		"category",
		"COUNT(*) AS images",
		"COALESCE(SUM(times_seen), 0) AS times_seen",
		"COALESCE(SUM(times_correct), 0) AS times_correct",
		"COALESCE(AVG(ease_factor), 0) AS avg_ease_factor",
	).
		Column(squirrel.Expr("COALESCE(SUM(CASE WHEN next_review_at <= ? THEN 1 ELSE 0 END), 0) AS due", now.UTC())).
		From("item_mastery").
		GroupBy("category").
		OrderBy("category").
		ToSql()
	if err != nil {
		return nil, err
	}

	stats := []models.MasteryStat{}
	if err := r.db.SelectContext(ctx, &stats, q, args...); err != nil {
		return nil, err
	}
	return stats, nil
}
