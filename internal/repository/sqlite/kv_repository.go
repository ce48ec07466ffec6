package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/repository"
)

type kvRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new KVRepository implementation
func NewKVRepository(db *sqlx.DB) repository.KVRepository {
	return &kvRepository{db: db}
}

func (r *kvRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := r.db.GetContext(ctx, &value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_repo").Error("failed to get key %s: %v", key, err)
		return nil, false, err
	}
	return value, true, nil
}

func (r *kvRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
`, key, value, time.Now().UTC())
	if err != nil {
		logger.FromContext(ctx).WithPrefix("kv_repo").Error("failed to set key %s: %v", key, err)
	}
	return err
}

func (r *kvRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, key)
	return err
}

func (r *kvRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := sqlBuilder.Select("key").From("kv_store").OrderBy("key")
	if prefix != "" {
		query = query.Where(squirrel.Expr(`key LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%"))
	}
	q, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	var keys []string
	if err := r.db.SelectContext(ctx, &keys, q, args...); err != nil {
		return nil, err
	}
	return keys, nil
}

func (r *kvRepository) Size(ctx context.Context, exceptKey string) (int64, error) {
	q, args, err := sqlBuilder.
		Select("COALESCE(SUM(LENGTH(value)), 0)").
		From("kv_store").
		Where(squirrel.NotEq{"key": exceptKey}).
		ToSql()
	if err != nil {
		return 0, err
	}

	var size int64
	if err := r.db.GetContext(ctx, &size, q, args...); err != nil {
		return 0, err
	}
	return size, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
