// Package storage is a best-effort JSON key/value store for quiz state.
// Reads fall back to the caller's default and writes never fail loudly.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/repository"
)

const (
	// KeyPrefix marks keys owned by the quiz. Only these are cleared to make room.
	KeyPrefix = "quiz-"

	KeyState    = KeyPrefix + "state"
	KeyMetadata = KeyPrefix + "metadata"
)

// ErrQuotaExceeded is returned when a write would push the store past its quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

type Store struct {
	kv    repository.KVRepository
	quota int64
}

// New returns a store over kv. A quota <= 0 disables the size check.
func New(kv repository.KVRepository, quota int64) *Store {
	return &Store{kv: kv, quota: quota}
}

// Get decodes the value at key into dst. It reports false, leaving dst
// alone, when the key is missing, unreadable, or not valid JSON.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	log := logger.FromContext(ctx).WithPrefix("storage").WithField("key", key)

	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		log.Warn("read failed, using default: %v", err)
		return false
	}
	if !found {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Warn("corrupt value, using default: %v", err)
		return false
	}
	return true
}

// Set stores v under key. Failures are logged and otherwise ignored.
func (s *Store) Set(ctx context.Context, key string, v any) {
	if err := s.Save(ctx, key, v); err != nil {
		logger.FromContext(ctx).WithPrefix("storage").WithField("key", key).Warn("write failed: %v", err)
	}
}

// Save is Set with the error returned. When the quota is exceeded the other
// quiz keys are cleared and the write is retried once.
func (s *Store) Save(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	err = s.write(ctx, key, raw)
	if !errors.Is(err, ErrQuotaExceeded) {
		return err
	}

	log := logger.FromContext(ctx).WithPrefix("storage").WithField("key", key)
	log.Warn("quota exceeded, clearing other %s keys and retrying", KeyPrefix)
	if err := s.clearOthers(ctx, key); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	return s.write(ctx, key, raw)
}

func (s *Store) write(ctx context.Context, key string, raw []byte) error {
	if s.quota > 0 {
		used, err := s.kv.Size(ctx, key)
		if err != nil {
			return err
		}
		if used+int64(len(raw)) > s.quota {
			return fmt.Errorf("%w: %d bytes used, %d requested, quota %d", ErrQuotaExceeded, used, len(raw), s.quota)
		}
	}
	return s.kv.Set(ctx, key, raw)
}

func (s *Store) clearOthers(ctx context.Context, keep string) error {
	keys, err := s.kv.Keys(ctx, KeyPrefix)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if k == keep || !strings.HasPrefix(k, KeyPrefix) {
			continue
		}
		if err := s.kv.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}
