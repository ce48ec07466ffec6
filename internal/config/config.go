package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vytor/mriflash/internal/models"
)

type Config struct {
	Addr                 string
	DBPath               string
	ImagesDir            string
	MetadataSource       string
	LogLevel             string
	LogColors            bool
	DefaultSessionLength string
	PrefetchAhead        int
	PrefetchWorkerCount  int
	PrefetchQueueSize    int
	PrefetchRate         int
	ImageCacheSize       int
	HistoryRetentionDays int
	MaintenanceInterval  int
	StorageQuotaBytes    int
	RandomSeed           int64
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent.
	_ = godotenv.Load()

	return Config{
		Addr:                 envOr("ADDR", ":8080"),
		DBPath:               envOr("DB_PATH", "file:mriflash.db"),
		ImagesDir:            envOr("IMAGES_DIR", "web/images"),
		MetadataSource:       envOr("METADATA_SOURCE", "web/data/metadata.json"),
		LogLevel:             envOr("LOG_LEVEL", "INFO"),
		LogColors:            envBoolOr("LOG_COLORS", true),
		DefaultSessionLength: envOr("DEFAULT_SESSION_LENGTH", "20"),
		PrefetchAhead:        envIntOr("PREFETCH_AHEAD", 3),
		PrefetchWorkerCount:  envIntOr("PREFETCH_WORKER_COUNT", 2),
		PrefetchQueueSize:    envIntOr("PREFETCH_QUEUE_SIZE", 32),
		PrefetchRate:         envIntOr("PREFETCH_RATE", 20),
		ImageCacheSize:       envIntOr("IMAGE_CACHE_SIZE", 64),
		HistoryRetentionDays: envIntOr("HISTORY_RETENTION_DAYS", 90),
		MaintenanceInterval:  envIntOr("MAINTENANCE_INTERVAL_MINUTES", 60),
		StorageQuotaBytes:    envIntOr("STORAGE_QUOTA_BYTES", 5<<20),
		RandomSeed:           int64(envIntOr("RANDOM_SEED", 0)),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Addr) == "" {
		add("ADDR cannot be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		add("DB_PATH cannot be empty")
	}
	if strings.TrimSpace(c.MetadataSource) == "" {
		add("METADATA_SOURCE cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		add("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR, got %q", c.LogLevel)
	}
	if _, err := models.ParseSessionLength(c.DefaultSessionLength); err != nil {
		add("DEFAULT_SESSION_LENGTH: %v", err)
	}
	if c.PrefetchAhead < 0 {
		add("PREFETCH_AHEAD must be >= 0, got %d", c.PrefetchAhead)
	}
	if c.PrefetchWorkerCount < 1 {
		add("PREFETCH_WORKER_COUNT must be >= 1, got %d", c.PrefetchWorkerCount)
	}
	if c.PrefetchQueueSize < 1 {
		add("PREFETCH_QUEUE_SIZE must be >= 1, got %d", c.PrefetchQueueSize)
	}
	if c.PrefetchRate < 1 {
		add("PREFETCH_RATE must be >= 1, got %d", c.PrefetchRate)
	}
	if c.ImageCacheSize < 0 {
		add("IMAGE_CACHE_SIZE must be >= 0, got %d", c.ImageCacheSize)
	}
	if c.HistoryRetentionDays < 0 {
		add("HISTORY_RETENTION_DAYS must be >= 0, got %d", c.HistoryRetentionDays)
	}
	if c.MaintenanceInterval < 1 {
		add("MAINTENANCE_INTERVAL_MINUTES must be >= 1, got %d", c.MaintenanceInterval)
	}
	if c.StorageQuotaBytes < 1 {
		add("STORAGE_QUOTA_BYTES must be >= 1, got %d", c.StorageQuotaBytes)
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SessionLength is the parsed DEFAULT_SESSION_LENGTH, falling back to 20.
func (c Config) SessionLength() models.SessionLength {
	l, err := models.ParseSessionLength(c.DefaultSessionLength)
	if err != nil {
		return 20
	}
	return l
}

// Retention is the answer history horizon; zero disables pruning.
func (c Config) Retention() time.Duration {
	return time.Duration(c.HistoryRetentionDays) * 24 * time.Hour
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
