// Package app wires the quiz service and its collaborators from a Config.
// Both the HTTP server and the CLI build on it.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vytor/mriflash/internal/catalog"
	"github.com/vytor/mriflash/internal/config"
	"github.com/vytor/mriflash/internal/db"
	"github.com/vytor/mriflash/internal/images"
	"github.com/vytor/mriflash/internal/jobs"
	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/repository"
	"github.com/vytor/mriflash/internal/repository/sqlite"
	"github.com/vytor/mriflash/internal/services"
	"github.com/vytor/mriflash/internal/storage"
	"github.com/vytor/mriflash/internal/worker"
)

type App struct {
	Config      config.Config
	DB          *db.DB
	Images      *images.Cache
	Mastery     repository.MasteryRepository
	History     repository.HistoryRepository
	Quiz        services.QuizService
	Pool        *worker.Pool
	Maintenance *jobs.Maintenance
}

// New opens the database and builds the quiz service. The worker pool and
// maintenance job are not running until Start.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	log := logger.FromContext(ctx)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &App{
		Config:  cfg,
		DB:      database,
		Images:  images.NewCache(cfg.ImagesDir, cfg.ImageCacheSize),
		Mastery: sqlite.NewMasteryRepository(database.DB),
		History: sqlite.NewHistoryRepository(database.DB),
		Pool:    worker.NewPool(cfg.PrefetchWorkerCount, cfg.PrefetchQueueSize),
	}
	a.Maintenance = jobs.NewMaintenance(a.History, a.Mastery, cfg.Retention(),
		time.Duration(cfg.MaintenanceInterval)*time.Minute)

	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Debug("random_seed=%d", seed)

	a.Quiz = services.NewQuizService(services.QuizDeps{
		Loader:        catalog.NewLoader(cfg.MetadataSource),
		Store:         storage.New(sqlite.NewKVRepository(database.DB), int64(cfg.StorageQuotaBytes)),
		History:       a.History,
		Mastery:       a.Mastery,
		Prefetch:      jobs.NewWorkerQueue(a.Pool, a.Images, cfg.PrefetchRate),
		PrefetchAhead: cfg.PrefetchAhead,
		Rand:          rand.New(rand.NewSource(seed)),
	})
	return a, nil
}

// Start launches the prefetch workers, restores the session and schedules
// maintenance.
func (a *App) Start(ctx context.Context) error {
	a.Pool.Start(ctx)
	a.Quiz.Init(ctx)
	if a.Config.MaintenanceInterval > 0 {
		if err := a.Maintenance.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close stops background work and closes the database.
func (a *App) Close() error {
	log := logger.Default()
	log.Debug("stopping maintenance")
	a.Maintenance.Stop()
	log.Debug("stopping prefetch pool")
	a.Pool.Stop()
	log.Debug("closing database connection")
	return a.DB.Close()
}
