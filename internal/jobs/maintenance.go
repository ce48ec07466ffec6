package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/mriflash/internal/logger"
	"github.com/vytor/mriflash/internal/models"
	"github.com/vytor/mriflash/internal/repository"
)

// MaintenanceReport is the outcome of one maintenance pass.
type MaintenanceReport struct {
	PrunedAnswers int64
	DueImages     int
}

// Maintenance periodically prunes old answer history and reports how many
// images are due for review.
type Maintenance struct {
	scheduler *gocron.Scheduler
	history   repository.HistoryRepository
	mastery   repository.MasteryRepository
	retention time.Duration
	interval  time.Duration
	now       func() time.Time
}

// NewMaintenance builds the job. A zero retention keeps history forever.
func NewMaintenance(history repository.HistoryRepository, mastery repository.MasteryRepository, retention, interval time.Duration) *Maintenance {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Maintenance{
		scheduler: gocron.NewScheduler(time.UTC),
		history:   history,
		mastery:   mastery,
		retention: retention,
		interval:  interval,
		now:       time.Now,
	}
}

// Start schedules a pass every interval, the first one immediately.
func (m *Maintenance) Start(ctx context.Context) error {
	log := logger.FromContext(ctx).WithPrefix("maintenance")
	_, err := m.scheduler.Every(m.interval).Do(func() {
		if _, err := m.RunOnce(ctx); err != nil {
			log.Error("maintenance failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance: %w", err)
	}
	m.scheduler.StartAsync()
	log.Info("maintenance scheduled every %v", m.interval)
	return nil
}

func (m *Maintenance) Stop() {
	m.scheduler.Stop()
}

// RunOnce performs a single maintenance pass.
func (m *Maintenance) RunOnce(ctx context.Context) (MaintenanceReport, error) {
	log := logger.FromContext(ctx).WithPrefix("maintenance")
	now := m.now()
	var report MaintenanceReport

	if m.retention > 0 {
		pruned, err := m.history.PruneBefore(ctx, now.Add(-m.retention))
		if err != nil {
			return report, fmt.Errorf("prune history: %w", err)
		}
		report.PrunedAnswers = pruned
	}

	due, err := m.mastery.Count(ctx, models.MasteryFilter{DueAt: &now})
	if err != nil {
		return report, fmt.Errorf("count due images: %w", err)
	}
	report.DueImages = due

	log.Info("maintenance done: pruned=%d due=%d", report.PrunedAnswers, report.DueImages)
	return report, nil
}
