package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

// DailySource is the part of the aggregator the warmer needs.
type DailySource interface {
	Daily(ctx context.Context, day time.Time) fitness.DailyFitnessRecord
}

// Scheduler periodically requests today's daily record so its sub-kinds stay cached.
type Scheduler struct {
	scheduler *gocron.Scheduler
	source    DailySource
	interval  time.Duration
	logger    *zap.Logger
	today     func() time.Time
}

// New creates a new Scheduler.
func New(interval time.Duration, source DailySource, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		source:    source,
		interval:  interval,
		logger:    logger,
		today:     common.Today,
	}
}

// Start schedules the warm job and starts the underlying scheduler.
// A non-positive interval leaves the scheduler idle.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.logger.Info("scheduler: warm interval not set; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 1
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.Warm)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Warm fetches today's record once, under its own bounded context.
func (s *Scheduler) Warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	day := s.today()
	s.logger.Info("scheduler: warming cache", zap.String("date", common.FormatDate(day)))
	rec := s.source.Daily(ctx, day)
	s.logger.Info("scheduler: cache warm complete",
		zap.String("date", rec.Date),
		zap.Any("outcomes", rec.Outcomes),
	)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
