package fitness

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/common"
)

// DaysPerWeek is the length of the weekly window, end date inclusive.
const DaysPerWeek = 7

// Fetchers bundles one fetcher per data kind.
type Fetchers struct {
	Steps      Fetcher[StepsRecord]
	HeartRate  Fetcher[HeartRateRecord]
	Sleep      Fetcher[SleepRecord]
	Activities Fetcher[ActivitiesRecord]
}

// Service composes fetcher output into daily and weekly records.
// Acquisition is serialized so at most one upstream request is in flight.
type Service struct {
	mu       sync.Mutex
	fetchers Fetchers
	cache    Cache
	logger   *zap.Logger
}

// NewService creates a new Service.
func NewService(fetchers Fetchers, cache Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetchers: fetchers,
		cache:    cache,
		logger:   logger,
	}
}

// Daily returns the merged fitness record for day. It never fails; sub-kinds
// that could not be fetched appear as zero values.
func (s *Service) Daily(ctx context.Context, day time.Time) DailyFitnessRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.daily(ctx, common.DayStart(day))
}

func (s *Service) daily(ctx context.Context, day time.Time) DailyFitnessRecord {
	steps := s.fetchers.Steps.Fetch(ctx, day)
	hr := s.fetchers.HeartRate.Fetch(ctx, day)
	sleep := s.fetchers.Sleep.Fetch(ctx, day)
	acts := s.fetchers.Activities.Fetch(ctx, day)

	rec := MergeDaily(common.FormatDate(day), steps.Value, hr.Value, sleep.Value, acts.Value)
	rec.Outcomes = map[Kind]Outcome{
		KindSteps:      steps.Outcome,
		KindHeartRate:  hr.Outcome,
		KindSleep:      sleep.Outcome,
		KindActivities: acts.Outcome,
	}

	s.logger.Debug("daily record assembled",
		zap.String("date", rec.Date),
		zap.Int("steps", rec.Steps),
		zap.Int("activities", len(rec.Activities)),
		zap.Any("outcomes", rec.Outcomes),
	)
	return rec
}

// Weekly reduces the seven days ending on end (inclusive) into one record.
// The weekly record is recomputed on every call; only the daily sub-kinds are cached.
func (s *Service) Weekly(ctx context.Context, end time.Time) WeeklyFitnessRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := common.DaysEnding(end, DaysPerWeek)
	records := make([]DailyFitnessRecord, 0, len(days))
	for _, d := range days {
		records = append(records, s.daily(ctx, d))
	}

	return AggregateWeek(common.FormatDate(days[0]), common.FormatDate(days[len(days)-1]), records)
}

// InvalidateCache drops every cached sub-record.
func (s *Service) InvalidateCache(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cache == nil {
		return fmt.Errorf("no cache configured")
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate cache: %w", err)
	}
	s.logger.Info("cache invalidated")
	return nil
}
