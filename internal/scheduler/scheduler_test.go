package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

type fakeSource struct {
	days []string
	ctx  context.Context
}

func (f *fakeSource) Daily(ctx context.Context, day time.Time) fitness.DailyFitnessRecord {
	f.ctx = ctx
	f.days = append(f.days, common.FormatDate(day))
	return fitness.DailyFitnessRecord{Date: common.FormatDate(day)}
}

func TestWarmRequestsToday(t *testing.T) {
	src := &fakeSource{}
	s := New(0, src, nil)
	s.today = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local) }

	s.Warm()

	assert.Equal(t, []string{"2024-03-10"}, src.days)
	_, hasDeadline := src.ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestStartWithoutIntervalIsIdle(t *testing.T) {
	src := &fakeSource{}
	s := New(0, src, nil)

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Empty(t, s.scheduler.Jobs())
	assert.Empty(t, src.days)
}

func TestStartSchedulesWarmJob(t *testing.T) {
	src := &fakeSource{}
	s := New(30*time.Second, src, nil)
	s.today = func() time.Time { return time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local) }

	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Len(t, s.scheduler.Jobs(), 1)
}
