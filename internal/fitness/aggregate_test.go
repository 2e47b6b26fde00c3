package fitness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekOf(mutate func(i int, d *DailyFitnessRecord)) []DailyFitnessRecord {
	days := make([]DailyFitnessRecord, DaysPerWeek)
	for i := range days {
		days[i] = DailyFitnessRecord{Activities: []Activity{}}
		mutate(i, &days[i])
	}
	return days
}

func TestAggregateWeek_SumsStepsAndCalories(t *testing.T) {
	steps := []int{1000, 2000, 0, 500, 0, 0, 0}
	calories := []int{300, 0, 120, 0, 0, 80, 0}
	days := weekOf(func(i int, d *DailyFitnessRecord) {
		d.Steps = steps[i]
		d.Calories = calories[i]
	})

	week := AggregateWeek("2024-03-04", "2024-03-10", days)

	assert.Equal(t, 3500, week.Steps)
	assert.Equal(t, 500, week.Calories)
	assert.Equal(t, "2024-03-04", week.StartDate)
	assert.Equal(t, "2024-03-10", week.EndDate)
}

func TestAggregateWeek_MinIgnoresZeroDays(t *testing.T) {
	mins := []int{0, 55, 0, 60, 0, 0, 58}
	maxes := []int{0, 150, 0, 171, 0, 0, 133}
	days := weekOf(func(i int, d *DailyFitnessRecord) {
		d.HeartRate.Min = mins[i]
		d.HeartRate.Max = maxes[i]
	})

	week := AggregateWeek("2024-03-04", "2024-03-10", days)

	assert.Equal(t, 55, week.HeartRate.Min)
	assert.Equal(t, 171, week.HeartRate.Max)
}

func TestAggregateWeek_MinZeroWhenNoPositiveDay(t *testing.T) {
	days := weekOf(func(int, *DailyFitnessRecord) {})

	week := AggregateWeek("2024-03-04", "2024-03-10", days)

	assert.Zero(t, week.HeartRate.Min)
	assert.Zero(t, week.HeartRate.Max)
	assert.Zero(t, week.HeartRate.Avg)
	assert.NotNil(t, week.Activities)
	assert.Empty(t, week.Activities)
}

func TestAggregateWeek_MeansUseEveryAttemptedDay(t *testing.T) {
	// Only two days carry data; the other five dilute the mean.
	days := weekOf(func(i int, d *DailyFitnessRecord) {
		if i == 0 || i == 6 {
			d.HeartRate.Avg = 70
			d.Sleep = Sleep{Duration: 7, Deep: 1.4, Light: 3.5}
		}
	})

	week := AggregateWeek("2024-03-04", "2024-03-10", days)

	assert.Equal(t, 20.0, week.HeartRate.Avg)
	assert.Equal(t, 2.0, week.Sleep.Duration)
	assert.Equal(t, 0.4, week.Sleep.Deep)
	assert.Equal(t, 1.0, week.Sleep.Light)
}

func TestAggregateWeek_ConcatenatesActivitiesInDayOrder(t *testing.T) {
	days := weekOf(func(i int, d *DailyFitnessRecord) {
		switch i {
		case 1:
			d.Activities = []Activity{{Type: "running"}, {Type: "walking"}}
		case 5:
			d.Activities = []Activity{{Type: "cycling"}}
		}
	})

	week := AggregateWeek("2024-03-04", "2024-03-10", days)

	require.Len(t, week.Activities, 3)
	assert.Equal(t, "running", week.Activities[0].Type)
	assert.Equal(t, "walking", week.Activities[1].Type)
	assert.Equal(t, "cycling", week.Activities[2].Type)
}

func TestAggregateWeek_NoDays(t *testing.T) {
	week := AggregateWeek("2024-03-04", "2024-03-10", nil)

	assert.Zero(t, week.Steps)
	assert.Zero(t, week.HeartRate.Avg)
	assert.NotNil(t, week.Activities)
}

func TestMergeDaily_SumsActivityCalories(t *testing.T) {
	rec := MergeDaily("2024-03-10",
		StepsRecord{Steps: 9000},
		HeartRateRecord{HeartRate: HeartRate{Avg: 58, Min: 49, Max: 162}},
		SleepRecord{Sleep: Sleep{Duration: 7.5, Deep: 1.5}},
		ActivitiesRecord{Activities: []Activity{{Type: "running", Calories: 400}, {Type: "yoga", Calories: 120}}},
	)

	assert.Equal(t, "2024-03-10", rec.Date)
	assert.Equal(t, 9000, rec.Steps)
	assert.Equal(t, 520, rec.Calories)
	assert.Equal(t, HeartRate{Avg: 58, Min: 49, Max: 162}, rec.HeartRate)
	assert.Equal(t, 7.5, rec.Sleep.Duration)
	assert.Len(t, rec.Activities, 2)
}

func TestMergeDaily_NilActivitiesBecomeEmpty(t *testing.T) {
	rec := MergeDaily("2024-03-10", StepsRecord{}, HeartRateRecord{}, SleepRecord{}, ActivitiesRecord{})

	assert.NotNil(t, rec.Activities)
	assert.Zero(t, rec.Calories)
}
