package fitness

import "github.com/KrystalRay/KFit/internal/common"

// MergeDaily combines the four sub-records of a day into a DailyFitnessRecord.
// Total calories are the sum of per-activity calories.
func MergeDaily(date string, steps StepsRecord, hr HeartRateRecord, sleep SleepRecord, acts ActivitiesRecord) DailyFitnessRecord {
	activities := acts.Activities
	if activities == nil {
		activities = []Activity{}
	}

	calories := 0
	for _, a := range activities {
		calories += a.Calories
	}

	return DailyFitnessRecord{
		Date:       date,
		Steps:      steps.Steps,
		Calories:   calories,
		HeartRate:  hr.HeartRate,
		Sleep:      sleep.Sleep,
		Activities: activities,
	}
}

// AggregateWeek reduces daily records into a weekly summary.
// Sums for steps and calories; means over len(days) for heart-rate avg and sleep,
// including days that degraded to zero; min ignores non-positive daily minimums.
func AggregateWeek(startDate, endDate string, days []DailyFitnessRecord) WeeklyFitnessRecord {
	week := WeeklyFitnessRecord{
		StartDate:  startDate,
		EndDate:    endDate,
		Activities: []Activity{},
	}
	if len(days) == 0 {
		return week
	}

	var (
		sumHRAvg     float64
		sumSleep     float64
		sumSleepDeep float64
		sumSleepLite float64
	)

	for _, d := range days {
		week.Steps += d.Steps
		week.Calories += d.Calories

		sumHRAvg += float64(d.HeartRate.Avg)
		if d.HeartRate.Min > 0 && (week.HeartRate.Min == 0 || d.HeartRate.Min < week.HeartRate.Min) {
			week.HeartRate.Min = d.HeartRate.Min
		}
		if d.HeartRate.Max > week.HeartRate.Max {
			week.HeartRate.Max = d.HeartRate.Max
		}

		sumSleep += d.Sleep.Duration
		sumSleepDeep += d.Sleep.Deep
		sumSleepLite += d.Sleep.Light

		week.Activities = append(week.Activities, d.Activities...)
	}

	n := float64(len(days))
	week.HeartRate.Avg = common.Round(sumHRAvg/n, 1)
	week.Sleep = WeeklySleep{
		Duration: common.Round(sumSleep/n, 1),
		Deep:     common.Round(sumSleepDeep/n, 1),
		Light:    common.Round(sumSleepLite/n, 1),
	}

	return week
}
