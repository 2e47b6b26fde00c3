package fitness

import (
	"time"

	"github.com/KrystalRay/KFit/internal/common"
)

// Kind identifies one independently fetched and cached sub-record of a day.
type Kind string

const (
	KindSteps      Kind = "steps"
	KindHeartRate  Kind = "heart_rate"
	KindSleep      Kind = "sleep"
	KindActivities Kind = "activities"
)

// Kinds lists every data kind in the order the aggregator requests them.
var Kinds = []Kind{KindSteps, KindHeartRate, KindSleep, KindActivities}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSteps, KindHeartRate, KindSleep, KindActivities:
		return true
	}
	return false
}

// ActivityStats counts step intervals per primary activity level.
type ActivityStats struct {
	Sedentary        int `json:"sedentary"`
	LightlyActive    int `json:"lightlyActive"`
	ModeratelyActive int `json:"moderatelyActive"`
	HighlyActive     int `json:"highlyActive"`
	Sleeping         int `json:"sleeping"`
}

// StepsRecord is the normalized steps sub-record.
type StepsRecord struct {
	Date          string        `json:"date"`
	Steps         int           `json:"steps"`
	ActivityStats ActivityStats `json:"activity_stats"`
}

// HeartRate summarizes a day's heart rate in beats per minute.
// Avg is the resting heart rate; Min and Max come from the intraday series.
type HeartRate struct {
	Avg int `json:"avg"`
	Min int `json:"min"`
	Max int `json:"max"`
}

// HeartRateRecord is the normalized heart-rate sub-record.
type HeartRateRecord struct {
	Date string `json:"date"`
	HeartRate
}

// Sleep holds sleep-phase durations in hours plus scalar extras reported alongside them.
type Sleep struct {
	Duration           float64 `json:"duration"`
	Deep               float64 `json:"deep"`
	Light              float64 `json:"light"`
	REM                float64 `json:"rem"`
	Awake              float64 `json:"awake"`
	Stress             float64 `json:"stress"`
	RestingHeartRate   int     `json:"resting_heart_rate"`
	BodyBatteryChange  int     `json:"body_battery_change"`
	RespirationVersion int     `json:"respiration_version"`
	SkinTempExists     bool    `json:"skin_temp_exists"`
}

// SleepRecord is the normalized sleep sub-record.
type SleepRecord struct {
	Date string `json:"date"`
	Sleep
}

// Activity is a single recorded workout. Values are never negative.
type Activity struct {
	Type            string  `json:"type"`
	DurationMinutes float64 `json:"duration_minutes"`
	Calories        int     `json:"calories"`
	DistanceKm      float64 `json:"distance_km"`
}

// ActivitiesRecord is the normalized activities sub-record.
type ActivitiesRecord struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// DailyFitnessRecord is the merged view of one calendar day.
// Every field is always present; missing upstream data shows up as zero or empty.
type DailyFitnessRecord struct {
	Date       string     `json:"date"`
	Steps      int        `json:"steps"`
	Calories   int        `json:"calories"`
	HeartRate  HeartRate  `json:"heart_rate"`
	Sleep      Sleep      `json:"sleep"`
	Activities []Activity `json:"activities"`

	// Outcomes records how each sub-record was obtained. Not part of the wire contract.
	Outcomes map[Kind]Outcome `json:"-"`
}

// WeeklyHeartRate is the reduced heart-rate summary of a week.
type WeeklyHeartRate struct {
	Avg float64 `json:"avg"`
	Min int     `json:"min"`
	Max int     `json:"max"`
}

// WeeklySleep holds mean nightly sleep durations in hours.
type WeeklySleep struct {
	Duration float64 `json:"duration"`
	Deep     float64 `json:"deep"`
	Light    float64 `json:"light"`
}

// WeeklyFitnessRecord is derived from seven daily records and never cached.
type WeeklyFitnessRecord struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Steps      int             `json:"steps"`
	Calories   int             `json:"calories"`
	HeartRate  WeeklyHeartRate `json:"heart_rate"`
	Sleep      WeeklySleep     `json:"sleep"`
	Activities []Activity      `json:"activities"`
}

// EmptySteps returns the default steps record for day.
func EmptySteps(day time.Time) StepsRecord {
	return StepsRecord{Date: common.FormatDate(day)}
}

// EmptyHeartRate returns the default heart-rate record for day.
func EmptyHeartRate(day time.Time) HeartRateRecord {
	return HeartRateRecord{Date: common.FormatDate(day)}
}

// EmptySleep returns the default sleep record for day.
func EmptySleep(day time.Time) SleepRecord {
	return SleepRecord{Date: common.FormatDate(day)}
}

// EmptyActivities returns the default activities record for day.
func EmptyActivities(day time.Time) ActivitiesRecord {
	return ActivitiesRecord{Date: common.FormatDate(day), Activities: []Activity{}}
}
