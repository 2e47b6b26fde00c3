package fetchers

import (
	"encoding/json"
	"time"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

type sleepDTO struct {
	SleepTimeSeconds  float64 `json:"sleepTimeSeconds"`
	DeepSleepSeconds  float64 `json:"deepSleepSeconds"`
	LightSleepSeconds float64 `json:"lightSleepSeconds"`
	RemSleepSeconds   float64 `json:"remSleepSeconds"`
	AwakeSleepSeconds float64 `json:"awakeSleepSeconds"`
	AvgSleepStress    float64 `json:"avgSleepStress"`
}

type sleepPayload struct {
	DailySleepDTO      *sleepDTO `json:"dailySleepDTO"`
	RestingHeartRate   float64   `json:"restingHeartRate"`
	BodyBatteryChange  float64   `json:"bodyBatteryChange"`
	RespirationVersion int       `json:"respirationVersion"`
	SkinTempDataExists bool      `json:"skinTempDataExists"`
}

// NewSleep builds the sleep fetcher.
func NewSleep(deps Deps) *Fetcher[fitness.SleepRecord] {
	return newFetcher(fitness.KindSleep, deps, normalizeSleep, fitness.EmptySleep)
}

func normalizeSleep(day time.Time, raw json.RawMessage) (fitness.SleepRecord, error) {
	rec := fitness.EmptySleep(day)

	switch payloadShape(raw) {
	case shapeEmpty:
		return rec, nil

	case shapeObject:
		var p sleepPayload
		if err := decode(raw, &p); err != nil {
			return fitness.SleepRecord{}, err
		}
		if p.DailySleepDTO != nil {
			applyPhases(&rec.Sleep, *p.DailySleepDTO)
			rec.Stress = common.Round(nonNegative(p.DailySleepDTO.AvgSleepStress), 1)
		}
		rec.RestingHeartRate = int(nonNegative(p.RestingHeartRate))
		rec.BodyBatteryChange = int(p.BodyBatteryChange)
		rec.RespirationVersion = p.RespirationVersion
		rec.SkinTempExists = p.SkinTempDataExists
		return rec, nil

	case shapeList:
		// Split nights: sum the phases of every segment.
		var segments []sleepDTO
		if err := decode(raw, &segments); err != nil {
			return fitness.SleepRecord{}, err
		}
		var total sleepDTO
		for _, s := range segments {
			total.SleepTimeSeconds += nonNegative(s.SleepTimeSeconds)
			total.DeepSleepSeconds += nonNegative(s.DeepSleepSeconds)
			total.LightSleepSeconds += nonNegative(s.LightSleepSeconds)
			total.RemSleepSeconds += nonNegative(s.RemSleepSeconds)
			total.AwakeSleepSeconds += nonNegative(s.AwakeSleepSeconds)
		}
		applyPhases(&rec.Sleep, total)
		return rec, nil

	default:
		return fitness.SleepRecord{}, unexpectedShape(fitness.KindSleep)
	}
}

func applyPhases(s *fitness.Sleep, dto sleepDTO) {
	s.Duration = hours(dto.SleepTimeSeconds)
	s.Deep = hours(dto.DeepSleepSeconds)
	s.Light = hours(dto.LightSleepSeconds)
	s.REM = hours(dto.RemSleepSeconds)
	s.Awake = hours(dto.AwakeSleepSeconds)
}

func hours(seconds float64) float64 {
	return common.Round(nonNegative(seconds)/3600, 2)
}
