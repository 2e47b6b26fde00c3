package fetchers

import (
	"encoding/json"
	"math"
	"time"

	"github.com/KrystalRay/KFit/internal/fitness"
)

// Sample:
//
//	{
//	    "restingHeartRate": 58,
//	    "heartRateValues": [[1700000000000, 61], [1700000120000, null], [1700000240000, 97]]
//	}
type heartRatePayload struct {
	RestingHeartRate *float64     `json:"restingHeartRate"`
	HeartRateValues  [][]*float64 `json:"heartRateValues"`
}

// NewHeartRate builds the heart-rate fetcher.
func NewHeartRate(deps Deps) *Fetcher[fitness.HeartRateRecord] {
	return newFetcher(fitness.KindHeartRate, deps, normalizeHeartRate, fitness.EmptyHeartRate)
}

func normalizeHeartRate(day time.Time, raw json.RawMessage) (fitness.HeartRateRecord, error) {
	rec := fitness.EmptyHeartRate(day)

	var series [][]*float64
	switch payloadShape(raw) {
	case shapeEmpty:
		return rec, nil

	case shapeObject:
		var p heartRatePayload
		if err := decode(raw, &p); err != nil {
			return fitness.HeartRateRecord{}, err
		}
		if p.RestingHeartRate != nil && *p.RestingHeartRate > 0 {
			rec.Avg = int(math.Round(*p.RestingHeartRate))
		}
		series = p.HeartRateValues

	case shapeList:
		// A bare time series without the resting value.
		if err := decode(raw, &series); err != nil {
			return fitness.HeartRateRecord{}, err
		}

	default:
		return fitness.HeartRateRecord{}, unexpectedShape(fitness.KindHeartRate)
	}

	rec.Min, rec.Max = seriesBounds(series)
	return rec, nil
}

// seriesBounds scans (timestamp, value) pairs, ignoring non-positive or missing values.
// Both bounds are zero when nothing usable is present.
func seriesBounds(series [][]*float64) (int, int) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pair := range series {
		if len(pair) < 2 || pair[1] == nil {
			continue
		}
		v := *pair[1]
		if v <= 0 {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return int(math.Round(lo)), int(math.Round(hi))
}
