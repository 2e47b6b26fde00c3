package fetchers

import (
	"encoding/json"
	"time"

	"github.com/KrystalRay/KFit/internal/fitness"
)

// stepsInterval is one entry of the daily summary chart (15-minute buckets).
type stepsInterval struct {
	Steps                int    `json:"steps"`
	PrimaryActivityLevel string `json:"primaryActivityLevel"`
}

// stepsSummary is the aggregate form some accounts return instead of intervals.
type stepsSummary struct {
	TotalSteps int `json:"totalSteps"`
}

// NewSteps builds the steps fetcher.
func NewSteps(deps Deps) *Fetcher[fitness.StepsRecord] {
	return newFetcher(fitness.KindSteps, deps, normalizeSteps, fitness.EmptySteps)
}

func normalizeSteps(day time.Time, raw json.RawMessage) (fitness.StepsRecord, error) {
	rec := fitness.EmptySteps(day)

	switch payloadShape(raw) {
	case shapeEmpty:
		return rec, nil

	case shapeList:
		var intervals []stepsInterval
		if err := decode(raw, &intervals); err != nil {
			return fitness.StepsRecord{}, err
		}
		for _, in := range intervals {
			if in.Steps > 0 {
				rec.Steps += in.Steps
			}
			countLevel(&rec.ActivityStats, in.PrimaryActivityLevel)
		}
		return rec, nil

	case shapeObject:
		var sum stepsSummary
		if err := decode(raw, &sum); err != nil {
			return fitness.StepsRecord{}, err
		}
		if sum.TotalSteps > 0 {
			rec.Steps = sum.TotalSteps
		}
		return rec, nil

	default:
		return fitness.StepsRecord{}, unexpectedShape(fitness.KindSteps)
	}
}

func countLevel(stats *fitness.ActivityStats, level string) {
	switch level {
	case "sedentary":
		stats.Sedentary++
	case "lightlyActive":
		stats.LightlyActive++
	case "moderatelyActive":
		stats.ModeratelyActive++
	case "highlyActive":
		stats.HighlyActive++
	case "sleeping":
		stats.Sleeping++
	}
}
