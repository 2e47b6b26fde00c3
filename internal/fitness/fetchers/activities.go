package fetchers

import (
	"encoding/json"
	"math"
	"time"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

const unknownActivity = "unknown"

// activityPayload is one entry of the activity search result.
// Duration is in seconds, distance in meters.
type activityPayload struct {
	ActivityType *struct {
		TypeKey string `json:"typeKey"`
	} `json:"activityType"`
	Duration float64 `json:"duration"`
	Calories float64 `json:"calories"`
	Distance float64 `json:"distance"`
}

// NewActivities builds the activities fetcher.
func NewActivities(deps Deps) *Fetcher[fitness.ActivitiesRecord] {
	return newFetcher(fitness.KindActivities, deps, normalizeActivities, fitness.EmptyActivities)
}

func normalizeActivities(day time.Time, raw json.RawMessage) (fitness.ActivitiesRecord, error) {
	rec := fitness.EmptyActivities(day)

	var items []activityPayload
	switch payloadShape(raw) {
	case shapeEmpty:
		return rec, nil
	case shapeList:
		if err := decode(raw, &items); err != nil {
			return fitness.ActivitiesRecord{}, err
		}
	case shapeObject:
		var single activityPayload
		if err := decode(raw, &single); err != nil {
			return fitness.ActivitiesRecord{}, err
		}
		items = append(items, single)
	default:
		return fitness.ActivitiesRecord{}, unexpectedShape(fitness.KindActivities)
	}

	for _, item := range items {
		rec.Activities = append(rec.Activities, toActivity(item))
	}
	return rec, nil
}

func toActivity(p activityPayload) fitness.Activity {
	kind := unknownActivity
	if p.ActivityType != nil && p.ActivityType.TypeKey != "" {
		kind = p.ActivityType.TypeKey
	}
	return fitness.Activity{
		Type:            kind,
		DurationMinutes: common.Round(nonNegative(p.Duration)/60, 1),
		Calories:        int(math.Round(nonNegative(p.Calories))),
		DistanceKm:      common.Round(nonNegative(p.Distance)/1000, 2),
	}
}
