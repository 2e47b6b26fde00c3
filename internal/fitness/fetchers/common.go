package fetchers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
	"github.com/KrystalRay/KFit/internal/garmin"
	"github.com/KrystalRay/KFit/internal/observability"
)

// Sessions hands out the upstream session. Satisfied by *garmin.SessionManager.
type Sessions interface {
	EnsureSession() (*garmin.Session, error)
}

// Upstream returns raw payloads. Satisfied by *garmin.Client.
type Upstream interface {
	Fetch(ctx context.Context, sess *garmin.Session, kind fitness.Kind, day time.Time) (json.RawMessage, error)
}

// Deps are shared by every fetcher.
type Deps struct {
	Sessions Sessions
	Upstream Upstream
	Cache    fitness.Cache
	Logger   *zap.Logger
}

// Fetcher implements the cache-then-upstream flow for one kind. The
// kind-specific parts are the normalizer and the default record.
type Fetcher[T any] struct {
	kind      fitness.Kind
	deps      Deps
	normalize func(day time.Time, raw json.RawMessage) (T, error)
	empty     func(day time.Time) T
}

func newFetcher[T any](kind fitness.Kind, deps Deps, normalize func(time.Time, json.RawMessage) (T, error), empty func(time.Time) T) *Fetcher[T] {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Fetcher[T]{
		kind:      kind,
		deps:      deps,
		normalize: normalize,
		empty:     empty,
	}
}

// New builds all four fetchers over the same dependencies.
func New(deps Deps) fitness.Fetchers {
	return fitness.Fetchers{
		Steps:      NewSteps(deps),
		HeartRate:  NewHeartRate(deps),
		Sleep:      NewSleep(deps),
		Activities: NewActivities(deps),
	}
}

// Kind returns the data kind this fetcher serves.
func (f *Fetcher[T]) Kind() fitness.Kind {
	return f.kind
}

// Fetch returns the record for day: from cache when fresh, otherwise from
// upstream (then cached). Any failure yields the default record.
func (f *Fetcher[T]) Fetch(ctx context.Context, day time.Time) (res fitness.Result[T]) {
	day = common.DayStart(day)
	date := common.FormatDate(day)
	log := f.deps.Logger.With(zap.String("kind", string(f.kind)), zap.String("date", date))

	defer func() {
		if r := recover(); r != nil {
			log.Error("fetch panicked", zap.Any("panic", r))
			res = f.degrade(day, fitness.OutcomeDegraded, fmt.Errorf("%w: panic: %v", fitness.ErrUpstreamData, r))
		}
		observability.RecordFetch(string(f.kind), string(res.Outcome))
	}()

	if v, ok := f.fromCache(ctx, date, log); ok {
		return fitness.Result[T]{Value: v, Outcome: fitness.OutcomeCached}
	}

	if f.deps.Sessions == nil || f.deps.Upstream == nil {
		return f.degrade(day, fitness.OutcomeSkipped, garmin.ErrSessionUnusable)
	}
	sess, err := f.deps.Sessions.EnsureSession()
	if err != nil {
		log.Debug("no usable upstream session, returning defaults", zap.Error(err))
		return f.degrade(day, fitness.OutcomeSkipped, err)
	}

	raw, err := f.deps.Upstream.Fetch(ctx, sess, f.kind, day)
	if err != nil {
		log.Warn("upstream fetch failed", zap.Error(err))
		return f.degrade(day, fitness.OutcomeDegraded, err)
	}

	v, err := f.normalize(day, raw)
	if err != nil {
		log.Warn("could not normalize upstream payload", zap.Error(err))
		return f.degrade(day, fitness.OutcomeDegraded, err)
	}

	f.toCache(ctx, date, v, log)
	return fitness.Result[T]{Value: v, Outcome: fitness.OutcomeFetched}
}

func (f *Fetcher[T]) degrade(day time.Time, outcome fitness.Outcome, err error) fitness.Result[T] {
	return fitness.Result[T]{Value: f.empty(day), Outcome: outcome, Err: err}
}

// fromCache treats every cache problem as a miss.
func (f *Fetcher[T]) fromCache(ctx context.Context, date string, log *zap.Logger) (T, bool) {
	var zero T
	if f.deps.Cache == nil {
		return zero, false
	}

	entry, ok, err := f.deps.Cache.Get(ctx, f.kind, date)
	if err != nil {
		observability.RecordCacheLookup(string(f.kind), "error")
		log.Warn("cache read failed, treating as miss", zap.Error(err))
		return zero, false
	}
	if !ok {
		observability.RecordCacheLookup(string(f.kind), "miss")
		return zero, false
	}

	var v T
	if err := json.Unmarshal(entry.Payload, &v); err != nil {
		observability.RecordCacheLookup(string(f.kind), "error")
		log.Warn("cached payload unreadable, treating as miss", zap.Error(err))
		return zero, false
	}
	observability.RecordCacheLookup(string(f.kind), "hit")
	return v, true
}

func (f *Fetcher[T]) toCache(ctx context.Context, date string, v T, log *zap.Logger) {
	if f.deps.Cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Warn("could not encode record for cache", zap.Error(err))
		return
	}
	if err := f.deps.Cache.Put(ctx, f.kind, date, payload); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}

type shape int

const (
	shapeEmpty shape = iota
	shapeObject
	shapeList
	shapeOther
)

// payloadShape classifies a raw payload by its first significant byte.
func payloadShape(raw json.RawMessage) shape {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0, bytes.Equal(trimmed, []byte("null")):
		return shapeEmpty
	case trimmed[0] == '{':
		if bytes.Equal(bytes.Join(bytes.Fields(trimmed), nil), []byte("{}")) {
			return shapeEmpty
		}
		return shapeObject
	case trimmed[0] == '[':
		return shapeList
	default:
		return shapeOther
	}
}

func decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", fitness.ErrUpstreamData, err)
	}
	return nil
}

func unexpectedShape(kind fitness.Kind) error {
	return fmt.Errorf("%w: %s payload is neither an object nor a list", fitness.ErrUpstreamData, kind)
}

func nonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}
