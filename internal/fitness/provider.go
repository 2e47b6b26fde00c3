package fitness

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrUpstreamData marks a payload that could not be normalized.
var ErrUpstreamData = errors.New("unexpected upstream payload")

// Outcome tells how a sub-record was produced.
type Outcome string

const (
	// OutcomeFetched means the record came from upstream and was cached.
	OutcomeFetched Outcome = "fetched"
	// OutcomeCached means a fresh cache entry was returned verbatim.
	OutcomeCached Outcome = "cached"
	// OutcomeDegraded means upstream was attempted and failed; the value is the default record.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeSkipped means no usable session existed, so upstream was not attempted.
	OutcomeSkipped Outcome = "skipped"
)

// Result is what a Fetcher returns instead of an error. Value is always a fully shaped record.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether Value holds real data rather than defaults.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeFetched || r.Outcome == OutcomeCached
}

// Fetcher produces one kind of normalized record for a calendar day.
// Implementations never fail; failures degrade to the kind's default record.
type Fetcher[T any] interface {
	Kind() Kind
	Fetch(ctx context.Context, day time.Time) Result[T]
}

// Entry is a cached, already normalized record.
type Entry struct {
	Kind     Kind            `json:"kind"`
	Date     string          `json:"date"`
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"stored_at"`
}

// Cache is the contract every cache backend (file, redis, memory) must satisfy.
// Entries are keyed by (kind, date) only. Get reports ok=false for missing or stale entries.
type Cache interface {
	Get(ctx context.Context, kind Kind, date string) (Entry, bool, error)
	Put(ctx context.Context, kind Kind, date string, payload json.RawMessage) error
	InvalidateAll(ctx context.Context) error
}
