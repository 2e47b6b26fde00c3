// Package store implements the sub-record cache backends: one file per
// (kind, date) on disk, one Redis key per (kind, date), or a process-local map.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/KrystalRay/KFit/internal/common"
	"github.com/KrystalRay/KFit/internal/fitness"
)

// DefaultTTL is how long an entry stays fresh when nothing else is configured.
const DefaultTTL = time.Hour

// ErrCacheIO wraps read and write failures of a backend.
var ErrCacheIO = errors.New("cache i/o error")

func key(kind fitness.Kind, date string) string {
	return string(kind) + ":" + date
}

// expired reports whether an entry stored at storedAt is stale at now.
// With a zero ttl every entry is stale as soon as any time has passed.
func expired(storedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(storedAt) > ttl
}

func validKey(kind fitness.Kind, date string) error {
	if !kind.Valid() {
		return fmt.Errorf("unknown data kind %q", kind)
	}
	if _, err := time.Parse(common.DateLayout, date); err != nil {
		return fmt.Errorf("invalid cache date %q: %w", date, err)
	}
	return nil
}
