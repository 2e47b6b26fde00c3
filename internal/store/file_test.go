package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KrystalRay/KFit/internal/fitness"
)

var t0 = time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)

type clock struct{ at time.Time }

func (c *clock) now() time.Time { return c.at }

func newTestFileStore(t *testing.T, ttl time.Duration) (*FileStore, *clock) {
	t.Helper()
	s, err := NewFileStore(t.TempDir(), ttl)
	require.NoError(t, err)
	c := &clock{at: t0}
	s.now = c.now
	return s, c
}

func TestFileStore_PutThenGet(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t, time.Hour)

	require.NoError(t, s.Put(ctx, fitness.KindSteps, "2024-03-10", json.RawMessage(`{"date":"2024-03-10","steps":8123}`)))

	e, ok, err := s.Get(ctx, fitness.KindSteps, "2024-03-10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"date":"2024-03-10","steps":8123}`, string(e.Payload))
	assert.Equal(t, fitness.KindSteps, e.Kind)
	assert.Equal(t, "2024-03-10", e.Date)
	assert.True(t, e.StoredAt.Equal(t0))

	raw, err := os.ReadFile(filepath.Join(s.Dir(), "steps_2024-03-10.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"steps\": 8123")
}

func TestFileStore_MissingIsMiss(t *testing.T) {
	s, _ := newTestFileStore(t, time.Hour)

	_, ok, err := s.Get(context.Background(), fitness.KindSleep, "2024-03-10")

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_StaleEntryIsMissButKept(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, time.Hour)
	require.NoError(t, s.Put(ctx, fitness.KindHeartRate, "2024-03-10", json.RawMessage(`{"avg":55}`)))

	c.at = t0.Add(59 * time.Minute)
	_, ok, err := s.Get(ctx, fitness.KindHeartRate, "2024-03-10")
	require.NoError(t, err)
	assert.True(t, ok)

	c.at = t0.Add(61 * time.Minute)
	_, ok, err = s.Get(ctx, fitness.KindHeartRate, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.FileExists(t, filepath.Join(s.Dir(), "heart_rate_2024-03-10.json"))
}

func TestFileStore_PutOverwritesAndRefreshesTimestamp(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, time.Hour)
	require.NoError(t, s.Put(ctx, fitness.KindSteps, "2024-03-10", json.RawMessage(`{"steps":1}`)))

	c.at = t0.Add(2 * time.Hour)
	require.NoError(t, s.Put(ctx, fitness.KindSteps, "2024-03-10", json.RawMessage(`{"steps":2}`)))

	e, ok, err := s.Get(ctx, fitness.KindSteps, "2024-03-10")
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"steps":2}`, string(e.Payload))
	assert.True(t, e.StoredAt.Equal(t0.Add(2*time.Hour)))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_TTLChangeKeepsEntries(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, time.Hour)
	require.NoError(t, s.Put(ctx, fitness.KindSleep, "2024-03-10", json.RawMessage(`{"duration":7.5}`)))
	c.at = t0.Add(90 * time.Minute)

	_, ok, err := s.Get(ctx, fitness.KindSleep, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, ok)

	longer, err := NewFileStore(s.Dir(), 2*time.Hour)
	require.NoError(t, err)
	longer.now = c.now

	_, ok, err = longer.Get(ctx, fitness.KindSleep, "2024-03-10")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileStore_ZeroTTLDisablesCache(t *testing.T) {
	ctx := context.Background()
	s, c := newTestFileStore(t, 0)
	require.NoError(t, s.Put(ctx, fitness.KindSteps, "2024-03-10", json.RawMessage(`{"steps":1}`)))

	c.at = t0.AddDate(0, 0, 30)
	_, ok, err := s.Get(ctx, fitness.KindSteps, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, ok)

	c.at = t0.Add(time.Second)
	_, ok, err = s.Get(ctx, fitness.KindSteps, "2024-03-10")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_CorruptFile(t *testing.T) {
	s, _ := newTestFileStore(t, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "activities_2024-03-10.json"), []byte("{not json"), 0o644))

	_, ok, err := s.Get(context.Background(), fitness.KindActivities, "2024-03-10")

	assert.ErrorIs(t, err, ErrCacheIO)
	assert.False(t, ok)
}

func TestFileStore_PutRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t, time.Hour)

	assert.Error(t, s.Put(ctx, fitness.Kind("weight"), "2024-03-10", json.RawMessage(`{}`)))
	assert.Error(t, s.Put(ctx, fitness.KindSteps, "../etc/passwd", json.RawMessage(`{}`)))
	assert.ErrorIs(t, s.Put(ctx, fitness.KindSteps, "2024-03-10", json.RawMessage(`{oops`)), ErrCacheIO)
}

func TestFileStore_InvalidateAllKeepsUnrelatedFiles(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestFileStore(t, time.Hour)
	for _, k := range fitness.Kinds {
		require.NoError(t, s.Put(ctx, k, "2024-03-10", json.RawMessage(`{}`)))
	}
	require.NoError(t, s.Put(ctx, fitness.KindSteps, "2024-03-09", json.RawMessage(`{}`)))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("keep me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "settings.json"), []byte("{}"), 0o644))

	require.NoError(t, s.InvalidateAll(ctx))

	for _, k := range fitness.Kinds {
		_, ok, err := s.Get(ctx, k, "2024-03-10")
		require.NoError(t, err)
		assert.False(t, ok, k)
	}
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"notes.txt", "settings.json"}, names)
}

func TestFileStore_InvalidateAllOnEmptyDir(t *testing.T) {
	s, _ := newTestFileStore(t, time.Hour)
	assert.NoError(t, s.InvalidateAll(context.Background()))
}

func TestNewFileStore_RequiresDir(t *testing.T) {
	_, err := NewFileStore("", time.Hour)
	assert.Error(t, err)

	nested := filepath.Join(t.TempDir(), "a", "b")
	s, err := NewFileStore(nested, time.Hour)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(s.Dir(), filepath.Join("a", "b")))
	assert.DirExists(t, nested)
}
