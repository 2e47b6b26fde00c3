package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KrystalRay/KFit/internal/fitness"
)

// FileStore keeps one indented JSON file per (kind, date) under dir.
// The file's modification time is the entry's stored-at timestamp.
type FileStore struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

var _ fitness.Cache = (*FileStore)(nil)

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string, ttl time.Duration) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("cache dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", ErrCacheIO, err)
	}
	return &FileStore{dir: dir, ttl: ttl, now: time.Now}, nil
}

// Dir returns the cache directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(kind fitness.Kind, date string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, date))
}

// Get reads the entry for (kind, date). Stale files are left in place.
func (s *FileStore) Get(_ context.Context, kind fitness.Kind, date string) (fitness.Entry, bool, error) {
	p := s.path(kind, date)

	info, err := os.Stat(p)
	if errors.Is(err, os.ErrNotExist) {
		return fitness.Entry{}, false, nil
	}
	if err != nil {
		return fitness.Entry{}, false, fmt.Errorf("%w: stat %s: %v", ErrCacheIO, p, err)
	}
	if expired(info.ModTime(), s.now(), s.ttl) {
		return fitness.Entry{}, false, nil
	}

	raw, err := os.ReadFile(p)
	if err != nil {
		return fitness.Entry{}, false, fmt.Errorf("%w: read %s: %v", ErrCacheIO, p, err)
	}
	if !json.Valid(raw) {
		return fitness.Entry{}, false, fmt.Errorf("%w: %s is not valid JSON", ErrCacheIO, p)
	}

	return fitness.Entry{
		Kind:     kind,
		Date:     date,
		Payload:  raw,
		StoredAt: info.ModTime(),
	}, true, nil
}

// Put replaces the file for (kind, date) atomically via a temp file and rename.
func (s *FileStore) Put(_ context.Context, kind fitness.Kind, date string, payload json.RawMessage) error {
	if err := validKey(kind, date); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, payload, "", "  "); err != nil {
		return fmt.Errorf("%w: encode %s/%s: %v", ErrCacheIO, kind, date, err)
	}
	buf.WriteByte('\n')

	tmp, err := os.CreateTemp(s.dir, "."+string(kind)+"_"+date+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCacheIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %v", ErrCacheIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", ErrCacheIO, tmpName, err)
	}

	p := s.path(kind, date)
	if err := os.Rename(tmpName, p); err != nil {
		return fmt.Errorf("%w: rename to %s: %v", ErrCacheIO, p, err)
	}
	now := s.now()
	if err := os.Chtimes(p, now, now); err != nil {
		return fmt.Errorf("%w: touch %s: %v", ErrCacheIO, p, err)
	}
	return nil
}

// InvalidateAll removes every cache file. Unrelated files in dir are kept.
func (s *FileStore) InvalidateAll(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: list %s: %v", ErrCacheIO, s.dir, err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !isCacheFile(e.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCacheIO, errors.Join(errs...))
	}
	return nil
}

func isCacheFile(name string) bool {
	if !strings.HasSuffix(name, ".json") {
		return false
	}
	for _, k := range fitness.Kinds {
		if strings.HasPrefix(name, string(k)+"_") {
			return true
		}
	}
	return false
}
