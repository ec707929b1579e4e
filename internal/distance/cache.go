package distance

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CachePath returns the cache file path for metric inside dir.
func CachePath(dir string, metric Metric) string {
	return filepath.Join(dir, metric.CacheFile())
}

// LoadFile loads the cached table for metric from dir. A missing file
// returns an error matching ErrCacheNotFound.
func LoadFile(dir string, metric Metric, vertices int, corr []int) (*Table, error) {
	if !metric.Valid() {
		return nil, fmt.Errorf("%w %d: %w", ErrUnknownMetric, int(metric), ErrPrecondition)
	}

	path := CachePath(dir, metric)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCacheNotFound, path)
		}
		return nil, fmt.Errorf("opening distance cache: %w", err)
	}
	defer f.Close()

	t, err := Load(f, metric, vertices, corr)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// SaveFile writes the table to its cache file inside dir, creating dir
// if needed. The file is written to a temporary name and renamed, so an
// existing cache is never left half-written.
func SaveFile(dir string, t *Table) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache folder: %w", err)
	}

	path := CachePath(dir, t.metric)
	tmp, err := os.CreateTemp(dir, t.metric.CacheFile()+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := t.Save(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// SaveFiles writes every table to dir.
func SaveFiles(dir string, tables map[Metric]*Table) error {
	for _, m := range Metrics {
		t, ok := tables[m]
		if !ok {
			continue
		}
		if err := SaveFile(dir, t); err != nil {
			return err
		}
	}
	return nil
}
