package datasets

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// DefaultWindowLen is the number of data rows per window.
const DefaultWindowLen = 62

// Config holds the parameters of the preparation step.
type Config struct {
	// WindowLen is the number of data rows per window. Default: 62.
	WindowLen int

	// CacheDir is the root of the cache; arrays for a window length live in
	// CacheDir/len_<WindowLen>. Default: "./files".
	CacheDir string

	// DefogDir and TdcsfogDir are the per-protocol source directories. An
	// empty directory is skipped.
	DefogDir   string
	TdcsfogDir string

	// BatchSize used by WindowedDataset.Yield. Default: 32.
	BatchSize int

	// Force recomputes the windows even when a cache entry exists.
	Force bool

	// ProgressInterval between segmentation progress logs. Default: 3s. A
	// negative interval logs after every subject.
	ProgressInterval time.Duration
}

// WithDefaults returns a copy of c with zero values (and non-positive batch
// sizes) replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.WindowLen == 0 {
		c.WindowLen = DefaultWindowLen
	}
	if c.CacheDir == "" {
		c.CacheDir = "./files"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.ProgressInterval == 0 {
		c.ProgressInterval = DefaultProgressInterval
	}
	return c
}

// Source builds the CSV sources of the configured directories, defog first.
func (c Config) Source() Source {
	var src MultiSource
	if c.DefogDir != "" {
		src = append(src, CSVSource{Dir: c.DefogDir, Protocol: ProtocolDefog})
	}
	if c.TdcsfogDir != "" {
		src = append(src, CSVSource{Dir: c.TdcsfogDir, Protocol: ProtocolTdcsfog})
	}
	return src
}

// Prepare returns the window arrays for cfg.WindowLen. A cache hit
// short-circuits segmentation and src is never read. On a miss, or when a
// cache entry is corrupt, the subjects are read from src, segmented and
// written back to the store.
func Prepare(cfg Config, store *CacheStore, src Source) (*WindowArrays, error) {
	cfg = cfg.WithDefaults()
	if cfg.WindowLen <= 0 {
		return nil, fmt.Errorf("window length must be > 0, got %d", cfg.WindowLen)
	}

	if !cfg.Force {
		arrays, ok, err := store.Load(cfg.WindowLen)
		switch {
		case errors.Is(err, ErrCacheCorrupt):
			log.Printf("[Prepare] warning: ignoring cache %s: %v", Namespace(cfg.WindowLen), err)
		case err != nil:
			return nil, err
		case ok:
			return arrays, nil
		}
	}

	log.Printf("[Prepare] building windows for %s", Namespace(cfg.WindowLen))
	subjects, err := src.Subjects()
	if err != nil {
		return nil, fmt.Errorf("read subjects: %w", err)
	}
	arrays, err := segment(subjects, cfg.WindowLen, cfg.ProgressInterval)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	if err := store.Save(arrays); err != nil {
		return nil, fmt.Errorf("save cache: %w", err)
	}
	return arrays, nil
}

// Load prepares the arrays using a filesystem cache under cfg.CacheDir and
// the configured CSV directories, and wraps them in a WindowedDataset.
func Load(cfg Config) (*WindowedDataset, error) {
	cfg = cfg.WithDefaults()
	store := NewCacheStore(FSBlobStore{Root: cfg.CacheDir})
	arrays, err := Prepare(cfg, store, cfg.Source())
	if err != nil {
		return nil, err
	}
	ds, err := NewWindowedDataset(arrays)
	if err != nil {
		return nil, err
	}
	ds.BatchSize = cfg.BatchSize
	return ds, nil
}
