package main

// prepare builds (or loads from cache) the freezing-of-gait windows for a
// window length and reports what was produced.
//
// Usage:
//   go run ./cmd/prepare -defog-dir parkinson_data/train/defog \
//       -tdcsfog-dir parkinson_data/train/tdcsfog -window-len 62
//
// Tunables can also be read from a JSON file given with -config. Flags set on
// the command line take precedence over the JSON values.

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/Noofbiz/gaitFreeze/datasets"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// fileConfig is the JSON layout accepted by -config.
type fileConfig struct {
	WindowLen  *int    `json:"window_len"`
	CacheDir   *string `json:"cache_dir"`
	DefogDir   *string `json:"defog_dir"`
	TdcsfogDir *string `json:"tdcsfog_dir"`
	BatchSize  *int    `json:"batch_size"`
	Force      *bool   `json:"force"`

	ProgressIntervalSeconds *int `json:"progress_interval_seconds"`
}

// loadFileConfig applies the JSON tunables at path to cfg, skipping the
// fields whose flag was set explicitly.
func loadFileConfig(path string, cfg *datasets.Config, setFlags map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.WindowLen != nil && !setFlags["window-len"] {
		cfg.WindowLen = *fc.WindowLen
	}
	if fc.CacheDir != nil && !setFlags["cache-dir"] {
		cfg.CacheDir = *fc.CacheDir
	}
	if fc.DefogDir != nil && !setFlags["defog-dir"] {
		cfg.DefogDir = *fc.DefogDir
	}
	if fc.TdcsfogDir != nil && !setFlags["tdcsfog-dir"] {
		cfg.TdcsfogDir = *fc.TdcsfogDir
	}
	if fc.BatchSize != nil && !setFlags["batch-size"] {
		cfg.BatchSize = *fc.BatchSize
	}
	if fc.Force != nil && !setFlags["force"] {
		cfg.Force = *fc.Force
	}
	if fc.ProgressIntervalSeconds != nil && !setFlags["progress-interval"] {
		cfg.ProgressInterval = time.Duration(*fc.ProgressIntervalSeconds) * time.Second
	}
	return nil
}

func main() {
	windowLen := flag.Int("window-len", datasets.DefaultWindowLen, "number of data rows per window")
	cacheDir := flag.String("cache-dir", "./files", "cache root; arrays are stored under <cache-dir>/len_<window-len>")
	defogDir := flag.String("defog-dir", "./parkinson_data/train/defog", "directory of defog subject CSVs (empty to skip)")
	tdcsfogDir := flag.String("tdcsfog-dir", "./parkinson_data/train/tdcsfog", "directory of tdcsfog subject CSVs (empty to skip)")
	batchSize := flag.Int("batch-size", 32, "batch size used to report the number of batches per epoch")
	force := flag.Bool("force", false, "rebuild the windows even if a cache entry exists")
	progressInterval := flag.Int("progress-interval", 3, "seconds between segmentation progress logs")
	configPath := flag.String("config", "", "optional JSON file with tunables")
	plotPath := flag.String("plot", "", "if set, write a bar chart of the label distribution to this PNG path")
	flag.Parse()

	cfg := datasets.Config{
		WindowLen:  *windowLen,
		CacheDir:   *cacheDir,
		DefogDir:   *defogDir,
		TdcsfogDir: *tdcsfogDir,
		BatchSize:  *batchSize,
		Force:      *force,

		ProgressInterval: time.Duration(*progressInterval) * time.Second,
	}
	if *configPath != "" {
		setFlags := make(map[string]bool)
		flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = true })
		if err := loadFileConfig(*configPath, &cfg, setFlags); err != nil {
			log.Fatalf("failed to load config %s: %v", *configPath, err)
		}
		log.Printf("Loaded tunables from %s", *configPath)
	}

	cfg = cfg.WithDefaults()
	ds, err := datasets.Load(cfg)
	if err != nil {
		log.Fatalf("failed to prepare windows: %v", err)
	}
	log.Printf("%s ready: %d windows", ds.Name(), ds.Len())

	if ds.Len() > 0 {
		item, err := ds.Get(0)
		if err != nil {
			log.Fatalf("failed to read window 0: %v", err)
		}
		fmt.Printf("value:  %v\n", item.Value.Shape())
		fmt.Printf("target: %v\n", item.Target.Shape())
		fmt.Printf("mask:   %v\n", item.Mask.Shape())
		fmt.Printf("batches per epoch (batch=%d): %d\n", cfg.BatchSize, (ds.Len()+cfg.BatchSize-1)/cfg.BatchSize)
	}

	summary := datasets.Summarize(ds.Arrays())
	fmt.Printf("windows: %d (remainder: %d)\n", summary.Windows, summary.RemainderWindows)
	fmt.Printf("positions: %d valid, %d padded\n", summary.ValidPositions, summary.PaddedPositions)
	for i, n := range summary.LabelCounts {
		fmt.Printf("  %-16s %d\n", datasets.LabelNames[i], n)
	}

	if *plotPath != "" {
		if err := plotLabels(*plotPath, summary); err != nil {
			log.Fatalf("failed to write plot: %v", err)
		}
		log.Printf("Wrote label distribution to %s", *plotPath)
	}
}

// plotLabels writes a bar chart of the valid-position label counts.
func plotLabels(outPath string, s datasets.Summary) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Label distribution (%s, %d windows)", datasets.Namespace(s.WindowLen), s.Windows)
	p.Y.Label.Text = "timesteps"

	values := make(plotter.Values, len(s.LabelCounts))
	for i, n := range s.LabelCounts {
		values[i] = float64(n)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return err
	}
	bars.Color = color.RGBA{R: 20, G: 80, B: 200, A: 220}
	p.Add(bars)
	p.Add(plotter.NewGrid())
	p.NominalX(datasets.LabelNames[:]...)

	if dir := filepath.Dir(outPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return p.Save(6*vg.Inch, 4*vg.Inch, outPath)
}
