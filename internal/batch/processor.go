package batch

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"scene-importer/internal/export"
	"scene-importer/internal/importer"
	"scene-importer/internal/preview"
)

// Config holds all shared resources for a batch run.
type Config struct {
	Importer  *importer.Importer
	OutputDir string
	Workers   int
	// Preview enables a WebP thumbnail next to each JSON file.
	Preview        bool
	PreviewOptions preview.Options
	// Progress receives a rate line every tick while the batch runs. Nil disables it.
	Progress     io.Writer
	ProgressTick time.Duration
}

// Result holds the outcome of importing one file.
type Result struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Success  bool     `json:"success"`
	Error    string   `json:"error,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Output   string   `json:"output,omitempty"`
	Image    string   `json:"image,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Dropped  []string `json:"dropped,omitempty"`
}

// Run imports every path using a worker pool. Results keep the order of paths.
func Run(cfg Config, paths []string) []Result {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProgressTick <= 0 {
		cfg.ProgressTick = 2 * time.Second
	}
	total := len(paths)
	results := make([]Result, total)
	stems := outputStems(paths)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress != nil {
		go func() {
			ticker := time.NewTicker(cfg.ProgressTick)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						fmt.Fprintf(cfg.Progress, "  [%d/%d] %.1f files/sec\n", p, total, rate)
					}
				}
			}
		}()
	}

	// Worker pool
	work := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = processFile(cfg, paths[idx], stems[idx])
				processed.Add(1)
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	wg.Wait()
	close(done)

	return results
}

// outputStems picks an output file stem per input. Inputs sharing a base name
// (a/hero.scnb, b/hero.scnb) would overwrite each other, so every repeat after
// the first gets a numeric suffix. Names are compared case-insensitively.
func outputStems(paths []string) []string {
	stems := make([]string, len(paths))
	seen := make(map[string]int, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		stems[i] = strings.TrimSuffix(base, filepath.Ext(base))
		seen[strings.ToLower(stems[i])]++
	}

	taken := make(map[string]bool, len(paths))
	for i, stem := range stems {
		key := strings.ToLower(stem)
		if !taken[key] {
			taken[key] = true
			continue
		}
		for n := 2; ; n++ {
			cand := fmt.Sprintf("%s_%d", stem, n)
			k := strings.ToLower(cand)
			if !taken[k] && seen[k] == 0 {
				stems[i] = cand
				taken[k] = true
				break
			}
		}
	}
	return stems
}

func processFile(cfg Config, path, stem string) Result {
	base := filepath.Base(path)
	r := Result{Path: path, Name: strings.TrimSuffix(base, filepath.Ext(base))}

	res, err := cfg.Importer.ImportFile(path)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, w.String())
	}
	for _, d := range res.Dropped {
		r.Dropped = append(r.Dropped, fmt.Sprintf("%s: %v", d.Chunk, d.Err))
	}
	r.Summary = res.Summary()

	r.Output = stem + ".json"
	if err := export.WriteFile(filepath.Join(cfg.OutputDir, r.Output), res.Scene); err != nil {
		r.Error = err.Error()
		return r
	}

	if cfg.Preview {
		r.Image = stem + ".webp"
		img := preview.Render(res.Scene, cfg.PreviewOptions)
		if err := preview.WriteWebP(filepath.Join(cfg.OutputDir, r.Image), img); err != nil {
			r.Error = err.Error()
			return r
		}
	}

	r.Success = true
	return r
}
