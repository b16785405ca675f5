// Package pipeline runs the listings analysis end to end: load, clean,
// describe, test, and export figures.
package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/config"
	"github.com/KaramelBytes/bnbeda/internal/listings"
	"github.com/KaramelBytes/bnbeda/internal/plots"
)

// Options configures a run.
type Options struct {
	InputPath string
	Load      listings.Options
	Clean     listings.CleanOptions
	Benchmark float64
	OutputDir string
	Plots     plots.Options
	// SkipPlots disables figure export and the manifest.
	SkipPlots bool
}

// OptionsFromConfig maps the global configuration onto run options.
func OptionsFromConfig(c *config.Global) Options {
	return Options{
		InputPath: c.InputPath,
		Load:      listings.Options{Sheet: c.XLSXSheet},
		Clean: listings.CleanOptions{
			OutlierSigma:     c.OutlierSigma,
			MaxMinimumNights: c.MaxMinimumNights,
		},
		Benchmark: c.BenchmarkPrice,
		OutputDir: c.OutputDir,
		Plots: plots.Options{
			Bins:     c.HistogramBins,
			WidthIn:  c.PlotWidthIn,
			HeightIn: c.PlotHeightIn,
			Format:   c.PlotFormat,
		},
	}
}

// Result holds every artifact of a run.
type Result struct {
	Source      string
	Table       *listings.Table
	Stats       listings.CleanStats
	Description *analysis.Description
	Findings    *analysis.Findings
	Gallery     *plots.Gallery
	Plots       []string
	Manifest    *Manifest
}

// Report assembles the printable report.
func (r *Result) Report(outputDir string) *analysis.Report {
	stats := r.Stats
	rep := &analysis.Report{
		Source:      r.Source,
		Stats:       &stats,
		Description: r.Description,
		Findings:    r.Findings,
		Plots:       r.Plots,
	}
	if len(r.Plots) > 0 {
		rep.OutputDir = outputDir
	}
	return rep
}

// Prepare loads and cleans the input.
func Prepare(opt Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	raw, err := listings.Load(opt.InputPath, opt.Load)
	if err != nil {
		return nil, err
	}
	logger.Info("loaded listings", "file", raw.Name, "rows", raw.Len(), "columns", raw.Frame.Ncol())
	t, st, err := listings.NewCleaner(opt.Clean, logger).Clean(raw)
	if err != nil {
		return nil, err
	}
	return &Result{Source: raw.Name, Table: t, Stats: st}, nil
}

// Run executes every stage in order and stops at the first error.
func Run(opt Options, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	res, err := Prepare(opt, logger)
	if err != nil {
		return nil, err
	}
	res.Description = analysis.Describe(res.Table)

	res.Findings, err = analysis.RunQuestions(res.Table, opt.Benchmark)
	if err != nil {
		return nil, err
	}
	logger.Debug("hypothesis tests complete", "questions", 7)

	res.Gallery, err = plots.Build(res.Table, res.Findings, opt.Plots)
	if err != nil {
		return nil, fmt.Errorf("build plots: %w", err)
	}
	if opt.SkipPlots {
		return res, nil
	}
	if err := res.Export(opt, logger); err != nil {
		return nil, err
	}
	return res, nil
}

// Export writes the gallery and the manifest into opt.OutputDir.
func (r *Result) Export(opt Options, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	files, err := plots.Export(opt.OutputDir, r.Gallery, opt.Plots)
	if err != nil {
		return fmt.Errorf("export plots: %w", err)
	}
	r.Plots = files
	r.Manifest = NewManifest(opt.InputPath, r.Stats, opt.Benchmark, files)
	path, err := WriteManifest(opt.OutputDir, r.Manifest)
	if err != nil {
		return err
	}
	logger.Info("exported plots", "dir", opt.OutputDir, "files", len(files), "manifest", filepath.Base(path))
	return nil
}
