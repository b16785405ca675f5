package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/bnbeda/internal/config"
	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Per-run overrides shared by the data commands
	flagInput     string
	flagOutputDir string
	flagBenchmark float64

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "bnbeda",
	Short: "bnbeda: exploratory analysis and hypothesis tests for NYC Airbnb listings",
	Long: `bnbeda loads the 2019 New York City Airbnb listings file, cleans it, prints
descriptive summaries, runs seven hypothesis tests on price and its drivers,
and writes a fixed gallery of figures.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.bnbeda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal here: config commands can still repair the file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c
}

// runOptions resolves the pipeline options from config and command flags.
func runOptions(cmd *cobra.Command) (pipeline.Options, error) {
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return pipeline.Options{}, err
		}
		cfg = c
	}
	opt := pipeline.OptionsFromConfig(cfg)
	f := cmd.Flags()
	if f.Lookup("input") != nil && f.Changed("input") {
		opt.InputPath = flagInput
	}
	if f.Lookup("output-dir") != nil && f.Changed("output-dir") {
		opt.OutputDir = flagOutputDir
	}
	if f.Lookup("benchmark") != nil && f.Changed("benchmark") {
		if flagBenchmark <= 0 {
			return opt, fmt.Errorf("invalid --benchmark: %v (must be > 0)", flagBenchmark)
		}
		opt.Benchmark = flagBenchmark
	}
	if strings.TrimSpace(opt.InputPath) == "" {
		return opt, fmt.Errorf("no input file: set --input or input_path")
	}
	return opt, nil
}

// newLogger builds the stderr text logger at the configured level.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil {
		level = parseLevel(cfg.LogLevel)
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// addInputFlag registers --input on a data command.
func addInputFlag(c *cobra.Command) {
	c.Flags().StringVarP(&flagInput, "input", "i", "", "listings file (.csv, .tsv or .xlsx); overrides input_path")
}

// writeOrPrint writes text to path, or to the command's stdout when path is empty.
func writeOrPrint(cmd *cobra.Command, path, text, what string) error {
	if path == "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
	return nil
}
