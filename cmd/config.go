package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/bnbeda/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set bnbeda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "input_path: %s\n", cfg.InputPath)
		fmt.Fprintf(out, "output_dir: %s\n", cfg.OutputDir)
		fmt.Fprintf(out, "benchmark_price: %g\n", cfg.BenchmarkPrice)
		fmt.Fprintf(out, "outlier_sigma: %g\n", cfg.OutlierSigma)
		fmt.Fprintf(out, "max_minimum_nights: %d\n", cfg.MaxMinimumNights)
		if cfg.XLSXSheet != "" {
			fmt.Fprintf(out, "xlsx_sheet: %s\n", cfg.XLSXSheet)
		}
		fmt.Fprintf(out, "histogram_bins: %d\n", cfg.HistogramBins)
		fmt.Fprintf(out, "plot_width_in: %g\n", cfg.PlotWidthIn)
		fmt.Fprintf(out, "plot_height_in: %g\n", cfg.PlotHeightIn)
		fmt.Fprintf(out, "plot_format: %s\n", cfg.PlotFormat)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		// start from the file alone so env overrides stay out of it
		saved, err := cfgpkg.LoadFile(cfgFile)
		if err != nil {
			return err
		}
		next := *saved
		switch key {
		case "input_path":
			next.InputPath = val
		case "output_dir":
			next.OutputDir = val
		case "xlsx_sheet":
			next.XLSXSheet = val
		case "plot_format":
			next.PlotFormat = strings.ToLower(strings.TrimPrefix(val, "."))
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "benchmark_price", "outlier_sigma", "plot_width_in", "plot_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for %s: %w", key, err)
			}
			switch key {
			case "benchmark_price":
				next.BenchmarkPrice = f
			case "outlier_sigma":
				next.OutlierSigma = f
			case "plot_width_in":
				next.PlotWidthIn = f
			default:
				next.PlotHeightIn = f
			}
		case "max_minimum_nights", "histogram_bins":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			if key == "histogram_bins" {
				next.HistogramBins = i
			} else {
				next.MaxMinimumNights = i
			}
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		if c, err := cfgpkg.Load(cfgFile); err == nil {
			cfg = c
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
