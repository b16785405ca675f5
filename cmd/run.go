package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runNoPlots    bool
	runReportPath string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: clean, describe, test and export plots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opt.SkipPlots = runNoPlots
		res, err := pipeline.Run(opt, newLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		if err := writeOrPrint(cmd, runReportPath, res.Report(opt.OutputDir).Text(), "report"); err != nil {
			return err
		}
		if !runNoPlots {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d plots to %s\n", len(res.Plots), opt.OutputDir)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addInputFlag(runCmd)
	runCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for plots and manifest; overrides output_dir")
	runCmd.Flags().Float64Var(&flagBenchmark, "benchmark", 0, "benchmark nightly price for question 4; overrides benchmark_price")
	runCmd.Flags().BoolVar(&runNoPlots, "no-plots", false, "skip plot export")
	runCmd.Flags().StringVarP(&runReportPath, "output", "o", "", "write the report to a file instead of stdout")
}
