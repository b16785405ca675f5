package cmd

import (
	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var hypothesesOutputPath string

var hypothesesCmd = &cobra.Command{
	Use:     "hypotheses",
	Aliases: []string{"test"},
	Short:   "Run the seven hypothesis tests on the cleaned listings",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := runOptions(cmd)
		if err != nil {
			return err
		}
		res, err := pipeline.Prepare(opt, newLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		f, err := analysis.RunQuestions(res.Table, opt.Benchmark)
		if err != nil {
			return err
		}
		rep := &analysis.Report{Source: res.Source, Findings: f}
		return writeOrPrint(cmd, hypothesesOutputPath, rep.Text(), "test results")
	},
}

func init() {
	rootCmd.AddCommand(hypothesesCmd)
	addInputFlag(hypothesesCmd)
	hypothesesCmd.Flags().Float64Var(&flagBenchmark, "benchmark", 0, "benchmark nightly price for question 4; overrides benchmark_price")
	hypothesesCmd.Flags().StringVarP(&hypothesesOutputPath, "output", "o", "", "write the results to a file")
}
