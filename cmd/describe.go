package cmd

import (
	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var describeOutputPath string

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print category counts and distribution summaries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := runOptions(cmd)
		if err != nil {
			return err
		}
		res, err := pipeline.Prepare(opt, newLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		rep := &analysis.Report{Source: res.Source, Description: analysis.Describe(res.Table)}
		return writeOrPrint(cmd, describeOutputPath, rep.Text(), "description")
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	addInputFlag(describeCmd)
	describeCmd.Flags().StringVarP(&describeOutputPath, "output", "o", "", "write the description to a file")
}
