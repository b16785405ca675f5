package cmd

import (
	"fmt"

	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Export the figure gallery without printing the report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := runOptions(cmd)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(opt, newLogger(cmd.ErrOrStderr()))
		if err != nil {
			return err
		}
		for _, name := range res.Plots {
			fmt.Fprintf(cmd.OutOrStdout(), "  • %s\n", name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d plots to %s (run %s)\n", len(res.Plots), opt.OutputDir, res.Manifest.RunID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addInputFlag(plotCmd)
	plotCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "directory for plots and manifest; overrides output_dir")
}
