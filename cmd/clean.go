package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/bnbeda/internal/analysis"
	"github.com/KaramelBytes/bnbeda/internal/pipeline"
	"github.com/spf13/cobra"
)

var cleanOutputPath string

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the listings file and report rows kept at each step",
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
		stats := res.Stats
		rep := &analysis.Report{Source: res.Source, Stats: &stats}
		fmt.Fprint(cmd.OutOrStdout(), rep.Text())
		fmt.Fprintf(cmd.OutOrStdout(), "Shape: %d rows x %d columns\n", res.Table.Len(), res.Table.Frame().Ncol())

		if cleanOutputPath == "" {
			return nil
		}
		f, err := os.Create(cleanOutputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		if err := res.Table.WriteCSV(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote cleaned listings to %s\n", cleanOutputPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	addInputFlag(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "write the cleaned table as CSV")
}
