package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ffcdb-cli/internal/analysis"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
)

var (
	flagCorrelateMethod    string
	flagCorrelateThreshold float64
	flagCorrelateDecimals  int
)

var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "Write the correlation matrix and strong pairs of the cleaned table",
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := analysis.ParseMethod(flagCorrelateMethod)
		if err != nil {
			return err
		}
		if f := cmd.Flags(); f.Changed("threshold") {
			if flagCorrelateThreshold < 0 || flagCorrelateThreshold > 1 {
				return fmt.Errorf("--threshold must be within 0..1")
			}
			cfg.CorrThreshold = flagCorrelateThreshold
		}
		if cmd.Flags().Changed("decimals") {
			if flagCorrelateDecimals < 0 {
				return fmt.Errorf("--decimals must be >= 0")
			}
			cfg.CorrDecimals = flagCorrelateDecimals
		}
		clean, err := table.LoadFile(cfg.CleanedPath())
		if err != nil {
			return fmt.Errorf("load cleaned dataset (run 'ffcdb clean' first): %w", err)
		}
		m, err := openManifest()
		if err != nil {
			return err
		}
		if err := correlationReport(cmd.OutOrStdout(), clean, method, m); err != nil {
			return err
		}
		return m.Save()
	},
}

func init() {
	rootCmd.AddCommand(correlateCmd)
	correlateCmd.Flags().StringVarP(&flagCorrelateMethod, "method", "m", string(analysis.Pearson), "correlation method: pearson, kendall or spearman")
	correlateCmd.Flags().Float64Var(&flagCorrelateThreshold, "threshold", 0, "strong correlation threshold (overrides corr_threshold)")
	correlateCmd.Flags().IntVar(&flagCorrelateDecimals, "decimals", 0, "decimals kept in the strong pairs report (overrides corr_decimals)")
}
