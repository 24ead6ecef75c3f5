package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/ffcdb-cli/internal/analysis"
	"github.com/KaramelBytes/ffcdb-cli/internal/table"
	"github.com/KaramelBytes/ffcdb-cli/internal/utils"
)

var (
	flagSummaryOutput     string
	flagSummaryCorr       bool
	flagSummaryMethod     string
	flagSummaryTopValues  int
	flagSummaryExamples   int
	flagSummaryOutlierThr float64
)

var summaryCmd = &cobra.Command{
	Use:   "summary [file]",
	Short: "Summarize the cleaned table (schema, stats, correlations)",
	Long: `Summary prints per-field statistics of a cleaned table: kinds, missing
values, numeric ranges, category counts and, with --correlations, the strongest
pairs. The default file is the configured cleaned table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.CleanedPath()
		if len(args) == 1 {
			path = args[0]
		}
		clean, err := table.LoadFile(path)
		if err != nil {
			return fmt.Errorf("load cleaned dataset: %w", err)
		}
		opt := analysis.DefaultOptions()
		if flagSummaryTopValues > 0 {
			opt.TopValues = flagSummaryTopValues
		}
		if flagSummaryExamples > 0 {
			opt.Examples = flagSummaryExamples
		}
		if cmd.Flags().Changed("outliers-threshold") {
			opt.OutlierThreshold = flagSummaryOutlierThr
		}
		rep, err := analysis.Summarize(filepath.Base(path), clean, opt)
		if err != nil {
			return err
		}
		if flagSummaryCorr {
			method, err := analysis.ParseMethod(flagSummaryMethod)
			if err != nil {
				return err
			}
			m, err := analysis.Correlate(clean, method)
			if err != nil {
				return err
			}
			rep.Corr = m
			rep.Strong = analysis.StrongPairs(m, cfg.CorrThreshold, cfg.CorrDecimals)
		}
		md := rep.Markdown()
		if flagSummaryOutput != "" {
			if err := utils.SafeWriteFile(flagSummaryOutput, []byte(md)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote summary to %s\n", flagSummaryOutput)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().StringVarP(&flagSummaryOutput, "output", "o", "", "write the summary to a file")
	summaryCmd.Flags().BoolVar(&flagSummaryCorr, "correlations", false, "include correlations")
	summaryCmd.Flags().StringVarP(&flagSummaryMethod, "method", "m", string(analysis.Pearson), "correlation method: pearson, kendall or spearman")
	summaryCmd.Flags().IntVar(&flagSummaryTopValues, "top-values", 0, "top categories listed per field")
	summaryCmd.Flags().IntVar(&flagSummaryExamples, "examples", 0, "sample values listed per text field")
	summaryCmd.Flags().Float64Var(&flagSummaryOutlierThr, "outliers-threshold", 0, "robust z threshold for outliers (0 disables)")
}
