package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	flagCleanInput string
	flagCleanSheet string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Build the cleaned table from the cached workbook",
	Long: `Clean runs every field extractor over the raw workbook and writes the
cleaned CSV plus its schema. Use --input to clean a local .xlsx or .csv export
instead of the cached download.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := newSource()
		if flagCleanInput != "" {
			src.RawPath = flagCleanInput
			if !src.IsDownloaded() {
				return fmt.Errorf("input not found: %s", flagCleanInput)
			}
		}
		if flagCleanSheet != "" {
			src.Sheet = flagCleanSheet
		}
		_, err := cleanRaw(cmd.Context(), cmd.OutOrStdout(), src)
		return err
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVar(&flagCleanInput, "input", "", "raw .xlsx or .csv file (default is the cached workbook)")
	cleanCmd.Flags().StringVar(&flagCleanSheet, "sheet", "", "workbook sheet name (overrides data_sheet_name)")
}
