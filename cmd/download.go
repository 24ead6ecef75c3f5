package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagDownloadURL string

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the FCCdb workbook into the data folder",
	Long:  "Download always fetches the workbook, replacing the cached copy only when the request succeeds.",
	RunE: func(cmd *cobra.Command, args []string) error {
		src := newSource()
		if flagDownloadURL != "" {
			src.URL = flagDownloadURL
		}
		if _, err := downloadRaw(cmd.Context(), cmd.OutOrStdout(), src); err != nil {
			return fmt.Errorf("download: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVar(&flagDownloadURL, "url", "", "workbook URL (overrides api_xl_url)")
}
