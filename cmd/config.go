package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/ffcdb-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set ffcdb configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if cfg == nil {
			fmt.Fprintln(out, "No config loaded")
			return nil
		}
		fmt.Fprintf(out, "data_folder: %s\n", cfg.DataFolder)
		fmt.Fprintf(out, "ffc_db_file: %s\n", cfg.FFCdbFile)
		fmt.Fprintf(out, "cleaned_file: %s\n", cfg.CleanedFile)
		fmt.Fprintf(out, "api_xl_url: %s\n", cfg.APIXLURL)
		fmt.Fprintf(out, "data_sheet_name: %s\n", cfg.DataSheetName)
		fmt.Fprintf(out, "corr_threshold: %g\n", cfg.CorrThreshold)
		fmt.Fprintf(out, "corr_decimals: %d\n", cfg.CorrDecimals)
		fmt.Fprintf(out, "tonnage_column: %q\n", cfg.TonnageColumn)
		fmt.Fprintf(out, "food_list_column: %q\n", cfg.FoodListColumn)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", cfg.HTTPTimeoutSec)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
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
