package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/ffcdb-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/ffcdb-cli/internal/config"
	"github.com/KaramelBytes/ffcdb-cli/internal/logging"
)

var (
	// Global flags
	cfgFile            string
	debug              bool
	flagHTTPTimeoutSec int

	// Full-flow flags
	flagForceDownload     bool
	flagForceCleanup      bool
	flagCorrMethod        string
	flagCorrelation       bool
	flagVisualisation     bool
	flagSaveVisualisation bool
	flagRegression        bool
	flagSaveRegression    bool

	// Loaded configuration and logger
	cfg    *cfgpkg.Global
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ffcdb",
	Short: "FFCdb CLI: download, clean and analyse the Food Contact Chemicals database",
	Long: `ffcdb downloads the FCCdb workbook, turns it into a typed clean table and
produces correlation, material and regression reports from it.

Without a subcommand it runs the whole flow: download when the workbook is not
cached, clean when no cleaned table exists, then the requested reports.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	RunE:              runAll,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.ffcdb/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP client timeout in seconds (overrides config)")

	f := rootCmd.Flags()
	f.BoolVarP(&flagForceDownload, "force-download", "D", false, "download the workbook even if it is cached")
	f.BoolVarP(&flagForceCleanup, "force-cleanup", "C", false, "clean the workbook even if a cleaned table exists")
	f.StringVarP(&flagCorrMethod, "corr-method", "m", string(analysis.Pearson), "correlation method: pearson, kendall or spearman")
	f.BoolVar(&flagCorrelation, "correlation", false, "write the correlation matrix and strong pairs report")
	f.BoolVar(&flagVisualisation, "visualisation", false, "print the material and food contact report")
	f.BoolVar(&flagSaveVisualisation, "save-visualisation", false, "save the material report as CSV")
	f.BoolVar(&flagRegression, "regression", false, "print a linear regression of the hazard flag")
	f.BoolVar(&flagSaveRegression, "save-regression", false, "save regression coefficients and predictions as CSV")
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c

	if cmd.Flags().Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	l, err := logging.Setup(level, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	logger = l
	return nil
}
