// Package cmd - StockPulse CLI commands
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockPulse/internal/config"
	"StockPulse/internal/logger"
)

var (
	cfgFile string
	verbose bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stockpulse",
	Short: "End-of-day NSE stock analysis",
	Long: `StockPulse - end-of-day NSE stock analysis

Commands:
    seasonal    first-half vs second-half monthly pattern over the configured universes
    screen      bhavcopy price-band screener with next-session predictions
    predict     next-session prediction for given symbols
    history     recorded seasonal summaries of a symbol
    serve       run the cron scheduler and Telegram bot
`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $CONFIG_PATH or configs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(seasonalCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// initConfig loads and validates configuration and builds the logger.
func initConfig() error {
	path := cfgFile
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	c, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		c.Log.Level = "debug"
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	l, err := logger.New(c.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	cfg, log = c, l
	log.Debug("config loaded", zap.String("path", path), zap.String("provider", cfg.DataSource.Provider))
	return nil
}
