package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"StockPulse/internal/notifier"
	"StockPulse/internal/scheduler"
)

var runNow bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cron scheduler and Telegram bot",
	Long: `Schedules the seasonal scan and the daily screener, sends reports to Telegram
and answers /seasonal, /screen and /help. Ctrl+C stops it.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&runNow, "run-now", false, "run the seasonal scan on start (also RUN_ON_START=true)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log.Info("StockPulse starting")

	rec := openRecorder()
	defer rec.Close()

	var tn *notifier.TelegramNotifier
	var n notifier.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)
		n = tn
	} else {
		log.Warn("telegram not configured, reports are only logged")
	}

	sched := scheduler.NewScheduler(ctx, newPipeline(rec), n, cfg.Seasonal.TopN, log)
	if err := sched.RegisterAll(cfg.Schedule.SeasonalCron, cfg.Schedule.ScreenCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info("telegram polling started")
	}

	if runNow || os.Getenv("RUN_ON_START") == "true" {
		log.Info("running seasonal task now")
		go sched.RunSeasonalNow()
	}

	log.Info("StockPulse is running, press Ctrl+C to stop",
		zap.String("seasonal_cron", cfg.Schedule.SeasonalCron),
		zap.String("screen_cron", cfg.Schedule.ScreenCron))
	<-ctx.Done()
	log.Info("shutdown signal received, stopping")
	return nil
}
