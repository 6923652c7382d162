package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockPulse/internal/report"
)

var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Screen yesterday's bhavcopy by price band",
	Long: `Downloads (or reuses) the previous session's full bhavcopy, keeps EQ rows whose
close lies in the screener band and prints the top picks with stop-loss and
target. Rows in the prediction band get a next-session prediction.`,
	RunE: runScreen,
}

func runScreen(cmd *cobra.Command, args []string) error {
	rec := openRecorder()
	defer rec.Close()

	res, err := newPipeline(rec).Screen(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Heading(out, fmt.Sprintf("TOP %d STOCKS FROM %s (%.0f-%.0f)",
		cfg.Screener.TopN, res.TradeDate.Format("2006-01-02"), cfg.Screener.Band.Min, cfg.Screener.Band.Max))
	if len(res.Picks) == 0 {
		fmt.Fprintln(out, "No stocks in band.")
	} else if err := report.WritePicksTable(out, res.Picks); err != nil {
		return err
	}

	if len(res.Predictions) > 0 {
		report.Heading(out, "SUMMARY - TOMORROW'S PREDICTIONS (AI + PIVOTS)")
		if err := report.WritePredictionsTable(out, res.Predictions); err != nil {
			return err
		}
	}
	if res.PicksCSV != "" {
		fmt.Fprintf(out, "\nPicks saved to: %s\n", res.PicksCSV)
	}
	if res.CSVPath != "" {
		fmt.Fprintf(out, "Predictions saved to: %s\n", res.CSVPath)
	}
	return nil
}
