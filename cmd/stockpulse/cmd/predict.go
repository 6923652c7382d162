package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"StockPulse/internal/report"
)

var predictCmd = &cobra.Command{
	Use:   "predict [SYMBOL...]",
	Short: "Predict the next session for symbols in yesterday's bhavcopy",
	Long: `Computes pivot levels from the previous session and asks the configured
inference endpoint for a target price, falling back to R1/S1. Without symbols,
the prediction price band is used.

Examples:
  stockpulse predict
  stockpulse predict SBIN TITAN.NS`,
	RunE: runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	rec := openRecorder()
	defer rec.Close()

	res, err := newPipeline(rec).Predict(cmd.Context(), args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Heading(out, "SUMMARY - TOMORROW'S PREDICTIONS (AI + PIVOTS)")
	if len(res.Predictions) == 0 {
		fmt.Fprintln(out, "No matching stocks.")
		return nil
	}
	if err := report.WritePredictionsTable(out, res.Predictions); err != nil {
		return err
	}
	if res.CSVPath != "" {
		fmt.Fprintf(out, "\nResults saved to: %s\n", res.CSVPath)
	}
	return nil
}
