package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"StockPulse/internal/recorder"
	"StockPulse/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history SYMBOL",
	Short: "Show recorded seasonal summaries of a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Database.SQLitePath == "" {
		return errors.New("database.sqlite_path is not configured")
	}
	rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		return err
	}
	defer rec.Close()

	entries, err := rec.SymbolHistory(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No recorded runs for %s\n", args[0])
		return nil
	}
	return report.WriteHistoryTable(out, entries)
}
