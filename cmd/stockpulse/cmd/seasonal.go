package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"StockPulse/internal/config"
	"StockPulse/internal/report"
)

var (
	seasonalYears    int
	seasonalTop      int
	seasonalCategory string
	seasonalNoCSV    bool
)

var seasonalCmd = &cobra.Command{
	Use:   "seasonal",
	Short: "Rank symbols by first-half vs second-half monthly pattern",
	Long: `Fetches daily closes for every configured universe and compares the mean close
of each month's first half (day 1-15) with its second half.

Examples:
  stockpulse seasonal
  stockpulse seasonal --years 3 --category PSU`,
	RunE: runSeasonal,
}

func init() {
	seasonalCmd.Flags().IntVar(&seasonalYears, "years", 0, "years of history (default from config)")
	seasonalCmd.Flags().IntVar(&seasonalTop, "top", 0, "number of top picks (default from config)")
	seasonalCmd.Flags().StringVar(&seasonalCategory, "category", "", "only analyze this universe")
	seasonalCmd.Flags().BoolVar(&seasonalNoCSV, "no-csv", false, "skip CSV export")
}

func selectUniverses(all []config.Universe, category string) ([]config.Universe, error) {
	if category == "" {
		return all, nil
	}
	for _, u := range all {
		if strings.EqualFold(u.Category, category) {
			return []config.Universe{u}, nil
		}
	}
	return nil, fmt.Errorf("unknown category %q", category)
}

func runSeasonal(cmd *cobra.Command, args []string) error {
	rec := openRecorder()
	defer rec.Close()

	p := newPipeline(rec)
	if seasonalYears > 0 {
		p.Years = seasonalYears
	}
	universes, err := selectUniverses(p.Universes, seasonalCategory)
	if err != nil {
		return err
	}
	p.Universes = universes
	if seasonalNoCSV {
		p.OutputDir = ""
	}
	top := cfg.Seasonal.TopN
	if seasonalTop > 0 {
		top = seasonalTop
	}

	out := cmd.OutOrStdout()
	report.Heading(out, fmt.Sprintf("STOCK PATTERN ANALYSIS: First 2 Weeks vs Last 2 Weeks (Last %d Years)", p.Years))

	res, err := p.Seasonal(cmd.Context())
	if err != nil {
		return err
	}

	report.Heading(out, "ANALYSIS RESULTS (Sorted by Consistency)")
	fmt.Fprintln(out, "Win Rate: % of months where Last 2 Weeks Price > First 2 Weeks Price")
	fmt.Fprintln(out, strings.Repeat("-", 80))
	if len(res.Report.Ranked) == 0 {
		fmt.Fprintln(out, "No results to display.")
	} else if err := report.WriteSeasonalTable(out, res.Report.Ranked); err != nil {
		return err
	}
	for _, o := range res.Report.Failed() {
		fmt.Fprintf(out, "skipped %s: %v\n", o.Symbol, o.Err)
	}
	if res.CSVPath != "" {
		fmt.Fprintf(out, "\nDetailed results saved to: %s\n", res.CSVPath)
	}

	if len(res.Report.Ranked) > 0 {
		report.Heading(out, "TOP PICKS (Best Pattern)")
		report.WriteTopPicks(out, res.Report.Ranked, top)
	}
	return nil
}
