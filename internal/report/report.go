// Package report renders analysis results as console tables and CSV files.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"StockPulse/internal/model"
	"StockPulse/internal/recorder"
)

const rule = "================================================================================"

// FormatPct renders a raw percentage with sign and two decimals, e.g. "+2.34%".
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// FormatRate renders a win rate with one decimal, e.g. "66.7%".
func FormatRate(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func timestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// SeasonalFileName is the CSV name for a seasonal run at t.
func SeasonalFileName(t time.Time) string {
	return "stock_pattern_analysis_" + timestamp(t) + ".csv"
}

// PredictionsFileName is the CSV name for a prediction run at t.
func PredictionsFileName(t time.Time) string {
	return "ai_stock_predictions_" + timestamp(t) + ".csv"
}

// PicksFileName is the CSV name for the price-band screener picks at t.
func PicksFileName(t time.Time) string {
	return "stock_top_picks_" + timestamp(t) + ".csv"
}

// Heading writes a title framed by rules.
func Heading(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n%s\n", rule, title, rule)
}

// TopPicks returns the first n summaries of an already ranked slice.
func TopPicks(ranked []model.SymbolSummary, n int) []model.SymbolSummary {
	if n < 0 || n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// WriteSeasonalTable prints ranked summaries as an aligned table.
func WriteSeasonalTable(w io.Writer, summaries []model.SymbolSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Symbol\tCategory\tWin_Rate\tAvg_Monthly_Change\tRecent_Trend_6M\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Symbol, s.Category, FormatRate(s.WinRate),
			FormatPct(s.AvgMonthlyChange), FormatPct(s.RecentTrend6M))
	}
	return tw.Flush()
}

// WriteTopPicks prints the best n summaries with their consistency and average gain.
func WriteTopPicks(w io.Writer, ranked []model.SymbolSummary, n int) {
	for _, s := range TopPicks(ranked, n) {
		fmt.Fprintf(w, "* %s (%s)\n", s.Symbol, s.Category)
		fmt.Fprintf(w, "   Consistency: %s of months\n", FormatRate(s.WinRate))
		fmt.Fprintf(w, "   Avg Gain (2nd Half vs 1st Half): %s\n", FormatPct(s.AvgMonthlyChange))
		fmt.Fprintln(w, strings.Repeat("-", 40))
	}
}

// WriteSeasonalCSV writes summaries with raw, unformatted numbers.
func WriteSeasonalCSV(w io.Writer, summaries []model.SymbolSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Symbol", "Category", "Avg_Monthly_Change", "Win_Rate", "Recent_Trend_6M", "Total_Months"}); err != nil {
		return err
	}
	for _, s := range summaries {
		rec := []string{
			s.Symbol, s.Category,
			ftoa(s.AvgMonthlyChange), ftoa(s.WinRate), ftoa(s.RecentTrend6M),
			strconv.Itoa(s.TotalMonths),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePicksTable prints screener picks with the live move from the report close.
func WritePicksTable(w io.Writer, picks []model.Pick) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tCLOSE_PRICE\tLIVE_PRICE\tCHANGE\tCHANGE_%\tSTOP_LOSS\tTARGET\t")
	for _, p := range picks {
		change, pct := p.Change()
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\t\n",
			p.Symbol, p.Close, p.Live, change, FormatPct(pct), p.StopLoss.StringFixed(2), p.Target.StringFixed(2))
	}
	return tw.Flush()
}

// WritePicksCSV writes screener picks.
func WritePicksCSV(w io.Writer, picks []model.Pick) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Symbol", "Close_Price", "Live_Price", "Change_Pct", "Stop_Loss", "Target"}); err != nil {
		return err
	}
	for _, p := range picks {
		_, pct := p.Change()
		rec := []string{p.Symbol, ftoa(p.Close), ftoa(p.Live), ftoa(pct), p.StopLoss.String(), p.Target.String()}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePredictionsTable prints next-session predictions.
func WritePredictionsTable(w io.Writer, preds []model.Prediction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Symbol\tClose_Price\tLive_Price\tTarget_Price\tStop_Loss\tSentiment\tSource\tReasoning")
	for _, p := range preds {
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%s\t%s\t%s\n",
			p.Symbol, p.Close, p.Live, p.Target, p.StopLoss, p.Sentiment, p.Source, p.Reasoning)
	}
	return tw.Flush()
}

// WritePredictionsCSV writes next-session predictions.
func WritePredictionsCSV(w io.Writer, preds []model.Prediction) error {
	cw := csv.NewWriter(w)
	header := []string{"Symbol", "Close_Price", "Live_Price", "Target_Price", "Stop_Loss", "Sentiment", "Confidence", "Source", "Reasoning"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, p := range preds {
		rec := []string{
			p.Symbol, ftoa(p.Close), ftoa(p.Live), ftoa(p.Target), ftoa(p.StopLoss),
			p.Sentiment, ftoa(p.Confidence), p.Source, p.Reasoning,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV creates dir/name and fills it with write. It returns the full path.
func SaveCSV(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

// WriteHistoryTable prints a symbol's recorded summaries, newest first.
func WriteHistoryTable(w io.Writer, entries []recorder.HistoryEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Run_Date\tRank\tCategory\tWin_Rate\tAvg_Monthly_Change\tRecent_Trend_6M\tTotal_Months")
	for _, e := range entries {
		s := e.Summary
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%d\n",
			e.StartedAt.Format("2006-01-02 15:04"), e.Rank, s.Category,
			FormatRate(s.WinRate), FormatPct(s.AvgMonthlyChange), FormatPct(s.RecentTrend6M), s.TotalMonths)
	}
	return tw.Flush()
}
