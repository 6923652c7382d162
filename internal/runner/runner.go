// Package runner drives the seasonal analysis over configured symbol universes.
package runner

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"StockPulse/internal/collector"
	"StockPulse/internal/config"
	"StockPulse/internal/model"
	"StockPulse/internal/seasonal"
)

// Outcome is the per-symbol result of a batch run. Exactly one of Summary or Err
// is set; MonthErr may accompany a Summary when individual months were excluded.
type Outcome struct {
	Symbol       string
	Category     string
	Summary      *model.SymbolSummary
	Observations []model.MonthlyObservation
	MonthErr     error
	Err          error
}

// OK reports whether the symbol produced a summary.
func (o Outcome) OK() bool { return o.Summary != nil }

// IsFetchError reports whether the symbol failed in the data source.
func (o Outcome) IsFetchError() bool {
	var fe *collector.FetchError
	return errors.As(o.Err, &fe)
}

// IsEmpty reports whether the symbol had no usable history.
func (o Outcome) IsEmpty() bool {
	var eh *seasonal.EmptyHistoryError
	return errors.As(o.Err, &eh)
}

// Report is the result of one batch run.
type Report struct {
	Start    time.Time
	End      time.Time
	Outcomes []Outcome // input order
	Ranked   []model.SymbolSummary
}

// Failed returns outcomes without a summary.
func (r *Report) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Runner fetches history per symbol and runs the seasonal analyzer.
type Runner struct {
	Fetcher     collector.Fetcher
	Concurrency int
	Logger      *zap.Logger
}

// New creates a Runner.
func New(fetcher collector.Fetcher, concurrency int, logger *zap.Logger) *Runner {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Runner{Fetcher: fetcher, Concurrency: concurrency, Logger: logger.Named("runner")}
}

// Window returns the [start, end] range covering the given number of years up to now.
func Window(now time.Time, years int) (time.Time, time.Time) {
	return now.AddDate(0, 0, -365*years), now
}

// Run analyzes every symbol of every universe. Per-symbol failures are recorded
// in the outcome and never abort the batch; only ctx cancellation stops it early.
func (r *Runner) Run(ctx context.Context, universes []config.Universe, start, end time.Time) (*Report, error) {
	type job struct {
		symbol, category string
	}
	var jobs []job
	for _, u := range universes {
		for _, s := range u.Symbols {
			jobs = append(jobs, job{symbol: s, category: u.Category})
		}
	}

	outcomes := make([]Outcome, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Concurrency)
	for i, j := range jobs {
		g.Go(func() error {
			outcomes[i] = r.analyzeSymbol(gctx, j.symbol, j.category, start, end)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Start: start, End: end, Outcomes: outcomes}
	var summaries []model.SymbolSummary
	for _, o := range outcomes {
		if o.OK() {
			summaries = append(summaries, *o.Summary)
		}
	}
	report.Ranked = seasonal.RankSymbols(summaries)
	r.Logger.Info("batch complete",
		zap.Int("symbols", len(jobs)),
		zap.Int("ranked", len(report.Ranked)),
		zap.Int("failed", len(jobs)-len(report.Ranked)))
	return report, nil
}

func (r *Runner) analyzeSymbol(ctx context.Context, symbol, category string, start, end time.Time) Outcome {
	out := Outcome{Symbol: symbol, Category: category}
	log := r.Logger.With(zap.String("symbol", symbol))

	history, err := r.Fetcher.FetchHistory(ctx, symbol, start, end)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		out.Err = err
		return out
	}
	if len(history) == 0 {
		log.Warn("no data found")
		out.Err = &seasonal.EmptyHistoryError{Symbol: symbol}
		return out
	}

	summary, obs, err := seasonal.Analyze(symbol, category, history)
	if summary == nil {
		log.Warn("analysis failed", zap.Error(err))
		out.Err = err
		return out
	}
	if err != nil {
		log.Warn("months excluded", zap.Error(err))
		out.MonthErr = err
	}
	out.Summary = summary
	out.Observations = obs
	log.Debug("analyzed",
		zap.Int("months", summary.TotalMonths),
		zap.Float64("win_rate", summary.WinRate))
	return out
}
