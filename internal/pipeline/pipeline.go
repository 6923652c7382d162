// Package pipeline wires fetching, analysis, persistence and export into the
// seasonal scan and the daily screener.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"StockPulse/internal/bhavcopy"
	"StockPulse/internal/config"
	"StockPulse/internal/model"
	"StockPulse/internal/predictor"
	"StockPulse/internal/recorder"
	"StockPulse/internal/report"
	"StockPulse/internal/runner"
)

// Source resolves the bhavcopy file for a trading date.
type Source interface {
	Fetch(ctx context.Context, date time.Time) (string, error)
}

// Pipeline holds the components shared by the seasonal and screener runs.
type Pipeline struct {
	Runner    *runner.Runner
	Universes []config.Universe
	Years     int

	Bhavcopy    Source
	Band        config.Band
	TopN        int
	PredictBand config.Band
	PredictTopN int
	Predictor   *predictor.Service
	Quotes      predictor.LiveQuoter // nil leaves picks at the report close

	Recorder  recorder.Recorder
	OutputDir string // empty disables CSV export
	Logger    *zap.Logger
	Now       func() time.Time
}

// SeasonalResult is the outcome of one seasonal scan.
type SeasonalResult struct {
	RunID   string
	Report  *runner.Report
	CSVPath string
}

// ScreenResult is the outcome of one screener run.
type ScreenResult struct {
	RunID       string
	TradeDate   time.Time
	Picks       []model.Pick
	Predictions []model.Prediction
	CSVPath     string // predictions export
	PicksCSV    string
}

// Seasonal runs the seasonal analysis over all universes, records it and
// exports the ranked table.
func (p *Pipeline) Seasonal(ctx context.Context) (*SeasonalResult, error) {
	now := p.Now()
	start, end := runner.Window(now, p.Years)
	p.Logger.Info("seasonal scan started",
		zap.Time("from", start), zap.Time("to", end), zap.Int("universes", len(p.Universes)))

	rep, err := p.Runner.Run(ctx, p.Universes, start, end)
	if err != nil {
		return nil, fmt.Errorf("run seasonal batch: %w", err)
	}

	run := recorder.NewRun(recorder.KindSeasonal, now)
	run.WindowStart, run.WindowEnd = start, end
	run.Summaries = rep.Ranked
	for _, o := range rep.Outcomes {
		if o.OK() {
			run.Observations[o.Symbol] = o.Observations
		}
	}
	run.Failed = len(rep.Failed())
	if err := p.Recorder.RecordRun(run); err != nil {
		p.Logger.Error("record seasonal run", zap.Error(err))
	}

	res := &SeasonalResult{RunID: run.ID, Report: rep}
	if p.OutputDir != "" && len(rep.Ranked) > 0 {
		path, err := report.SaveCSV(p.OutputDir, report.SeasonalFileName(now), func(w io.Writer) error {
			return report.WriteSeasonalCSV(w, rep.Ranked)
		})
		if err != nil {
			return res, err
		}
		res.CSVPath = path
		p.Logger.Info("results saved", zap.String("path", path))
	}
	return res, nil
}

func (p *Pipeline) loadRows(ctx context.Context) (time.Time, []model.BhavRow, error) {
	date := bhavcopy.PreviousDay(p.Now())
	path, err := p.Bhavcopy.Fetch(ctx, date)
	if err != nil {
		return date, nil, fmt.Errorf("fetch bhavcopy: %w", err)
	}
	rows, err := bhavcopy.ParseFile(path)
	if err != nil {
		return date, nil, fmt.Errorf("load bhavcopy: %w", err)
	}
	return date, rows, nil
}

// Screen downloads the previous session's bhavcopy, applies both price bands
// and predicts the next session for the prediction band.
func (p *Pipeline) Screen(ctx context.Context) (*ScreenResult, error) {
	date, rows, err := p.loadRows(ctx)
	if err != nil {
		return nil, err
	}

	res := &ScreenResult{TradeDate: date}
	res.Picks = p.quotePicks(ctx, bhavcopy.Screen(rows, p.Band, p.TopN))
	if p.Predictor != nil {
		res.Predictions = p.Predictor.PredictAll(ctx, bhavcopy.Screen(rows, p.PredictBand, p.PredictTopN))
	}
	p.Logger.Info("screen complete",
		zap.Int("rows", len(rows)),
		zap.Int("picks", len(res.Picks)),
		zap.Int("predictions", len(res.Predictions)))

	return res, p.finish(recorder.KindScreen, res)
}

// Predict forecasts the next session for the named symbols, or for the
// prediction band when symbols is empty.
func (p *Pipeline) Predict(ctx context.Context, symbols []string) (*ScreenResult, error) {
	if p.Predictor == nil {
		return nil, errors.New("predictor is not configured")
	}
	date, rows, err := p.loadRows(ctx)
	if err != nil {
		return nil, err
	}

	var candidates []model.Pick
	if len(symbols) > 0 {
		candidates = bhavcopy.Lookup(rows, symbols)
		if len(candidates) < len(symbols) {
			p.Logger.Warn("symbols missing from bhavcopy",
				zap.Int("requested", len(symbols)), zap.Int("found", len(candidates)))
		}
	} else {
		candidates = bhavcopy.Screen(rows, p.PredictBand, p.PredictTopN)
	}

	res := &ScreenResult{TradeDate: date, Predictions: p.Predictor.PredictAll(ctx, candidates)}
	return res, p.finish(recorder.KindPredict, res)
}

// quotePicks sets each pick's live price. A failed quote keeps the close.
func (p *Pipeline) quotePicks(ctx context.Context, picks []model.Pick) []model.Pick {
	if p.Quotes == nil {
		return picks
	}
	for i := range picks {
		pick := &picks[i]
		live, err := p.Quotes.LivePrice(ctx, pick.Symbol)
		if err != nil {
			p.Logger.Warn("live price unavailable, using close", zap.String("symbol", pick.Symbol), zap.Error(err))
			pick.Live = pick.Close
			continue
		}
		pick.Live = live
	}
	return picks
}

// finish records a screener result and exports its picks and predictions.
func (p *Pipeline) finish(kind string, res *ScreenResult) error {
	now := p.Now()
	run := recorder.NewRun(kind, now)
	res.RunID = run.ID
	if err := p.Recorder.RecordRun(run); err != nil {
		p.Logger.Error("record run", zap.String("kind", kind), zap.Error(err))
	} else {
		if err := p.Recorder.RecordPicks(run.ID, res.Picks); err != nil {
			p.Logger.Error("record picks", zap.Error(err))
		}
		if err := p.Recorder.RecordPredictions(run.ID, res.Predictions); err != nil {
			p.Logger.Error("record predictions", zap.Error(err))
		}
	}

	if p.OutputDir == "" {
		return nil
	}
	if len(res.Picks) > 0 {
		path, err := report.SaveCSV(p.OutputDir, report.PicksFileName(now), func(w io.Writer) error {
			return report.WritePicksCSV(w, res.Picks)
		})
		if err != nil {
			return err
		}
		res.PicksCSV = path
		p.Logger.Info("picks saved", zap.String("path", path))
	}
	if len(res.Predictions) > 0 {
		path, err := report.SaveCSV(p.OutputDir, report.PredictionsFileName(now), func(w io.Writer) error {
			return report.WritePredictionsCSV(w, res.Predictions)
		})
		if err != nil {
			return err
		}
		res.CSVPath = path
		p.Logger.Info("results saved", zap.String("path", path))
	}
	return nil
}
