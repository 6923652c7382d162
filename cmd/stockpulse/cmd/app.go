package cmd

import (
	"time"

	"go.uber.org/zap"

	"StockPulse/internal/bhavcopy"
	"StockPulse/internal/collector"
	"StockPulse/internal/pipeline"
	"StockPulse/internal/predictor"
	"StockPulse/internal/recorder"
	"StockPulse/internal/runner"
)

func timeout() time.Duration {
	return time.Duration(cfg.DataSource.TimeoutSecond) * time.Second
}

func newNSEFetcher() *collector.NSEFetcher {
	return collector.NewNSEFetcher(cfg.DataSource.NSEBaseURL, cfg.Proxy, timeout(), cfg.DataSource.NSERateLimit, log)
}

func newFetcher() collector.Fetcher {
	var f collector.Fetcher
	switch cfg.DataSource.Provider {
	case "nse":
		f = newNSEFetcher()
	default:
		f = collector.NewYahooFetcher(cfg.DataSource.YahooBaseURL, cfg.Proxy, timeout(), log)
	}
	log.Info("data source", zap.String("name", f.Name()))
	return f
}

// openRecorder falls back to the no-op recorder when SQLite is not configured
// or cannot be opened.
func openRecorder() recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
		return recorder.NewNoopRecorder()
	}
	return sr
}

func newPredictor(quotes predictor.LiveQuoter) *predictor.Service {
	var m predictor.Model
	if cfg.Predictor.EndpointURL != "" {
		m = predictor.NewClient(cfg.Predictor.EndpointURL, cfg.Predictor.APIKey, log)
	} else {
		log.Info("no predictor endpoint, using pivot levels only")
	}
	return predictor.NewService(m, quotes, log)
}

func newPipeline(rec recorder.Recorder) *pipeline.Pipeline {
	quotes := newNSEFetcher()
	return &pipeline.Pipeline{
		Runner:      runner.New(newFetcher(), cfg.Seasonal.Concurrency, log),
		Universes:   cfg.Seasonal.Universes,
		Years:       cfg.Seasonal.Years,
		Bhavcopy:    bhavcopy.NewDownloader(cfg.Screener.ArchiveURL, cfg.Screener.CacheDir, log),
		Band:        cfg.Screener.Band,
		TopN:        cfg.Screener.TopN,
		PredictBand: cfg.Screener.PredictBand,
		PredictTopN: cfg.Screener.PredictTopN,
		Predictor:   newPredictor(quotes),
		Quotes:      quotes,
		Recorder:    rec,
		OutputDir:   cfg.OutputDir,
		Logger:      log,
		Now:         time.Now,
	}
}
