package collector

import (
	"context"
	"fmt"
	"time"

	"StockPulse/internal/model"
)

// Fetcher defines the interface for fetching end-of-day market data.
// An empty result with a nil error means the source has no data for the window.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error)
	FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error)
	Name() string
}

// FetchError wraps a network, status or decode failure from a data source.
type FetchError struct {
	Source string
	Symbol string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s fetch %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func fetchErr(source, symbol string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Source: source, Symbol: symbol, Err: err}
}

// historyFromBars converts bars to a validated close history. Malformed data
// is reported as a FetchError of the source.
func historyFromBars(source, symbol string, bars []model.OHLCV) ([]model.PricePoint, error) {
	history, err := model.NewHistory(model.HistoryFromBars(bars))
	if err != nil {
		return nil, fetchErr(source, symbol, err)
	}
	return history, nil
}
