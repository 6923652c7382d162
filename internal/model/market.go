package model

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PricePoint is one trading day's close for a symbol.
type PricePoint struct {
	Date  time.Time
	Close float64
}

var (
	ErrNonPositiveClose = errors.New("close price must be positive and finite")
	ErrZeroDate         = errors.New("date must be set")
	ErrNotChronological = errors.New("history must be in strictly increasing date order")
)

// NewPricePoint validates and builds a PricePoint.
func NewPricePoint(date time.Time, close float64) (PricePoint, error) {
	if date.IsZero() {
		return PricePoint{}, ErrZeroDate
	}
	if !(close > 0) || math.IsInf(close, 1) {
		return PricePoint{}, fmt.Errorf("%s: %w", date.Format("2006-01-02"), ErrNonPositiveClose)
	}
	return PricePoint{Date: date, Close: close}, nil
}

// ValidateHistory checks that every point is well formed and that dates strictly increase.
func ValidateHistory(history []PricePoint) error {
	for i, p := range history {
		if _, err := NewPricePoint(p.Date, p.Close); err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		if i > 0 && !p.Date.After(history[i-1].Date) {
			return fmt.Errorf("point %d (%s): %w", i, p.Date.Format("2006-01-02"), ErrNotChronological)
		}
	}
	return nil
}

// NewHistory returns a validated copy of points.
func NewHistory(points []PricePoint) ([]PricePoint, error) {
	if err := ValidateHistory(points); err != nil {
		return nil, err
	}
	return append([]PricePoint(nil), points...), nil
}

// HistoryFromBars converts daily bars into a close-only history.
func HistoryFromBars(bars []OHLCV) []PricePoint {
	history := make([]PricePoint, 0, len(bars))
	for _, b := range bars {
		history = append(history, PricePoint{Date: b.Time, Close: b.Close})
	}
	return history
}
