package calculator

import (
	"errors"

	"StockPulse/internal/model"
)

// PercentChange returns (to-from)/from as a percentage.
func PercentChange(from, to float64) (float64, error) {
	if from == 0 {
		return 0, errors.New("base value is zero")
	}
	return (to - from) / from * 100, nil
}

// CalculatePivots computes the standard pivot with first resistance and support
// for the next session, plus the day's range volatility and change.
func CalculatePivots(high, low, close, prevClose float64) (model.PivotLevels, error) {
	if close <= 0 {
		return model.PivotLevels{}, errors.New("close must be positive")
	}
	if prevClose <= 0 {
		return model.PivotLevels{}, errors.New("previous close must be positive")
	}
	if high < low {
		return model.PivotLevels{}, errors.New("high must be >= low")
	}
	p := (high + low + close) / 3
	change, _ := PercentChange(prevClose, close)
	return model.PivotLevels{
		Pivot:      p,
		R1:         2*p - low,
		S1:         2*p - high,
		Volatility: (high - low) / close * 100,
		ChangePct:  change,
	}, nil
}
