package calculator

import (
	"errors"
)

var ErrNoData = errors.New("no data")

// CalculateSMA computes the simple moving average of the last period values.
func CalculateSMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// Mean returns the arithmetic mean of all values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	return CalculateSMA(values, len(values))
}

// TrailingMean averages up to the last n values, using fewer when the series is shorter.
func TrailingMean(values []float64, n int) (float64, error) {
	if len(values) == 0 {
		return 0, ErrNoData
	}
	if n > len(values) {
		n = len(values)
	}
	return CalculateSMA(values, n)
}
