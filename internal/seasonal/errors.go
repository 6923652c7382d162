package seasonal

import (
	"fmt"
	"time"
)

// EmptyHistoryError means no monthly observation could be produced for a symbol.
type EmptyHistoryError struct {
	Symbol string
}

func (e *EmptyHistoryError) Error() string {
	if e.Symbol == "" {
		return "no usable history"
	}
	return fmt.Sprintf("no usable history for %s", e.Symbol)
}

// DivisionByZeroError marks a month whose first-half average is zero.
type DivisionByZeroError struct {
	Year  int
	Month time.Month
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("%d-%02d: first-half average is zero", e.Year, int(e.Month))
}
