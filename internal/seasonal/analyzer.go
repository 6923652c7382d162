// Package seasonal compares each month's first-half and second-half average
// close and ranks symbols by how often the second half comes out ahead.
package seasonal

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"StockPulse/internal/calculator"
	"StockPulse/internal/model"
)

// HalfMonthCutoff is the last day of month counted in the first half.
const HalfMonthCutoff = 15

// RecentWindow is the number of trailing observations in RecentTrend6M.
const RecentWindow = 6

type monthKey struct {
	year  int
	month time.Month
}

func (k monthKey) before(o monthKey) bool {
	if k.year != o.year {
		return k.year < o.year
	}
	return k.month < o.month
}

type halves struct {
	first, second []float64
}

// ComputeMonthlyObservations buckets history by calendar month and emits one
// observation per month that has closes in both halves, in chronological order.
// Months with a zero first-half average are left out; their DivisionByZeroErrors
// are joined into the returned error alongside the remaining observations.
func ComputeMonthlyObservations(history []model.PricePoint) ([]model.MonthlyObservation, error) {
	buckets := make(map[monthKey]*halves)
	for _, p := range history {
		k := monthKey{p.Date.Year(), p.Date.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &halves{}
			buckets[k] = b
		}
		if p.Date.Day() <= HalfMonthCutoff {
			b.first = append(b.first, p.Close)
		} else {
			b.second = append(b.second, p.Close)
		}
	}

	keys := make([]monthKey, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].before(keys[j]) })

	var (
		obs  []model.MonthlyObservation
		errs []error
	)
	for _, k := range keys {
		b := buckets[k]
		if len(b.first) == 0 || len(b.second) == 0 {
			continue
		}
		avgFirst, _ := calculator.Mean(b.first)
		avgSecond, _ := calculator.Mean(b.second)
		if avgFirst == 0 {
			errs = append(errs, &DivisionByZeroError{Year: k.year, Month: k.month})
			continue
		}
		change := (avgSecond - avgFirst) / avgFirst * 100
		trend := model.TrendDown
		if change > 0 {
			trend = model.TrendUp
		}
		obs = append(obs, model.MonthlyObservation{
			Year:          k.year,
			Month:         k.month,
			AvgFirstHalf:  avgFirst,
			AvgSecondHalf: avgSecond,
			ChangePct:     change,
			Trend:         trend,
		})
	}
	return obs, errors.Join(errs...)
}

// Summarize aggregates observations into a SymbolSummary.
func Summarize(observations []model.MonthlyObservation, symbol, category string) (model.SymbolSummary, error) {
	if len(observations) == 0 {
		return model.SymbolSummary{}, &EmptyHistoryError{Symbol: symbol}
	}
	changes := make([]float64, len(observations))
	wins := 0
	for i, o := range observations {
		changes[i] = o.ChangePct
		if o.ChangePct > 0 {
			wins++
		}
	}
	avg, _ := calculator.Mean(changes)
	recent, _ := calculator.TrailingMean(changes, RecentWindow)
	return model.SymbolSummary{
		Symbol:           symbol,
		Category:         category,
		AvgMonthlyChange: avg,
		WinRate:          float64(wins) / float64(len(observations)) * 100,
		RecentTrend6M:    recent,
		TotalMonths:      len(observations),
	}, nil
}

// RankSymbols returns a copy sorted by WinRate descending. Equal win rates keep input order.
func RankSymbols(summaries []model.SymbolSummary) []model.SymbolSummary {
	ranked := make([]model.SymbolSummary, len(summaries))
	copy(ranked, summaries)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].WinRate > ranked[j].WinRate })
	return ranked
}

// Analyze validates a symbol's history and runs the full pipeline. Month-level
// errors are returned with a non-nil summary so the caller can log and continue.
func Analyze(symbol, category string, history []model.PricePoint) (*model.SymbolSummary, []model.MonthlyObservation, error) {
	if len(history) == 0 {
		return nil, nil, &EmptyHistoryError{Symbol: symbol}
	}
	if err := model.ValidateHistory(history); err != nil {
		return nil, nil, fmt.Errorf("validate %s: %w", symbol, err)
	}
	obs, monthErr := ComputeMonthlyObservations(history)
	summary, err := Summarize(obs, symbol, category)
	if err != nil {
		return nil, nil, errors.Join(err, monthErr)
	}
	return &summary, obs, monthErr
}
