package model

import "time"

// Trend labels for a monthly observation. A change of exactly zero is Down.
const (
	TrendUp   = "Up"
	TrendDown = "Down"
)

// MonthlyObservation compares the mean close of a month's first half (day <= 15)
// with its second half (day > 15).
type MonthlyObservation struct {
	Year          int
	Month         time.Month
	AvgFirstHalf  float64
	AvgSecondHalf float64
	ChangePct     float64
	Trend         string
}

// SymbolSummary aggregates all monthly observations for one symbol.
// Percentages are raw values, e.g. 2.34 means +2.34%.
type SymbolSummary struct {
	Symbol           string
	Category         string
	AvgMonthlyChange float64
	WinRate          float64
	RecentTrend6M    float64
	TotalMonths      int
}
