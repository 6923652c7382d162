package model

import "github.com/shopspring/decimal"

// SeriesEquity is the bhavcopy series code for regular equity shares.
const SeriesEquity = "EQ"

// BhavRow is one line of the exchange end-of-day report.
type BhavRow struct {
	Symbol    string
	Series    string
	PrevClose float64
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
}

// Pick is a screened bhavcopy row with its risk levels. Live is the latest
// traded price, or the report close when no quote was available.
type Pick struct {
	BhavRow
	StopLoss decimal.Decimal
	Target   decimal.Decimal
	Live     float64
}

// Change returns the move from the report close to Live, absolute and in percent.
func (p Pick) Change() (float64, float64) {
	if p.Close <= 0 {
		return 0, 0
	}
	d := p.Live - p.Close
	return d, d / p.Close * 100
}

// PivotLevels holds the classic floor-trader pivot for the next session.
type PivotLevels struct {
	Pivot      float64
	R1         float64
	S1         float64
	Volatility float64 // (high-low)/close, percent
	ChangePct  float64 // close vs previous close, percent
}

// Prediction source values.
const (
	SourceAI    = "ai"
	SourcePivot = "pivot"
)

// Prediction is the next-session outlook for a screened symbol.
type Prediction struct {
	Symbol     string
	Close      float64
	Live       float64
	Target     float64
	StopLoss   float64
	Sentiment  string
	Confidence float64
	Reasoning  string
	Source     string
}
