package predictor

import (
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/model"
)

// TechnicalContext renders the day's OHLC data and next-session pivots as text.
func TechnicalContext(row model.BhavRow, lv model.PivotLevels, asOf time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Stock: %s\n", row.Symbol))
	b.WriteString(fmt.Sprintf("Data for Date: %s\n", asOf.Format("2006-01-02")))
	b.WriteString("--------------------------------\n")
	b.WriteString("OHLC Data:\n")
	b.WriteString(fmt.Sprintf("Open: %.2f\n", row.Open))
	b.WriteString(fmt.Sprintf("High: %.2f\n", row.High))
	b.WriteString(fmt.Sprintf("Low: %.2f\n", row.Low))
	b.WriteString(fmt.Sprintf("Close: %.2f\n", row.Close))
	b.WriteString(fmt.Sprintf("Previous Close: %.2f (%+.2f%%)\n", row.PrevClose, lv.ChangePct))
	b.WriteString(fmt.Sprintf("Volume: %.0f\n", row.Volume))
	b.WriteString("--------------------------------\n")
	b.WriteString("Technical Analysis (Pivot Points for Tomorrow):\n")
	b.WriteString(fmt.Sprintf("Pivot Point: %.2f\n", lv.Pivot))
	b.WriteString(fmt.Sprintf("Resistance (R1): %.2f\n", lv.R1))
	b.WriteString(fmt.Sprintf("Support (S1): %.2f\n", lv.S1))
	b.WriteString(fmt.Sprintf("Volatility: %.2f%%", lv.Volatility))
	return b.String()
}

// BuildPrompt wraps the technical context in the instruction sent to the model.
func BuildPrompt(technical string) string {
	return `You are a stock market expert. Based on the technical data below, predict the target price for tomorrow.

` + technical + `

Task:
1. Analyze the trend (Bullish/Bearish).
2. Predict tomorrow's closing price.
3. Give a confidence score (1-10).

Output Format (JSON only):
{
    "sentiment": "Bullish/Bearish",
    "predicted_price": <number>,
    "confidence": <number>,
    "reason": "<short explanation>"
}
`
}
