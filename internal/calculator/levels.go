package calculator

import "github.com/shopspring/decimal"

var (
	stopLossFactor = decimal.RequireFromString("0.97")
	targetFactor   = decimal.RequireFromString("1.05")
)

// RiskLevels returns a 3% stop-loss and a 5% target for the close, rounded to paise.
func RiskLevels(close float64) (stopLoss, target decimal.Decimal) {
	c := decimal.NewFromFloat(close)
	return c.Mul(stopLossFactor).Round(2), c.Mul(targetFactor).Round(2)
}
