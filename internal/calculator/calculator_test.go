package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateSMA(t *testing.T) {
	v, err := CalculateSMA([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, v, 1e-9)

	_, err = CalculateSMA([]float64{1}, 2)
	assert.Error(t, err)
	_, err = CalculateSMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestMeanAndTrailingMean(t *testing.T) {
	m, err := Mean([]float64{10, -5})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, m, 1e-9)

	_, err = Mean(nil)
	assert.ErrorIs(t, err, ErrNoData)

	tm, err := TrailingMean([]float64{1, 2, 3, 4, 5, 6, 7, 8}, 6)
	require.NoError(t, err)
	assert.InDelta(t, 5.5, tm, 1e-9)

	short, err := TrailingMean([]float64{1, 2, 3}, 6)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, short, 1e-9)
}

func TestCalculatePivots(t *testing.T) {
	lv, err := CalculatePivots(110, 90, 100, 95)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, lv.Pivot, 1e-9)
	assert.InDelta(t, 110.0, lv.R1, 1e-9)
	assert.InDelta(t, 90.0, lv.S1, 1e-9)
	assert.InDelta(t, 20.0, lv.Volatility, 1e-9)
	assert.InDelta(t, 5.2631578947, lv.ChangePct, 1e-6)

	_, err = CalculatePivots(110, 90, 0, 95)
	assert.Error(t, err)
	_, err = CalculatePivots(110, 90, 100, 0)
	assert.Error(t, err)
	_, err = CalculatePivots(80, 90, 100, 95)
	assert.Error(t, err)
}

func TestRiskLevels(t *testing.T) {
	sl, tgt := RiskLevels(200)
	assert.Equal(t, "194", sl.String())
	assert.Equal(t, "210", tgt.String())

	sl, tgt = RiskLevels(199.45)
	assert.Equal(t, "193.47", sl.String())
	assert.Equal(t, "209.42", tgt.String())
}
