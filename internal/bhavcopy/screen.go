// Package bhavcopy loads the NSE end-of-day report and screens it by price.
package bhavcopy

import (
	"sort"
	"strings"

	"StockPulse/internal/calculator"
	"StockPulse/internal/config"
	"StockPulse/internal/model"
)

// Filter keeps equity-series rows whose close lies within band, ordered by
// close descending. Rows with equal closes keep file order.
func Filter(rows []model.BhavRow, band config.Band) []model.BhavRow {
	var out []model.BhavRow
	for _, r := range rows {
		if r.Series != model.SeriesEquity {
			continue
		}
		if r.Close >= band.Min && r.Close <= band.Max {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Close > out[j].Close })
	return out
}

// Screen returns the topN filtered rows with stop-loss and target levels.
func Screen(rows []model.BhavRow, band config.Band, topN int) []model.Pick {
	filtered := Filter(rows, band)
	if topN > 0 && len(filtered) > topN {
		filtered = filtered[:topN]
	}
	picks := make([]model.Pick, len(filtered))
	for i, r := range filtered {
		sl, tgt := calculator.RiskLevels(r.Close)
		picks[i] = model.Pick{BhavRow: r, StopLoss: sl, Target: tgt, Live: r.Close}
	}
	return picks
}

// Lookup returns equity rows for the requested symbols, in request order, with
// their risk levels. Symbols missing from the report are skipped.
func Lookup(rows []model.BhavRow, symbols []string) []model.Pick {
	bySymbol := make(map[string]model.BhavRow, len(rows))
	for _, r := range rows {
		if r.Series == model.SeriesEquity {
			bySymbol[strings.ToUpper(r.Symbol)] = r
		}
	}
	var picks []model.Pick
	for _, s := range symbols {
		r, ok := bySymbol[strings.ToUpper(strings.TrimSuffix(s, ".NS"))]
		if !ok {
			continue
		}
		sl, tgt := calculator.RiskLevels(r.Close)
		picks = append(picks, model.Pick{BhavRow: r, StopLoss: sl, Target: tgt, Live: r.Close})
	}
	return picks
}
