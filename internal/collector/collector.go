package collector

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"time"

	"StockPulse/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars map[string][]model.OHLCV
	Errs map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	if err, ok := m.Errs[symbol]; ok {
		return nil, fetchErr(m.Name(), symbol, err)
	}
	var out []model.OHLCV
	for _, b := range m.Bars[symbol] {
		if !b.Time.Before(start) && !b.Time.After(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *MockFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	bars, err := m.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return historyFromBars(m.Name(), symbol, bars)
}

// GenerateMockBars builds count consecutive weekday bars starting at from.
func GenerateMockBars(from time.Time, basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, 0, count)
	d := from
	for len(bars) < count {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			p := basePrice * (1 + float64(len(bars)-count/2)*0.001)
			bars = append(bars, model.OHLCV{
				Time:   d,
				Open:   p * 0.999,
				High:   p * 1.005,
				Low:    p * 0.995,
				Close:  p,
				Volume: 1000000,
			})
		}
		d = d.AddDate(0, 0, 1)
	}
	return bars
}

func newHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

func sortBars(bars []model.OHLCV) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
}

// dedupeBars drops bars that share a calendar date with the bar before them.
func dedupeBars(bars []model.OHLCV) []model.OHLCV {
	if len(bars) < 2 {
		return bars
	}
	out := bars[:1]
	for _, b := range bars[1:] {
		prev := out[len(out)-1].Time
		if b.Time.Year() == prev.Year() && b.Time.YearDay() == prev.YearDay() {
			continue
		}
		out = append(out, b)
	}
	return out
}
