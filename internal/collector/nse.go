package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"StockPulse/internal/model"
)

const (
	nseDateLayout = "02-01-2006"
	// nseMaxWindow is the longest range the historical endpoint serves per request.
	nseMaxWindow = 90 * 24 * time.Hour
	nseUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// NSEFetcher implements Fetcher against the NSE India website JSON API.
// The API requires session cookies obtained by visiting the homepage first.
type NSEFetcher struct {
	BaseURL string
	Client  *http.Client
	Logger  *zap.Logger

	limiter *rate.Limiter
	warmMu  sync.Mutex
	warmed  bool
}

// NewNSEFetcher creates a fetcher with a cookie jar and a request rate limit.
func NewNSEFetcher(baseURL, proxyURL string, timeout time.Duration, requestsPerSecond int, logger *zap.Logger) *NSEFetcher {
	client := newHTTPClient(proxyURL, timeout)
	jar, _ := cookiejar.New(nil)
	client.Jar = jar
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &NSEFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Logger:  logger.Named("nse"),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

func (f *NSEFetcher) Name() string { return "nse" }

// nseSymbol strips exchange suffixes used by other providers.
func nseSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(strings.TrimSuffix(s, ".NS"), ".NSE")
}

func (f *NSEFetcher) newRequest(ctx context.Context, endpoint, referer string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", nseUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	return req, nil
}

// warmUp visits the homepage once so the jar holds the session cookies.
func (f *NSEFetcher) warmUp(ctx context.Context) error {
	f.warmMu.Lock()
	defer f.warmMu.Unlock()
	if f.warmed {
		return nil
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := f.newRequest(ctx, f.BaseURL, "")
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("session warm-up: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	f.warmed = true
	return nil
}

func (f *NSEFetcher) getJSON(ctx context.Context, endpoint, referer string, out any) error {
	if err := f.warmUp(ctx); err != nil {
		return err
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := f.newRequest(ctx, endpoint, referer)
	if err != nil {
		return err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			// Session cookies expired; refresh on the next call.
			f.warmMu.Lock()
			f.warmed = false
			f.warmMu.Unlock()
		}
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// nseHistoryRow is one record of the historical/cm/equity response.
type nseHistoryRow struct {
	Timestamp string  `json:"CH_TIMESTAMP"`
	Series    string  `json:"CH_SERIES"`
	Open      float64 `json:"CH_OPENING_PRICE"`
	High      float64 `json:"CH_TRADE_HIGH_PRICE"`
	Low       float64 `json:"CH_TRADE_LOW_PRICE"`
	Close     float64 `json:"CH_CLOSING_PRICE"`
	Volume    float64 `json:"CH_TOT_TRADED_QTY"`
}

func (f *NSEFetcher) fetchWindow(ctx context.Context, symbol string, from, to time.Time) ([]model.OHLCV, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("series", `["EQ"]`)
	q.Set("from", from.Format(nseDateLayout))
	q.Set("to", to.Format(nseDateLayout))
	endpoint := f.BaseURL + "/api/historical/cm/equity?" + q.Encode()
	referer := f.BaseURL + "/get-quotes/equity?symbol=" + url.QueryEscape(symbol)

	var payload struct {
		Data []nseHistoryRow `json:"data"`
	}
	if err := f.getJSON(ctx, endpoint, referer, &payload); err != nil {
		return nil, err
	}

	bars := make([]model.OHLCV, 0, len(payload.Data))
	for _, r := range payload.Data {
		if r.Series != "" && r.Series != model.SeriesEquity {
			continue
		}
		d, err := time.Parse("2006-01-02", r.Timestamp)
		if err != nil {
			f.Logger.Warn("skip row with bad date", zap.String("symbol", symbol), zap.String("date", r.Timestamp))
			continue
		}
		if r.Close <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{Time: d, Open: r.Open, High: r.High, Low: r.Low, Close: r.Close, Volume: r.Volume})
	}
	return bars, nil
}

// FetchDailyBars walks [start, end] in windows the API accepts and merges the result.
func (f *NSEFetcher) FetchDailyBars(ctx context.Context, symbol string, start, end time.Time) ([]model.OHLCV, error) {
	sym := nseSymbol(symbol)
	var all []model.OHLCV
	for from := start; !from.After(end); {
		to := from.Add(nseMaxWindow)
		if to.After(end) {
			to = end
		}
		bars, err := f.fetchWindow(ctx, sym, from, to)
		if err != nil {
			return nil, fetchErr(f.Name(), symbol, err)
		}
		all = append(all, bars...)
		from = to.AddDate(0, 0, 1)
	}
	sortBars(all)
	all = dedupeBars(all)
	f.Logger.Debug("fetched bars", zap.String("symbol", symbol), zap.Int("count", len(all)))
	return all, nil
}

// FetchHistory returns the daily closes between start and end.
func (f *NSEFetcher) FetchHistory(ctx context.Context, symbol string, start, end time.Time) ([]model.PricePoint, error) {
	bars, err := f.FetchDailyBars(ctx, symbol, start, end)
	if err != nil {
		return nil, err
	}
	return historyFromBars(f.Name(), symbol, bars)
}

// LivePrice returns the last traded price from the quote endpoint.
func (f *NSEFetcher) LivePrice(ctx context.Context, symbol string) (float64, error) {
	sym := nseSymbol(symbol)
	endpoint := f.BaseURL + "/api/quote-equity?symbol=" + url.QueryEscape(sym)
	var payload struct {
		PriceInfo struct {
			LastPrice float64 `json:"lastPrice"`
		} `json:"priceInfo"`
	}
	if err := f.getJSON(ctx, endpoint, "", &payload); err != nil {
		return 0, fetchErr(f.Name(), symbol, err)
	}
	if payload.PriceInfo.LastPrice <= 0 {
		return 0, fetchErr(f.Name(), symbol, fmt.Errorf("no last price"))
	}
	return payload.PriceInfo.LastPrice, nil
}
