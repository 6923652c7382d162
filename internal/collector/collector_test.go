package collector

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockPulse/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYahooFetcher_FetchHistory(t *testing.T) {
	var gotPath, gotPeriod1 string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPeriod1 = r.URL.Query().Get("period1")
		// 2024-01-05 and 2024-01-08 09:15 IST, plus a null holiday bar.
		fmt.Fprint(w, `{"chart":{"result":[{"meta":{"gmtoffset":19800},
			"timestamp":[1704426300,1704512700,1704685500],
			"indicators":{"quote":[{"open":[99,null,101],"high":[101,null,103],"low":[98,null,100],
			"close":[100,null,102],"volume":[1000,null,1200]}]}}],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "", 5*time.Second, zap.NewNop())
	start, end := date(2024, 1, 1), date(2024, 1, 31)
	h, err := f.FetchHistory(context.Background(), "SBIN.NS", start, end)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/SBIN.NS", gotPath)
	assert.Equal(t, fmt.Sprint(start.Unix()), gotPeriod1)
	require.Len(t, h, 2)
	assert.Equal(t, date(2024, 1, 5), h[0].Date)
	assert.Equal(t, 100.0, h[0].Close)
	assert.Equal(t, date(2024, 1, 8), h[1].Date)
	assert.NoError(t, model.ValidateHistory(h))
}

func TestYahooFetcher_SymbolMap(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"chart":{"result":[],"error":null}}`)
	}))
	defer srv.Close()

	f := NewYahooFetcher(srv.URL, "", 5*time.Second, zap.NewNop())
	h, err := f.FetchHistory(context.Background(), "NIFTY50", date(2024, 1, 1), date(2024, 2, 1))
	require.NoError(t, err)
	assert.Empty(t, h)
	assert.Equal(t, "/v8/finance/chart/%5ENSEI", gotPath)
}

func TestYahooFetcher_Errors(t *testing.T) {
	t.Run("server error is a FetchError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := NewYahooFetcher(srv.URL, "", 5*time.Second, zap.NewNop())
		_, err := f.FetchHistory(context.Background(), "X", date(2024, 1, 1), date(2024, 2, 1))
		var fe *FetchError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "yahoo", fe.Source)
		assert.Equal(t, "X", fe.Symbol)
	})

	t.Run("unknown symbol is empty", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
		}))
		defer srv.Close()

		f := NewYahooFetcher(srv.URL, "", 5*time.Second, zap.NewNop())
		h, err := f.FetchHistory(context.Background(), "NOPE", date(2024, 1, 1), date(2024, 2, 1))
		require.NoError(t, err)
		assert.Empty(t, h)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"chart":`)
		}))
		defer srv.Close()

		f := NewYahooFetcher(srv.URL, "", 5*time.Second, zap.NewNop())
		_, err := f.FetchHistory(context.Background(), "X", date(2024, 1, 1), date(2024, 2, 1))
		var fe *FetchError
		assert.True(t, errors.As(err, &fe))
	})
}

func newNSEServer(t *testing.T, windows *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "session", Path: "/"})
	})
	mux.HandleFunc("/api/historical/cm/equity", func(w http.ResponseWriter, r *http.Request) {
		if _, err := r.Cookie("nsit"); err != nil {
			http.Error(w, "no session", http.StatusUnauthorized)
			return
		}
		atomic.AddInt32(windows, 1)
		q := r.URL.Query()
		if q.Get("symbol") != "SBIN" {
			http.Error(w, "bad symbol "+q.Get("symbol"), http.StatusBadRequest)
			return
		}
		from, _ := time.Parse(nseDateLayout, q.Get("from"))
		var rows []string
		for d := from; d.Before(from.AddDate(0, 0, 3)); d = d.AddDate(0, 0, 1) {
			rows = append(rows, fmt.Sprintf(`{"CH_TIMESTAMP":"%s","CH_SERIES":"EQ","CH_OPENING_PRICE":1,"CH_TRADE_HIGH_PRICE":2,"CH_TRADE_LOW_PRICE":0.5,"CH_CLOSING_PRICE":%d,"CH_TOT_TRADED_QTY":10}`,
				d.Format("2006-01-02"), d.Day()))
		}
		rows = append(rows, `{"CH_TIMESTAMP":"2024-01-02","CH_SERIES":"BE","CH_CLOSING_PRICE":5}`)
		fmt.Fprintf(w, `{"data":[%s]}`, strings.Join(rows, ","))
	})
	mux.HandleFunc("/api/quote-equity", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("symbol") == "SBIN" {
			fmt.Fprint(w, `{"priceInfo":{"lastPrice":812.35}}`)
			return
		}
		fmt.Fprint(w, `{"priceInfo":{}}`)
	})
	return httptest.NewServer(mux)
}

func TestNSEFetcher_FetchHistory(t *testing.T) {
	var windows int32
	srv := newNSEServer(t, &windows)
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, "", 5*time.Second, 1000, zap.NewNop())
	// 200 days spans three 90-day windows.
	start := date(2024, 1, 1)
	h, err := f.FetchHistory(context.Background(), "sbin.ns", start, start.AddDate(0, 0, 200))
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&windows))
	require.Len(t, h, 9)
	assert.Equal(t, start, h[0].Date)
	assert.NoError(t, model.ValidateHistory(h))
}

func TestNSEFetcher_LivePrice(t *testing.T) {
	var windows int32
	srv := newNSEServer(t, &windows)
	defer srv.Close()

	f := NewNSEFetcher(srv.URL, "", 5*time.Second, 1000, zap.NewNop())
	p, err := f.LivePrice(context.Background(), "SBIN")
	require.NoError(t, err)
	assert.Equal(t, 812.35, p)

	_, err = f.LivePrice(context.Background(), "OTHER")
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))
}

func TestNSESymbol(t *testing.T) {
	assert.Equal(t, "SBIN", nseSymbol(" sbin.ns "))
	assert.Equal(t, "M&M", nseSymbol("M&M"))
}

func TestMockFetcher(t *testing.T) {
	bars := GenerateMockBars(date(2024, 1, 1), 100, 30)
	require.Len(t, bars, 30)
	for _, b := range bars {
		assert.NotEqual(t, time.Saturday, b.Time.Weekday())
		assert.NotEqual(t, time.Sunday, b.Time.Weekday())
	}

	m := &MockFetcher{
		Bars: map[string][]model.OHLCV{"A": bars},
		Errs: map[string]error{"B": errors.New("down")},
	}
	h, err := m.FetchHistory(context.Background(), "A", date(2024, 1, 1), date(2024, 1, 10))
	require.NoError(t, err)
	assert.Len(t, h, 8)

	_, err = m.FetchHistory(context.Background(), "B", date(2024, 1, 1), date(2024, 1, 10))
	var fe *FetchError
	assert.True(t, errors.As(err, &fe))

	h, err = m.FetchHistory(context.Background(), "C", date(2024, 1, 1), date(2024, 1, 10))
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestMockFetcher_MalformedHistory(t *testing.T) {
	m := &MockFetcher{Bars: map[string][]model.OHLCV{
		"DUP": {
			{Time: date(2024, 1, 5), Close: 10},
			{Time: date(2024, 1, 5), Close: 11},
		},
		"NEG": {
			{Time: date(2024, 1, 5), Close: 10},
			{Time: date(2024, 1, 8), Close: -1},
		},
	}}

	_, err := m.FetchHistory(context.Background(), "DUP", date(2024, 1, 1), date(2024, 1, 31))
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "mock", fe.Source)
	assert.ErrorIs(t, err, model.ErrNotChronological)

	_, err = m.FetchHistory(context.Background(), "NEG", date(2024, 1, 1), date(2024, 1, 31))
	assert.ErrorIs(t, err, model.ErrNonPositiveClose)
}
