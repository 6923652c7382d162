package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockPulse/internal/model"
)

func newTestNotifier(url string) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", zap.NewNop())
	n.APIBase = url
	n.backoff = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv.URL).Send(context.Background(), "<b>hi</b>"))
	assert.Equal(t, "42", got["chat_id"])
	assert.Equal(t, "HTML", got["parse_mode"])
	assert.Equal(t, "<b>hi</b>", got["text"])
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "busy", http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	require.NoError(t, n.SendWithRetry(context.Background(), "x", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	atomic.StoreInt32(&calls, -10)
	err := n.SendWithRetry(context.Background(), "x", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 2 retries exhausted")
}

func TestPollAndDispatch(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			assert.Equal(t, "7", r.URL.Query().Get("offset"))
			fmt.Fprint(w, `{"ok":true,"result":[{"update_id":7,"message":{"text":" /help "}},{"update_id":8}]}`)
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var p map[string]string
			_ = json.NewDecoder(r.Body).Decode(&p)
			sent = append(sent, p["text"])
			fmt.Fprint(w, `{"ok":true}`)
		}
	}))
	defer srv.Close()

	n := newTestNotifier(srv.URL)
	ctx := context.Background()
	updates, err := n.poll(ctx, srv.Client(), 7, 0)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	var commands []string
	next := n.dispatch(ctx, updates, 7, func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		return "reply:" + cmd
	})
	assert.Equal(t, 9, next)
	assert.Equal(t, []string{"/help"}, commands)
	assert.Equal(t, []string{"reply:/help"}, sent)
}

func TestFormatters(t *testing.T) {
	at := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	ranked := []model.SymbolSummary{
		{Symbol: "SBIN.NS", Category: "PSU", AvgMonthlyChange: 2.5, WinRate: 75, RecentTrend6M: 1, TotalMonths: 12},
		{Symbol: "M&M.NS", Category: "Growth", AvgMonthlyChange: 1, WinRate: 60, TotalMonths: 10},
	}
	msg := FormatSeasonalReport(ranked, 5, at)
	assert.Contains(t, msg, "2025-12-01")
	assert.Contains(t, msg, "1. <b>SBIN.NS</b> (PSU)")
	assert.Contains(t, msg, "Win rate: 75.0% of 12 months")
	assert.Contains(t, msg, "M&amp;M.NS")
	assert.Contains(t, FormatSeasonalReport(nil, 5, at), "No symbols")

	picks := []model.Pick{{BhavRow: model.BhavRow{Symbol: "ABC", Close: 200}, StopLoss: decimal.NewFromInt(194), Target: decimal.NewFromInt(210), Live: 190}}
	msg = FormatScreenerPicks(picks, at)
	assert.Contains(t, msg, "<b>ABC</b> close ₹200.00 | Live ₹190.00 (-5.00%)")
	assert.Contains(t, msg, "SL ₹194.00 | Target ₹210.00")

	msg = FormatPredictions([]model.Prediction{{Symbol: "ABC", Close: 100, Live: 101, Target: 105, StopLoss: 97, Sentiment: "Bullish", Confidence: 8, Reasoning: "a < b", Source: model.SourceAI}})
	assert.Contains(t, msg, "(8/10)")
	assert.Contains(t, msg, "(+1.00%)")
	assert.Contains(t, msg, "a &lt; b")
}
