package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockPulse/internal/model"
	"StockPulse/internal/report"
)

// FormatSeasonalReport formats the best ranked symbols into a Telegram message.
func FormatSeasonalReport(ranked []model.SymbolSummary, n int, at time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>StockPulse Seasonal Pattern</b> | %s\n", at.Format("2006-01-02")))
	b.WriteString("<i>First half vs second half of the month</i>\n\n")

	picks := report.TopPicks(ranked, n)
	if len(picks) == 0 {
		b.WriteString("No symbols had enough history.")
		return b.String()
	}
	for i, s := range picks {
		b.WriteString(fmt.Sprintf("%d. <b>%s</b> (%s)\n", i+1, html.EscapeString(s.Symbol), html.EscapeString(s.Category)))
		b.WriteString(fmt.Sprintf("   Win rate: %s of %d months\n", report.FormatRate(s.WinRate), s.TotalMonths))
		b.WriteString(fmt.Sprintf("   Avg change: %s | 6M: %s\n", report.FormatPct(s.AvgMonthlyChange), report.FormatPct(s.RecentTrend6M)))
	}
	return b.String()
}

// FormatScreenerPicks formats the price-band screener result.
func FormatScreenerPicks(picks []model.Pick, tradeDate time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🔎 <b>Bhavcopy Screener</b> | %s\n\n", tradeDate.Format("2006-01-02")))
	if len(picks) == 0 {
		b.WriteString("No equity closed inside the price band.")
		return b.String()
	}
	for _, p := range picks {
		_, pct := p.Change()
		b.WriteString(fmt.Sprintf("<b>%s</b> close ₹%.2f | Live ₹%.2f (%s)\n", html.EscapeString(p.Symbol), p.Close, p.Live, report.FormatPct(pct)))
		b.WriteString(fmt.Sprintf("   SL ₹%s | Target ₹%s\n", p.StopLoss.StringFixed(2), p.Target.StringFixed(2)))
	}
	return b.String()
}

// FormatPredictions formats next-session predictions.
func FormatPredictions(preds []model.Prediction) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Tomorrow's Predictions</b>\n\n")
	if len(preds) == 0 {
		b.WriteString("Nothing to predict today.")
		return b.String()
	}
	for _, p := range preds {
		change := 0.0
		if p.Close > 0 {
			change = (p.Live - p.Close) / p.Close * 100
		}
		b.WriteString(fmt.Sprintf("<b>%s</b> %s", html.EscapeString(p.Symbol), html.EscapeString(p.Sentiment)))
		if p.Source == model.SourceAI {
			b.WriteString(fmt.Sprintf(" (%.0f/10)", p.Confidence))
		}
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("   Close ₹%.2f | Live ₹%.2f (%s)\n", p.Close, p.Live, report.FormatPct(change)))
		b.WriteString(fmt.Sprintf("   Target ₹%.2f | SL ₹%.2f\n", p.Target, p.StopLoss))
		b.WriteString(fmt.Sprintf("   <i>%s</i>\n", html.EscapeString(p.Reasoning)))
	}
	return b.String()
}

// FormatHelp lists the supported bot commands.
func FormatHelp() string {
	return "📋 <b>Commands</b>\n\n" +
		"/seasonal - run the seasonal pattern scan\n" +
		"/screen - run the bhavcopy screener and predictions\n" +
		"/help - show this message"
}
