package notifier

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"StockOracle/internal/model"
	"StockOracle/internal/recorder"
)

// maxAdviceRunes keeps the report under Telegram's 4096 character limit.
const maxAdviceRunes = 1500

// HelpText lists the chat commands.
const HelpText = `<b>StockOracle commands</b>
/analyze SYMBOL [horizon] - run indicators, forecast and signal
/history SYMBOL - recent runs for a symbol
/watchlist - analyse every configured symbol
/help - this message`

func price(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func optional(v null.Float, places int32) string {
	if !v.Valid {
		return "n/a"
	}
	return decimal.NewFromFloat(v.Float64).StringFixed(places)
}

// FormatReport formats one analysis report into a Telegram HTML message.
func FormatReport(r *model.Report) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(r.Symbol), r.LastBar.Time.Format("2006-01-02")))

	// Price and indicators
	b.WriteString(fmt.Sprintf("Close: %s\n", price(r.LastBar.Close)))
	windows := make([]int, 0, len(r.Indicators.MA))
	for w := range r.Indicators.MA {
		windows = append(windows, w)
	}
	sort.Ints(windows)
	for _, w := range windows {
		b.WriteString(fmt.Sprintf("MA%d: %s\n", w, optional(r.Indicators.MA[w], 2)))
	}
	b.WriteString(fmt.Sprintf("RSI: %s\n", optional(r.Indicators.RSI, 1)))
	b.WriteString(fmt.Sprintf("MACD: %s | Signal: %s\n",
		optional(r.Indicators.MACD, 3), optional(r.Indicators.Signal, 3)))
	if r.Range.High52w > 0 {
		b.WriteString(fmt.Sprintf("52w: %s - %s (%.0f%%)\n",
			price(r.Range.Low52w), price(r.Range.High52w), r.Range.Position52w*100))
	}

	// Forecast
	if len(r.Forecast) > 0 {
		b.WriteString(fmt.Sprintf("\n🔮 <b>Forecast (%d days):</b>\n", len(r.Forecast)))
		for _, p := range r.Forecast {
			b.WriteString(fmt.Sprintf("  %s  %s\n", p.Date.Format("2006-01-02"), price(p.PredictedClose)))
		}
	}
	if r.Backtest != nil && len(r.Backtest.Points) > 0 {
		b.WriteString(fmt.Sprintf("Backtest: RMSE %s | MAE %s | MAPE %.2f%% (%d windows)\n",
			price(r.Backtest.RMSE), price(r.Backtest.MAE), r.Backtest.MAPE, len(r.Backtest.Points)))
	}

	// Signal
	if r.Signal != nil {
		b.WriteString("\n📈 <b>Factors:</b>\n")
		for _, f := range r.Signal.Factors {
			if !f.Available {
				b.WriteString(fmt.Sprintf("  %s: n/a\n", f.Name))
				continue
			}
			b.WriteString(fmt.Sprintf("  %s(%s): %+.0f (×%.2f) = %+.3f\n",
				f.Name, html.EscapeString(f.Commentary), f.RawScore, f.Weight, f.Weighted))
		}
		b.WriteString("  ─────────────────\n")
		b.WriteString(fmt.Sprintf("  Total: %+.3f\n\n", r.Signal.TotalScore))
		b.WriteString(fmt.Sprintf("💰 <b>Signal:</b> %s\n", r.Signal.Tier.Label))
		if r.Signal.WarningMsg != "" {
			b.WriteString(fmt.Sprintf("\n%s\n", html.EscapeString(r.Signal.WarningMsg)))
		}
	}

	if r.Advice != "" {
		b.WriteString("\n🧠 <b>Advice:</b>\n")
		b.WriteString(html.EscapeString(truncate(r.Advice, maxAdviceRunes)))
		b.WriteString("\n")
	}

	for _, w := range r.Warnings {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(w)))
	}

	return b.String()
}

// FormatHistory formats recent runs of one symbol.
func FormatHistory(symbol string, runs []recorder.RunSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 <b>History</b> | %s\n\n", html.EscapeString(symbol)))
	if len(runs) == 0 {
		b.WriteString("No runs recorded yet.")
		return b.String()
	}
	for _, run := range runs {
		ts := run.GeneratedAt.Format("2006-01-02 15:04")
		if run.Status != recorder.StatusOK {
			b.WriteString(fmt.Sprintf("%s ❌ %s\n", ts, html.EscapeString(run.Error)))
			continue
		}
		b.WriteString(fmt.Sprintf("%s close %s → %s | RSI %s | %s (%s)\n",
			ts, optional(run.LastClose, 2), optional(run.NextClose, 2),
			optional(run.RSI, 1), run.Decision, optional(run.TotalScore, 3)))
	}
	return b.String()
}

// FormatError formats a failed analysis.
func FormatError(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: %s", html.EscapeString(symbol), html.EscapeString(err.Error()))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
