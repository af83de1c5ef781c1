package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/stats"
)

func money(v float64) string {
	return humanize.CommafWithDigits(v, 2)
}

// FormatTradeOpened formats a position-open push notification.
func FormatTradeOpened(pos model.Position) string {
	var b strings.Builder
	emoji := "🟢"
	if pos.Side == model.SideShort {
		emoji = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>Position opened</b> | %s %s\n\n", emoji, pos.Symbol, pos.Side))
	b.WriteString(fmt.Sprintf("Entry: %s\n", money(pos.EntryPrice)))
	b.WriteString(fmt.Sprintf("Stop: %s\n", money(pos.StopPrice)))
	b.WriteString(fmt.Sprintf("Target: %s\n", money(pos.TakeProfitPrice)))
	b.WriteString(fmt.Sprintf("Size: %.4f\n", pos.Size))
	b.WriteString(fmt.Sprintf("Risk: %s\n", money(pos.RiskAmount)))
	return b.String()
}

// FormatTradeClosed formats a position-close push notification.
func FormatTradeClosed(rec model.TradeRecord, equity float64) string {
	var b strings.Builder
	emoji := "✅"
	if rec.Pnl <= 0 {
		emoji = "❌"
	}
	b.WriteString(fmt.Sprintf("%s <b>Position closed</b> | %s %s (%s)\n\n", emoji, rec.Symbol, rec.Side, rec.Reason))
	b.WriteString(fmt.Sprintf("Entry: %s → Exit: %s\n", money(rec.Entry), money(rec.Exit)))
	b.WriteString(fmt.Sprintf("PnL: %s (%.2fR)\n", money(rec.Pnl), rec.RMultiple))
	b.WriteString(fmt.Sprintf("Held: %s\n", rec.Duration.Round(time.Second)))
	b.WriteString(fmt.Sprintf("Equity: %s\n", money(equity)))
	return b.String()
}

// FormatStatus formats the /status overview.
func FormatStatus(snap risk.Snapshot, feed model.FeedStatus, tradingEnabled bool, openPositions int) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Bot status</b>\n\n")
	b.WriteString(fmt.Sprintf("Equity: %s (peak %s)\n", money(snap.Equity), money(snap.PeakEquity)))
	b.WriteString(fmt.Sprintf("Daily loss: %s\n", money(snap.DailyLoss)))
	b.WriteString(fmt.Sprintf("Feed: %s\n", feed))
	b.WriteString(fmt.Sprintf("Open positions: %d\n", openPositions))
	if snap.TradingHalted {
		b.WriteString("\n⛔ Trading HALTED by circuit breaker\n")
	} else if !tradingEnabled {
		b.WriteString("\n⏸ Trading paused via /pause\n")
	} else {
		b.WriteString("\nTrading enabled ✅\n")
	}
	return b.String()
}

// FormatPerformance formats the /performance summary.
func FormatPerformance(sum stats.Summary) string {
	var b strings.Builder
	b.WriteString("📊 <b>Performance</b>\n\n")
	b.WriteString(fmt.Sprintf("Trades: %d (%dW / %dL)\n", sum.TotalTrades, sum.Wins, sum.Losses))
	if sum.TotalTrades > 0 {
		winRate := float64(sum.Wins) / float64(sum.TotalTrades) * 100
		b.WriteString(fmt.Sprintf("Win rate: %.1f%%\n", winRate))
	}
	b.WriteString(fmt.Sprintf("Net PnL: %s\n", money(sum.NetPnl)))
	b.WriteString(fmt.Sprintf("Avg R: %.2f\n", sum.AvgR))
	b.WriteString(fmt.Sprintf("Equity: %s\n", money(sum.Equity)))
	return b.String()
}

// FormatPosition formats the /position reply for one symbol.
func FormatPosition(pos model.Position, ok bool, symbol string) string {
	if !ok {
		return fmt.Sprintf("%s: flat", symbol)
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📌 <b>%s</b> %s\n", pos.Symbol, pos.Side))
	b.WriteString(fmt.Sprintf("Entry: %s | Size: %.4f\n", money(pos.EntryPrice), pos.Size))
	if pos.Managed() {
		b.WriteString(fmt.Sprintf("Stop: %s | Target: %s\n", money(pos.StopPrice), money(pos.TakeProfitPrice)))
	} else {
		b.WriteString("Stop/target: unmanaged (restored from exchange)\n")
	}
	b.WriteString(fmt.Sprintf("Opened: %s\n", humanize.Time(pos.OpenedAt)))
	return b.String()
}

// FormatRejections formats the /rejections breakdown.
func FormatRejections(sum execution.RejectionSummary) string {
	if sum.TotalRejects == 0 {
		return "No rejections today ✅"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🚫 <b>Rejections</b> (%d today)\n\n", sum.TotalRejects))
	if sum.ExchangeTotal > 0 {
		b.WriteString(fmt.Sprintf("Exchange (%d):\n", sum.ExchangeTotal))
		for _, e := range sum.Exchange {
			b.WriteString(fmt.Sprintf("  %s ×%d: %s\n", e.Code, e.Count, e.Message))
		}
	}
	if sum.InternalTotal > 0 {
		b.WriteString(fmt.Sprintf("Internal (%d):\n", sum.InternalTotal))
		for _, e := range sum.Internal {
			b.WriteString(fmt.Sprintf("  %s ×%d\n", e.Reason, e.Count))
		}
	}
	if sum.TopExchangeIssue != nil {
		b.WriteString(fmt.Sprintf("\nTop exchange issue: %s (%d)\n", sum.TopExchangeIssue.Code, sum.TopExchangeIssue.Count))
	}
	return b.String()
}

// FormatDailySummary formats the rollover report pushed at UTC midnight.
func FormatDailySummary(date string, sum stats.Summary, rejections int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🌙 <b>Daily summary</b> | %s\n\n", date))
	b.WriteString(fmt.Sprintf("Trades: %d (%dW / %dL)\n", sum.TotalTrades, sum.Wins, sum.Losses))
	b.WriteString(fmt.Sprintf("Net PnL: %s\n", money(sum.NetPnl)))
	b.WriteString(fmt.Sprintf("Avg R: %.2f\n", sum.AvgR))
	b.WriteString(fmt.Sprintf("Equity: %s\n", money(sum.Equity)))
	b.WriteString(fmt.Sprintf("Rejections: %d\n", rejections))
	b.WriteString("\nDaily loss counter and rejection ledger reset.")
	return b.String()
}
