package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/RizzyDope/paper-trading-bot/internal/control"
	"github.com/RizzyDope/paper-trading-bot/internal/engine"
	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/market"
	"github.com/RizzyDope/paper-trading-bot/internal/notifier"
	"github.com/RizzyDope/paper-trading-bot/internal/recorder"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/stats"
)

// Scheduler owns the daily rollover cron task and routes Telegram commands.
type Scheduler struct {
	Cron     *cron.Cron
	Notifier *notifier.TelegramNotifier
	Recorder recorder.Recorder
	Risk     *risk.Engine
	Perf     *stats.PerformanceTracker
	Manager  *execution.Manager
	Control  *control.TradeControl
	Feed     *market.FeedHealth
	Engines  []*engine.SymbolEngine
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, tn *notifier.TelegramNotifier, rec recorder.Recorder,
	riskEngine *risk.Engine, perf *stats.PerformanceTracker, mgr *execution.Manager,
	ctl *control.TradeControl, feed *market.FeedHealth, engines []*engine.SymbolEngine) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		Notifier: tn,
		Recorder: rec,
		Risk:     riskEngine,
		Perf:     perf,
		Manager:  mgr,
		Control:  ctl,
		Feed:     feed,
		Engines:  engines,
		Ctx:      ctx,
	}
}

// RegisterAll registers the UTC midnight rollover task.
func (s *Scheduler) RegisterAll() error {
	if _, err := s.Cron.AddFunc("0 0 0 * * *", func() { s.DailyRollover(time.Now()) }); err != nil {
		return fmt.Errorf("register daily rollover: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// DailyRollover reports the day that just ended, persists the snapshot and
// resets the daily loss counter and the rejection ledger.
func (s *Scheduler) DailyRollover(now time.Time) {
	log.Println("[INFO] running daily rollover")

	date := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	perfSum := s.Perf.Summary()
	rejSum := s.Manager.Ledger().Summary()

	s.trySend(notifier.FormatDailySummary(date, perfSum, rejSum.TotalRejects))
	if rejSum.TotalRejects > 0 {
		s.trySend(notifier.FormatRejections(rejSum))
	}

	if err := s.Recorder.RecordDailySummary(recorder.DailySummary{
		Date:        date,
		TotalTrades: perfSum.TotalTrades,
		Wins:        perfSum.Wins,
		Losses:      perfSum.Losses,
		NetPnl:      perfSum.NetPnl,
		AvgR:        perfSum.AvgR,
		Equity:      perfSum.Equity,
		Rejections:  rejSum.TotalRejects,
	}); err != nil {
		log.Printf("[ERROR] record daily summary: %v", err)
	}

	s.Risk.ResetDailyLoss()
	s.Manager.Ledger().Reset()
	log.Println("[INFO] daily rollover complete")
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/status":
		open := 0
		var market strings.Builder
		for _, e := range s.Engines {
			pos := "flat"
			if s.Manager.HasOpenPosition(e.Symbol()) {
				open++
				pos = "open"
			}
			market.WriteString(fmt.Sprintf("%s: bias=%s structure=%s position=%s\n",
				e.Symbol(), e.Bias(), e.Structure(), pos))
		}
		return notifier.FormatStatus(s.Risk.State(), s.Feed.Status(), s.Control.Enabled(), open) +
			"\n" + market.String()

	case "/performance":
		return notifier.FormatPerformance(s.Perf.Summary())

	case "/position":
		var parts []string
		for _, e := range s.Engines {
			pos, ok := s.Manager.Position(e.Symbol())
			parts = append(parts, notifier.FormatPosition(pos, ok, e.Symbol()))
		}
		return strings.Join(parts, "\n")

	case "/rejections":
		return notifier.FormatRejections(s.Manager.Ledger().Summary())

	case "/pause":
		s.Control.Pause()
		return "⏸ New entries paused. Open positions stay managed."

	case "/resume":
		s.Control.Resume()
		return "▶️ New entries resumed."

	case "/resync":
		ctx, cancel := context.WithTimeout(s.Ctx, 30*time.Second)
		defer cancel()
		var b strings.Builder
		for _, e := range s.Engines {
			if err := s.Manager.Resync(ctx, e.Symbol()); err != nil {
				b.WriteString(fmt.Sprintf("%s: resync failed: %v\n", e.Symbol(), err))
				continue
			}
			b.WriteString(fmt.Sprintf("%s: resynced\n", e.Symbol()))
		}
		return b.String()

	case "/halt-reset":
		s.Risk.ResetHalt()
		return "Circuit breaker cleared. Trading re-enabled."

	case "/help":
		return helpText

	default:
		return "Unknown command.\n\n" + helpText
	}
}

const helpText = `Available commands:
/status - equity, feed, halt state and per-symbol market state
/performance - cumulative trade statistics
/position - open positions per symbol
/rejections - today's rejected orders
/pause - stop taking new entries
/resume - resume taking new entries
/resync - reconcile positions with the exchange
/halt-reset - clear the circuit breaker
/help - this message`

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
