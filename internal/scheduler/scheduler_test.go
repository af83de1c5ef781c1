package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RizzyDope/paper-trading-bot/internal/control"
	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/market"
	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/recorder"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/stats"
)

type captureRecorder struct {
	summaries []recorder.DailySummary
}

func (c *captureRecorder) RecordTrade(model.TradeRecord) error { return nil }
func (c *captureRecorder) RecordDailySummary(sum recorder.DailySummary) error {
	c.summaries = append(c.summaries, sum)
	return nil
}
func (c *captureRecorder) Close() error { return nil }

func TestDailyRollover(t *testing.T) {
	riskEngine := risk.NewEngine(10000, 0.01, 0.03, 0.2)
	perf := stats.NewPerformanceTracker(10000)
	ledger := execution.NewRejectionLedger()
	manager := execution.NewManager(execution.NewPaperGateway(0.001), riskEngine, perf,
		ledger, recorder.NewNoopRecorder(), nil)
	rec := &captureRecorder{}

	s := NewScheduler(context.Background(), nil, rec, riskEngine, perf, manager,
		control.New(), market.NewFeedHealth(nil), nil)

	riskEngine.UpdateAfterTrade(-150)
	perf.RecordTrade(model.TradeRecord{Pnl: -150, RMultiple: -1.5, Result: "LOSS"})
	ledger.RecordInternalReject(execution.RejectOutsideHours)
	ledger.RecordExchangeReject("110007", "insufficient balance")

	s.DailyRollover(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))

	require.Len(t, rec.summaries, 1)
	sum := rec.summaries[0]
	assert.Equal(t, "2026-01-02", sum.Date)
	assert.Equal(t, 1, sum.TotalTrades)
	assert.Equal(t, 1, sum.Losses)
	assert.InDelta(t, -150.0, sum.NetPnl, 1e-9)
	assert.Equal(t, 2, sum.Rejections)

	// Daily counters reset, cumulative state untouched.
	assert.Zero(t, riskEngine.State().DailyLoss)
	assert.Zero(t, ledger.Summary().TotalRejects)
	assert.InDelta(t, 9850.0, riskEngine.Equity(), 1e-9)
	assert.Equal(t, 1, perf.Summary().TotalTrades)
}

func TestHandleCommandPauseResume(t *testing.T) {
	ctl := control.New()
	riskEngine := risk.NewEngine(10000, 0.01, 0.03, 0.2)
	perf := stats.NewPerformanceTracker(10000)
	manager := execution.NewManager(execution.NewPaperGateway(0.001), riskEngine, perf,
		execution.NewRejectionLedger(), recorder.NewNoopRecorder(), nil)

	s := NewScheduler(context.Background(), nil, recorder.NewNoopRecorder(), riskEngine,
		perf, manager, ctl, market.NewFeedHealth(nil), nil)

	s.HandleCommand("/pause")
	assert.False(t, ctl.Enabled())

	s.HandleCommand("/resume")
	assert.True(t, ctl.Enabled())

	reply := s.HandleCommand("/bogus")
	assert.Contains(t, reply, "Unknown command")
}

func TestHandleCommandHaltReset(t *testing.T) {
	riskEngine := risk.NewEngine(10000, 0.01, 0.03, 0.2)
	perf := stats.NewPerformanceTracker(10000)
	manager := execution.NewManager(execution.NewPaperGateway(0.001), riskEngine, perf,
		execution.NewRejectionLedger(), recorder.NewNoopRecorder(), nil)

	s := NewScheduler(context.Background(), nil, recorder.NewNoopRecorder(), riskEngine,
		perf, manager, control.New(), market.NewFeedHealth(nil), nil)

	riskEngine.UpdateAfterTrade(-2500) // trips the 20% drawdown breaker
	require.False(t, riskEngine.CanTakeTrade())

	s.HandleCommand("/halt-reset")
	riskEngine.ResetDailyLoss()
	assert.True(t, riskEngine.CanTakeTrade())
}
