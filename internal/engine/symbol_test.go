package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RizzyDope/paper-trading-bot/internal/control"
	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/market"
	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
)

type fakeExecutor struct {
	mu        sync.Mutex
	hasPos    bool
	decisions []model.Decision
}

func (f *fakeExecutor) HasOpenPosition(symbol string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasPos
}

func (f *fakeExecutor) OnDecision(decision model.Decision, price, atr float64, atrOK bool, symbol string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.decisions = append(f.decisions, decision)
}

func (f *fakeExecutor) last() (model.Decision, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.decisions) == 0 {
		return "", false
	}
	return f.decisions[len(f.decisions)-1], true
}

type fakeBackfiller struct {
	candles []model.Candle
	calls   int
}

func (f *fakeBackfiller) FetchCandles(ctx context.Context, symbol string, timeframe time.Duration, from, to time.Time) ([]model.Candle, error) {
	f.calls++
	return f.candles, nil
}

type engineFixture struct {
	engine   *SymbolEngine
	executor *fakeExecutor
	ledger   *execution.RejectionLedger
	control  *control.TradeControl
	clock    *time.Time
	allowed  *bool
}

func newFixture(t *testing.T, backfill Backfiller) *engineFixture {
	t.Helper()

	now := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	allowed := true
	fx := &engineFixture{
		executor: &fakeExecutor{},
		ledger:   execution.NewRejectionLedger(),
		control:  control.New(),
		clock:    &now,
		allowed:  &allowed,
	}

	fx.engine = NewSymbolEngine(Config{
		Symbol:       "BTCUSDT",
		StoreDepth:   200,
		EntryTF:      time.Minute,
		StructureTF:  5 * time.Minute,
		BiasTF:       4 * time.Hour,
		EntryAllowed: func(time.Time) bool { return *fx.allowed },
		Feed:         market.NewFeedHealth(func() time.Time { return *fx.clock }),
		Control:      fx.control,
		Risk:         risk.NewEngine(10000, 0.01, 0.5, 0.9),
		Executor:     fx.executor,
		Ledger:       fx.ledger,
		Backfill:     backfill,
	})
	return fx
}

func candle(o, h, l, c float64) model.Candle {
	return model.Candle{Open: o, High: h, Low: l, Close: c}
}

// seedLongSetup fills the entry store so the next closed candle completes a
// pullback-then-reclaim long pattern with a defined ATR.
func seedLongSetup(e *SymbolEngine) model.Candle {
	for i := 0; i < 14; i++ {
		e.entryStore.Append(candle(100, 100.9, 99.9, 100.4))
	}
	e.entryStore.Append(candle(100.2, 100.8, 100, 100.5))
	e.entryStore.Append(candle(100.1, 100.2, 99.7, 100.0))

	e.mu.Lock()
	e.bias = model.BiasBullish
	e.structure = model.StructureBullish
	e.mu.Unlock()

	return candle(100.0, 100.4, 99.9, 100.35)
}

func internalRejects(ledger *execution.RejectionLedger) map[string]int {
	out := make(map[string]int)
	for _, e := range ledger.Summary().Internal {
		out[e.Reason] = e.Count
	}
	return out
}

func TestEngineEmitsLongDecision(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)

	fx.engine.onEntryCandle(trigger)

	last, ok := fx.executor.last()
	require.True(t, ok)
	assert.Equal(t, model.DecisionEnterLong, last)
	assert.Zero(t, fx.ledger.Summary().TotalRejects)
}

func TestEngineHoldsWithoutSignal(t *testing.T) {
	fx := newFixture(t, nil)
	seedLongSetup(fx.engine)

	// A candle that reclaims nothing produces no signal.
	fx.engine.onEntryCandle(candle(100.0, 100.1, 99.9, 100.05))

	last, ok := fx.executor.last()
	require.True(t, ok)
	assert.Equal(t, model.DecisionHold, last)
}

func TestEngineVetoOutsideTradingHours(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)
	*fx.allowed = false

	fx.engine.onEntryCandle(trigger)

	last, ok := fx.executor.last()
	require.True(t, ok)
	assert.Equal(t, model.DecisionHold, last)
	assert.Equal(t, 1, internalRejects(fx.ledger)[execution.RejectOutsideHours])
}

func TestEngineVetoWhenPaused(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)
	fx.control.Pause()

	fx.engine.onEntryCandle(trigger)

	last, ok := fx.executor.last()
	require.True(t, ok)
	assert.Equal(t, model.DecisionHold, last)
	assert.Equal(t, 1, internalRejects(fx.ledger)[execution.RejectPaused])
}

func TestEngineUnstableFeedSuppressesEntry(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)
	*fx.clock = fx.clock.Add(2 * time.Minute)

	fx.engine.onEntryCandle(trigger)

	_, called := fx.executor.last()
	assert.False(t, called)
	assert.Equal(t, 1, internalRejects(fx.ledger)[execution.RejectUnstableFeed])
}

func TestEngineUnstableFeedWithoutSignalIsQuiet(t *testing.T) {
	fx := newFixture(t, nil)
	seedLongSetup(fx.engine)
	*fx.clock = fx.clock.Add(2 * time.Minute)

	fx.engine.onEntryCandle(candle(100.0, 100.1, 99.9, 100.05))

	// Suppression without a signal is not a rejection.
	assert.Zero(t, fx.ledger.Summary().TotalRejects)
}

func TestEngineFeedDangerFreezesPipeline(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)
	*fx.clock = fx.clock.Add(11 * time.Minute)

	fx.engine.onEntryCandle(trigger)

	_, called := fx.executor.last()
	assert.False(t, called)
	assert.Zero(t, fx.ledger.Summary().TotalRejects)
}

func TestEngineBackfillPausesDecisions(t *testing.T) {
	fx := newFixture(t, nil)
	trigger := seedLongSetup(fx.engine)
	fx.engine.backfilling.Store(true)

	fx.engine.onEntryCandle(trigger)

	_, called := fx.executor.last()
	assert.False(t, called)
	// The candle itself is still kept.
	last, ok := fx.engine.entryStore.Last()
	require.True(t, ok)
	assert.Equal(t, trigger, last)
}

func TestEngineGapTriggersBackfill(t *testing.T) {
	bf := &fakeBackfiller{candles: []model.Candle{
		{StartTime: time.Date(2026, 1, 2, 10, 1, 0, 0, time.UTC), Close: 101},
		{StartTime: time.Date(2026, 1, 2, 10, 2, 0, 0, time.UTC), Close: 102},
	}}
	fx := newFixture(t, bf)

	fx.engine.onGap(time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC), time.Date(2026, 1, 2, 10, 3, 0, 0, time.UTC))

	assert.Equal(t, 1, bf.calls)
	assert.Equal(t, 2, fx.engine.entryStore.Len())
	assert.False(t, fx.engine.backfilling.Load())
}

func TestEngineBiasAdvancesOnBiasCandles(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Equal(t, model.BiasNeutral, fx.engine.Bias())

	fx.engine.onBiasCandle(candle(9, 10, 8.5, 9.5))
	fx.engine.onBiasCandle(candle(9.5, 11, 9, 10.5))
	assert.Equal(t, model.BiasNeutral, fx.engine.Bias())

	// Third candle makes the pair above fully closed: bullish continuation.
	fx.engine.onBiasCandle(candle(10.5, 10.6, 10.3, 10.4))
	assert.Equal(t, model.BiasBullish, fx.engine.Bias())
}

func TestEngineStructureAdvancesOnStructureCandles(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Equal(t, model.StructureRange, fx.engine.Structure())

	for i := 0; i < 11; i++ {
		fx.engine.structureStore.Append(candle(100, 100.9, 99.9, 100.4))
	}
	fx.engine.structureStore.Append(candle(100, 100.8, 100, 100.6))
	fx.engine.structureStore.Append(candle(100.6, 101.4, 100.5, 101.2))
	fx.engine.structureStore.Append(candle(101.2, 102, 101.1, 101.8))

	fx.engine.onStructureCandle(candle(101.8, 101.9, 101.7, 101.85))
	assert.Equal(t, model.StructureBullish, fx.engine.Structure())
}
