package execution

import (
	"context"
	"errors"
	"log"
	"math"
	"sync"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/recorder"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/stats"
)

const (
	stopDistanceATR = 1.5
	rewardToRisk    = 2.0
)

// TradeObserver receives trade lifecycle notifications (telegram push).
type TradeObserver interface {
	TradeOpened(pos model.Position)
	TradeClosed(rec model.TradeRecord, equity float64)
}

// Manager owns the local position record per symbol and is the only component
// that talks to the exchange gateway. Order submission is asynchronous; a
// per-symbol in-flight flag guarantees no overlapping open/close for the same
// symbol, and local state never changes without a confirmed fill.
type Manager struct {
	gateway  Gateway
	risk     *risk.Engine
	perf     *stats.PerformanceTracker
	ledger   *RejectionLedger
	recorder recorder.Recorder
	observer TradeObserver

	mu        sync.Mutex
	positions map[string]*model.Position
	inflight  map[string]bool
	steps     map[string]float64
}

// NewManager creates the order manager. observer may be nil.
func NewManager(gateway Gateway, riskEngine *risk.Engine, perf *stats.PerformanceTracker,
	ledger *RejectionLedger, rec recorder.Recorder, observer TradeObserver) *Manager {
	return &Manager{
		gateway:   gateway,
		risk:      riskEngine,
		perf:      perf,
		ledger:    ledger,
		recorder:  rec,
		observer:  observer,
		positions: make(map[string]*model.Position),
		inflight:  make(map[string]bool),
		steps:     make(map[string]float64),
	}
}

// HasOpenPosition reports whether a local position record exists for the
// symbol. Absence of a position is the only decision signal; in-flight opens
// are guarded separately.
func (m *Manager) HasOpenPosition(symbol string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.positions[symbol] != nil
}

// Position returns a copy of the local position record, if any.
func (m *Manager) Position(symbol string) (model.Position, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.positions[symbol]
	if !ok {
		return model.Position{}, false
	}
	return *pos, true
}

// OnDecision translates an entry decision into a market order. The stop is
// placed ATR*1.5 away and the take-profit at 1:2 reward-to-risk. No-op
// without a defined ATR, with a position already open, or while a prior
// open/close is in flight.
func (m *Manager) OnDecision(decision model.Decision, price, atr float64, atrOK bool, symbol string) {
	if !atrOK {
		return
	}

	stopDistance := atr * stopDistanceATR

	switch decision {
	case model.DecisionEnterLong:
		m.open(symbol, model.SideLong, price, price-stopDistance)
	case model.DecisionEnterShort:
		m.open(symbol, model.SideShort, price, price+stopDistance)
	}
}

func (m *Manager) open(symbol string, side model.Side, entryPrice, stopPrice float64) {
	m.mu.Lock()
	if m.positions[symbol] != nil || m.inflight[symbol] {
		m.mu.Unlock()
		return
	}

	size := m.risk.PositionSize(entryPrice, stopPrice)
	size = m.roundToStepLocked(symbol, size)
	if size <= 0 {
		m.mu.Unlock()
		log.Printf("[WARN] %s position size zero - trade skipped", symbol)
		m.ledger.RecordInternalReject(RejectZeroPositionSize)
		return
	}

	m.inflight[symbol] = true
	m.mu.Unlock()

	go func() {
		defer m.clearInflight(symbol)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		log.Printf("[INFO] %s opening %s size=%.4f entry=%.4f stop=%.4f", symbol, side, size, entryPrice, stopPrice)

		fill, err := m.gateway.PlaceMarketOrder(ctx, symbol, side, size, false)
		if err != nil {
			m.recordOrderFailure(symbol, "open", err)
			return
		}

		filledAt := entryPrice
		if fill.FillPrice > 0 {
			filledAt = fill.FillPrice
		}

		stopDistance := math.Abs(entryPrice - stopPrice)
		stop := filledAt - stopDistance
		target := filledAt + stopDistance*rewardToRisk
		if side == model.SideShort {
			stop = filledAt + stopDistance
			target = filledAt - stopDistance*rewardToRisk
		}

		pos := model.Position{
			Symbol:          symbol,
			Side:            side,
			EntryPrice:      filledAt,
			StopPrice:       stop,
			TakeProfitPrice: target,
			Size:            size,
			OpenedAt:        time.Now(),
			RiskAmount:      stopDistance * size,
		}

		m.mu.Lock()
		m.positions[symbol] = &pos
		m.mu.Unlock()

		log.Printf("[INFO] %s position opened: %s entry=%.4f stop=%.4f tp=%.4f", symbol, side, filledAt, stop, target)
		if m.observer != nil {
			m.observer.TradeOpened(pos)
		}
	}()
}

// OnTick checks the open position's stop and target against the raw quote.
// Exits price against the side that would actually fill: bid for LONG exits,
// ask for SHORT exits. Resynced positions carry no stop/target and are left
// alone.
func (m *Manager) OnTick(tick model.Tick) {
	m.mu.Lock()
	pos := m.positions[tick.Symbol]
	if pos == nil || m.inflight[tick.Symbol] || !pos.Managed() {
		m.mu.Unlock()
		return
	}
	side, stop, target := pos.Side, pos.StopPrice, pos.TakeProfitPrice
	m.mu.Unlock()

	switch side {
	case model.SideLong:
		if tick.Bid <= stop {
			m.ClosePosition(tick.Symbol, tick.Bid, model.CloseStopLoss)
		} else if tick.Bid >= target {
			m.ClosePosition(tick.Symbol, tick.Bid, model.CloseTakeProfit)
		}
	case model.SideShort:
		if tick.Ask >= stop {
			m.ClosePosition(tick.Symbol, tick.Ask, model.CloseStopLoss)
		} else if tick.Ask <= target {
			m.ClosePosition(tick.Symbol, tick.Ask, model.CloseTakeProfit)
		}
	}
}

// ClosePosition submits a reduce-only market close. No-op when no position is
// open or one is already in flight. On a confirmed fill the realized pnl is
// routed through the risk engine, the trade is recorded, and the local record
// is cleared.
func (m *Manager) ClosePosition(symbol string, exitPrice float64, reason model.CloseReason) {
	m.mu.Lock()
	pos := m.positions[symbol]
	if pos == nil || m.inflight[symbol] {
		m.mu.Unlock()
		return
	}
	m.inflight[symbol] = true
	closing := *pos
	m.mu.Unlock()

	go func() {
		defer m.clearInflight(symbol)

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		log.Printf("[INFO] %s closing position (%s)", symbol, reason)

		fill, err := m.gateway.PlaceMarketOrder(ctx, symbol, closing.Side.Opposite(), closing.Size, true)
		if err != nil {
			m.recordOrderFailure(symbol, "close", err)
			return
		}

		exit := exitPrice
		if fill.FillPrice > 0 {
			exit = fill.FillPrice
		}

		var pnl float64
		if closing.Side == model.SideLong {
			pnl = (exit - closing.EntryPrice) * closing.Size
		} else {
			pnl = (closing.EntryPrice - exit) * closing.Size
		}

		m.risk.UpdateAfterTrade(pnl)
		equity := m.risk.Equity()

		result := "LOSS"
		if pnl > 0 {
			result = "WIN"
		}
		rMultiple := 0.0
		if closing.RiskAmount > 0 {
			rMultiple = pnl / closing.RiskAmount
		}

		rec := model.TradeRecord{
			Symbol:      symbol,
			Side:        closing.Side,
			Entry:       closing.EntryPrice,
			Exit:        exit,
			Pnl:         pnl,
			RMultiple:   rMultiple,
			Result:      result,
			Reason:      reason,
			Duration:    time.Since(closing.OpenedAt),
			ClosedAt:    time.Now(),
			EquityAfter: equity,
		}

		m.perf.RecordTrade(rec)
		if err := m.recorder.RecordTrade(rec); err != nil {
			log.Printf("[ERROR] record trade: %v", err)
		}

		m.mu.Lock()
		delete(m.positions, symbol)
		m.mu.Unlock()

		log.Printf("[INFO] %s closed pnl=%.2f r=%.2f equity=%.2f reason=%s", symbol, pnl, rMultiple, equity, reason)
		if m.observer != nil {
			m.observer.TradeClosed(rec, equity)
		}
	}()
}

// Resync overwrites local belief with the exchange's reported position. A
// live position is restored with unknown stop/target (unmanaged until flat);
// no live position clears the local record. Local state is never
// authoritative over exchange truth.
func (m *Manager) Resync(ctx context.Context, symbol string) error {
	log.Printf("[INFO] %s resync: querying live position", symbol)

	live, err := m.gateway.OpenPosition(ctx, symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if live == nil {
		if m.positions[symbol] != nil {
			log.Printf("[WARN] %s resync: local position cleared (exchange reports none)", symbol)
			delete(m.positions, symbol)
		}
		return nil
	}

	log.Printf("[INFO] %s resync: live position restored: %s size=%.4f entry=%.4f",
		symbol, live.Side, live.Size, live.EntryPrice)
	restored := *live
	restored.StopPrice = 0
	restored.TakeProfitPrice = 0
	if restored.OpenedAt.IsZero() {
		restored.OpenedAt = time.Now()
	}
	m.positions[symbol] = &restored
	return nil
}

// EnsureSymbol sets leverage and caches the quantity step for a symbol.
// Called once at startup per traded symbol.
func (m *Manager) EnsureSymbol(ctx context.Context, symbol string, leverage int) error {
	if err := m.gateway.SetLeverage(ctx, symbol, leverage); err != nil {
		log.Printf("[WARN] %s could not confirm leverage: %v", symbol, err)
	}

	step, err := m.gateway.QuantityStep(ctx, symbol)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.steps[symbol] = step
	m.mu.Unlock()
	return nil
}

// Ledger exposes the rejection ledger for reporting.
func (m *Manager) Ledger() *RejectionLedger {
	return m.ledger
}

func (m *Manager) roundToStepLocked(symbol string, size float64) float64 {
	step := m.steps[symbol]
	if step <= 0 {
		return size
	}
	return math.Floor(size/step) * step
}

func (m *Manager) clearInflight(symbol string) {
	m.mu.Lock()
	delete(m.inflight, symbol)
	m.mu.Unlock()
}

func (m *Manager) recordOrderFailure(symbol, op string, err error) {
	var reject *RejectError
	if errors.As(err, &reject) {
		log.Printf("[ERROR] %s %s order rejected: code=%s msg=%s", symbol, op, reject.Code, reject.Message)
		m.ledger.RecordExchangeReject(reject.Code, reject.Message)
		return
	}
	log.Printf("[ERROR] %s %s order failed: %v", symbol, op, err)
	m.ledger.RecordInternalReject(RejectTransportFailure)
}
