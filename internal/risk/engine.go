package risk

import (
	"log"
	"math"
	"sync"
)

// Engine is the sole authority over tradeable capital. One instance is shared
// by all symbol pipelines; every trade outcome is routed through
// UpdateAfterTrade, never read-modify-write from outside.
type Engine struct {
	mu sync.Mutex

	riskPerTrade float64
	maxDailyLoss float64
	maxDrawdown  float64

	equity        float64
	peakEquity    float64
	dailyLoss     float64
	tradingHalted bool
}

// Snapshot is a read-only copy of the capital state.
type Snapshot struct {
	Equity        float64
	PeakEquity    float64
	DailyLoss     float64
	TradingHalted bool
}

// NewEngine creates the capital authority.
func NewEngine(startingEquity, riskPerTrade, maxDailyLoss, maxDrawdown float64) *Engine {
	return &Engine{
		riskPerTrade: riskPerTrade,
		maxDailyLoss: maxDailyLoss,
		maxDrawdown:  maxDrawdown,
		equity:       startingEquity,
		peakEquity:   startingEquity,
	}
}

// CanTakeTrade reports whether a new trade is permitted.
func (e *Engine) CanTakeTrade() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tradingHalted {
		return false
	}
	if e.equity <= 0 {
		return false
	}
	return e.dailyLoss < e.equity*e.maxDailyLoss
}

// PositionSize returns the quantity that risks equity*riskPerTrade between
// entry and stop. Zero means no trade: depleted equity, a degenerate stop
// distance, or a risk amount exceeding equity all veto sizing.
func (e *Engine) PositionSize(entryPrice, stopPrice float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.equity <= 0 {
		return 0
	}

	riskAmount := e.equity * e.riskPerTrade
	riskPerUnit := math.Abs(entryPrice - stopPrice)
	if riskPerUnit == 0 {
		return 0
	}
	if riskAmount > e.equity {
		return 0
	}
	return riskAmount / riskPerUnit
}

// UpdateAfterTrade applies a realized pnl. This is the only equity mutator.
// Equity is clamped at zero (depletion halts trading), peak equity ratchets
// up, losses accumulate into the daily loss, and drawdown from peak beyond
// the configured fraction trips the circuit breaker. The halt latch stays set
// until an explicit external reset.
func (e *Engine) UpdateAfterTrade(pnl float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.equity += pnl

	if e.equity <= 0 {
		e.equity = 0
		e.tradingHalted = true
		log.Println("[ERROR] equity depleted - trading halted")
	}

	if e.equity > e.peakEquity {
		e.peakEquity = e.equity
	}

	if pnl < 0 {
		e.dailyLoss += -pnl
	}

	if e.equity <= e.peakEquity*(1-e.maxDrawdown) {
		if !e.tradingHalted {
			log.Printf("[ERROR] drawdown circuit breaker tripped: equity=%.2f peak=%.2f", e.equity, e.peakEquity)
		}
		e.tradingHalted = true
	}
}

// ResetDailyLoss clears the daily loss accumulator. Invoked once per UTC
// calendar day by the rollover scheduler, not by a timer in the engine.
func (e *Engine) ResetDailyLoss() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dailyLoss = 0
}

// ResetHalt releases the circuit breaker. Operator action only.
func (e *Engine) ResetHalt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tradingHalted = false
}

// Equity returns the current equity.
func (e *Engine) Equity() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.equity
}

// State returns a copy of the capital state.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Equity:        e.equity,
		PeakEquity:    e.peakEquity,
		DailyLoss:     e.dailyLoss,
		TradingHalted: e.tradingHalted,
	}
}
