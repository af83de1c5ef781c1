package engine

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/control"
	"github.com/RizzyDope/paper-trading-bot/internal/execution"
	"github.com/RizzyDope/paper-trading-bot/internal/market"
	"github.com/RizzyDope/paper-trading-bot/internal/model"
	"github.com/RizzyDope/paper-trading-bot/internal/risk"
	"github.com/RizzyDope/paper-trading-bot/internal/strategy"
)

// Executor is the slice of the order manager the symbol engine drives.
type Executor interface {
	HasOpenPosition(symbol string) bool
	OnDecision(decision model.Decision, price, atr float64, atrOK bool, symbol string)
}

// Backfiller fetches historical candles for gap repair.
type Backfiller interface {
	FetchCandles(ctx context.Context, symbol string, timeframe time.Duration, from, to time.Time) ([]model.Candle, error)
}

// Config carries the per-symbol wiring the engine needs.
type Config struct {
	Symbol       string
	StoreDepth   int
	EntryTF      time.Duration
	StructureTF  time.Duration
	BiasTF       time.Duration
	EntryAllowed func(t time.Time) bool

	Feed     *market.FeedHealth
	Control  *control.TradeControl
	Risk     *risk.Engine
	Executor Executor
	Ledger   *execution.RejectionLedger
	Backfill Backfiller // optional
}

// SymbolEngine wires one symbol's tick stream through candle aggregation,
// the bias/structure/entry evaluators, the decision gate and the executor.
// It owns the symbol's market state and candle stores.
type SymbolEngine struct {
	cfg Config

	entryStore     *market.CandleStore
	structureStore *market.CandleStore
	biasStore      *market.CandleStore

	entryBuilder     *market.CandleBuilder
	structureBuilder *market.CandleBuilder
	biasBuilder      *market.CandleBuilder

	mu        sync.Mutex
	bias      model.Bias
	structure model.Structure
	lastEntry model.EntrySignal

	// Hard pause while backfill is mutating the entry store.
	backfilling atomic.Bool
}

// NewSymbolEngine creates the orchestrator for one symbol.
func NewSymbolEngine(cfg Config) *SymbolEngine {
	e := &SymbolEngine{
		cfg:            cfg,
		entryStore:     market.NewCandleStore(cfg.StoreDepth),
		structureStore: market.NewCandleStore(cfg.StoreDepth),
		biasStore:      market.NewCandleStore(cfg.StoreDepth),
		bias:           model.BiasNeutral,
		structure:      model.StructureRange,
	}

	e.entryBuilder = market.NewCandleBuilder(cfg.EntryTF, e.onEntryCandle, e.onGap)
	e.structureBuilder = market.NewCandleBuilder(cfg.StructureTF, e.onStructureCandle, nil)
	e.biasBuilder = market.NewCandleBuilder(cfg.BiasTF, e.onBiasCandle, nil)
	return e
}

// Symbol returns the traded symbol.
func (e *SymbolEngine) Symbol() string { return e.cfg.Symbol }

// OnTick fans the quote midpoint into all timeframe builders.
func (e *SymbolEngine) OnTick(tick model.Tick) {
	mid := tick.Mid()
	e.entryBuilder.OnPrice(mid, tick.Timestamp)
	e.structureBuilder.OnPrice(mid, tick.Timestamp)
	e.biasBuilder.OnPrice(mid, tick.Timestamp)
}

// Bias returns the current higher-timeframe bias.
func (e *SymbolEngine) Bias() model.Bias {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.bias
}

// Structure returns the current mid-timeframe structure.
func (e *SymbolEngine) Structure() model.Structure {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.structure
}

// onEntryCandle runs the full decision pipeline on every closed entry-
// timeframe candle.
func (e *SymbolEngine) onEntryCandle(candle model.Candle) {
	e.entryStore.Append(candle)

	if e.backfilling.Load() {
		log.Printf("[INFO] %s trading paused - backfill in progress", e.cfg.Symbol)
		return
	}

	feedStatus := e.cfg.Feed.Status()
	if feedStatus == model.FeedDanger {
		log.Printf("[WARN] %s trading frozen - feed danger", e.cfg.Symbol)
		return
	}

	candles := e.entryStore.Candles()
	atr, atrOK := strategy.ATR(candles, strategy.DefaultATRPeriod)
	if !atrOK {
		return
	}

	e.mu.Lock()
	bias, structure := e.bias, e.structure
	e.mu.Unlock()

	entrySignal := strategy.EvaluateEntry(candles, bias, structure, atr, atrOK)

	if feedStatus == model.FeedHaltEntries {
		if entrySignal != model.EntryNone {
			log.Printf("[WARN] %s entry blocked - feed unstable", e.cfg.Symbol)
			e.cfg.Ledger.RecordInternalReject(execution.RejectUnstableFeed)
		}
		return
	}

	e.mu.Lock()
	if entrySignal != model.EntryNone && entrySignal != e.lastEntry {
		log.Printf("[INFO] %s entry signal: %s", e.cfg.Symbol, entrySignal)
	}
	e.lastEntry = entrySignal
	e.mu.Unlock()

	decision := strategy.Decide(strategy.DecisionInput{
		Bias:            bias,
		Structure:       structure,
		Entry:           entrySignal,
		HasOpenPosition: e.cfg.Executor.HasOpenPosition(e.cfg.Symbol),
		RiskAllowed:     e.cfg.Risk.CanTakeTrade(),
	})

	if decision != model.DecisionHold && !e.cfg.EntryAllowed(time.Now()) {
		log.Printf("[INFO] %s entry blocked - outside trading hours", e.cfg.Symbol)
		e.cfg.Ledger.RecordInternalReject(execution.RejectOutsideHours)
		decision = model.DecisionHold
	}

	if decision != model.DecisionHold && !e.cfg.Control.Enabled() {
		log.Printf("[INFO] %s entry blocked - trading paused", e.cfg.Symbol)
		e.cfg.Ledger.RecordInternalReject(execution.RejectPaused)
		decision = model.DecisionHold
	}

	if decision != model.DecisionHold {
		log.Printf("[INFO] %s decision: %s", e.cfg.Symbol, decision)
	}

	e.cfg.Executor.OnDecision(decision, candle.Close, atr, atrOK, e.cfg.Symbol)
}

// onStructureCandle re-classifies the trend shape on every closed structure-
// timeframe candle.
func (e *SymbolEngine) onStructureCandle(candle model.Candle) {
	e.structureStore.Append(candle)

	candles := e.structureStore.Candles()
	atr, atrOK := strategy.ATR(candles, strategy.DefaultATRPeriod)
	newStructure := strategy.EvaluateStructure(candles, atr, atrOK)

	e.mu.Lock()
	if newStructure != e.structure {
		log.Printf("[INFO] %s structure changed: %s -> %s", e.cfg.Symbol, e.structure, newStructure)
		e.structure = newStructure
	}
	e.mu.Unlock()
}

// onBiasCandle advances the bias state machine on every closed bias-
// timeframe candle.
func (e *SymbolEngine) onBiasCandle(candle model.Candle) {
	e.biasStore.Append(candle)

	candles := e.biasStore.Candles()

	e.mu.Lock()
	newBias := strategy.EvaluateBias(candles, e.bias)
	if newBias != e.bias {
		log.Printf("[INFO] %s bias changed: %s -> %s", e.cfg.Symbol, e.bias, newBias)
		e.bias = newBias
	}
	e.mu.Unlock()
}

// onGap repairs a detected hole in the entry-timeframe stream. Entries stay
// suppressed for the duration so no decision is taken against a store that is
// mid-mutation. Backfill failure is non-fatal; the store simply keeps its gap.
func (e *SymbolEngine) onGap(from, to time.Time) {
	if e.cfg.Backfill == nil {
		return
	}

	log.Printf("[INFO] %s gap detected - initiating backfill", e.cfg.Symbol)
	e.backfilling.Store(true)
	defer func() {
		e.backfilling.Store(false)
		log.Printf("[INFO] %s trading resumed after backfill", e.cfg.Symbol)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	candles, err := e.cfg.Backfill.FetchCandles(ctx, e.cfg.Symbol, e.cfg.EntryTF, from, to)
	if err != nil {
		log.Printf("[ERROR] %s backfill failed: %v", e.cfg.Symbol, err)
		return
	}

	for _, c := range candles {
		e.entryStore.AddHistorical(c)
	}
	log.Printf("[INFO] %s backfill restored %d candles", e.cfg.Symbol, len(candles))
}
