package stats

import (
	"sync"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// PerformanceTracker is a cumulative trade ledger with derived statistics.
type PerformanceTracker struct {
	mu             sync.Mutex
	startingEquity float64
	trades         []model.TradeRecord
}

// Summary is the derived view of the ledger.
type Summary struct {
	TotalTrades int
	Wins        int
	Losses      int
	NetPnl      float64
	AvgR        float64
	Equity      float64
}

// NewPerformanceTracker creates a ledger anchored at the starting equity.
func NewPerformanceTracker(startingEquity float64) *PerformanceTracker {
	return &PerformanceTracker{startingEquity: startingEquity}
}

// RecordTrade appends a completed round trip.
func (p *PerformanceTracker) RecordTrade(rec model.TradeRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trades = append(p.trades, rec)
}

// Summary derives win/loss counts, net pnl, average R and ledger equity.
func (p *PerformanceTracker) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Summary{TotalTrades: len(p.trades)}
	totalR := 0.0
	for _, t := range p.trades {
		s.NetPnl += t.Pnl
		totalR += t.RMultiple
		switch t.Result {
		case "WIN":
			s.Wins++
		case "LOSS":
			s.Losses++
		}
	}
	if s.TotalTrades > 0 {
		s.AvgR = totalR / float64(s.TotalTrades)
	}
	s.Equity = p.startingEquity + s.NetPnl
	return s
}

// Trades returns a copy of the ledger.
func (p *PerformanceTracker) Trades() []model.TradeRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.TradeRecord, len(p.trades))
	copy(out, p.trades)
	return out
}
