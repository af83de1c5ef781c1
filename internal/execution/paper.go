package execution

import (
	"context"
	"sync"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// PaperGateway simulates an exchange: orders fill instantly at the price the
// caller last quoted, positions live in memory. Used for paper mode and as
// the test double for the order manager.
type PaperGateway struct {
	mu        sync.Mutex
	positions map[string]*model.Position
	step      float64
}

// NewPaperGateway creates an empty paper exchange with the given quantity step.
func NewPaperGateway(step float64) *PaperGateway {
	if step == 0 {
		step = 0.0001
	}
	return &PaperGateway{
		positions: make(map[string]*model.Position),
		step:      step,
	}
}

// PlaceMarketOrder fills immediately. The fill price is left zero so the
// manager prices it from the triggering quote, matching the live gateway.
func (g *PaperGateway) PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty float64, reduceOnly bool) (Fill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if reduceOnly {
		delete(g.positions, symbol)
	} else {
		g.positions[symbol] = &model.Position{Symbol: symbol, Side: side, Size: qty}
	}
	return Fill{OrderID: "paper"}, nil
}

// OpenPosition reports the simulated position, if any.
func (g *PaperGateway) OpenPosition(ctx context.Context, symbol string) (*model.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	pos, ok := g.positions[symbol]
	if !ok {
		return nil, nil
	}
	cp := *pos
	return &cp, nil
}

// SetLeverage is a no-op in paper mode.
func (g *PaperGateway) SetLeverage(ctx context.Context, symbol string, leverage int) error {
	return nil
}

// QuantityStep returns the configured step.
func (g *PaperGateway) QuantityStep(ctx context.Context, symbol string) (float64, error) {
	return g.step, nil
}
