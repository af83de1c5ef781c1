package execution

import (
	"context"
	"fmt"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// Fill is a confirmed market-order execution.
type Fill struct {
	OrderID   string
	FillPrice float64
}

// RejectError is an order request the exchange validated and refused.
// Transport failures are plain errors; both leave local state unchanged.
type RejectError struct {
	Code    string
	Message string
}

func (e *RejectError) Error() string {
	return fmt.Sprintf("exchange rejected request: code=%s msg=%s", e.Code, e.Message)
}

// Gateway is the capability surface the order manager needs from an
// exchange. One implementation per venue; the manager's sizing, stop/target
// monitoring, reconciliation and pnl accounting are written once against it.
// Absence of a returned error is the only proof a state change occurred.
type Gateway interface {
	// PlaceMarketOrder submits a market order and returns the confirmed fill.
	PlaceMarketOrder(ctx context.Context, symbol string, side model.Side, qty float64, reduceOnly bool) (Fill, error)
	// OpenPosition returns the exchange's live position for the symbol, or
	// nil if it reports none. Exchange truth overrides local belief.
	OpenPosition(ctx context.Context, symbol string) (*model.Position, error)
	// SetLeverage ensures the symbol's leverage setting.
	SetLeverage(ctx context.Context, symbol string, leverage int) error
	// QuantityStep returns the symbol's order quantity granularity.
	QuantityStep(ctx context.Context, symbol string) (float64, error)
}
