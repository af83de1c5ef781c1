package model

import "time"

// Side is the direction of a position or order.
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Opposite returns the closing direction.
func (s Side) Opposite() Side {
	if s == SideLong {
		return SideShort
	}
	return SideLong
}

// CloseReason explains why a position was closed.
type CloseReason string

const (
	CloseStopLoss   CloseReason = "STOP_LOSS"
	CloseTakeProfit CloseReason = "TAKE_PROFIT"
	CloseManual     CloseReason = "MANUAL"
)

// Position is the local record of an open position. Created only by a
// confirmed open fill, destroyed only by a confirmed close fill. A position
// restored by resync carries zero stop/target and is unmanaged until flat.
type Position struct {
	Symbol          string
	Side            Side
	EntryPrice      float64
	StopPrice       float64
	TakeProfitPrice float64
	Size            float64
	OpenedAt        time.Time
	RiskAmount      float64
}

// Managed reports whether the position has stop/target levels to enforce.
// Resynced positions don't: exchange truth carries no local stop knowledge.
func (p *Position) Managed() bool {
	return p.StopPrice != 0 && p.TakeProfitPrice != 0
}

// TradeRecord is one completed round trip.
type TradeRecord struct {
	Symbol      string
	Side        Side
	Entry       float64
	Exit        float64
	Pnl         float64
	RMultiple   float64
	Result      string // WIN or LOSS
	Reason      CloseReason
	Duration    time.Duration
	ClosedAt    time.Time
	EquityAfter float64
}
