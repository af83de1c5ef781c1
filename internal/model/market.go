package model

import "time"

// Tick is a single top-of-book quote. Ticks are ephemeral: they are folded
// into candles via the midpoint and checked raw against stop/target levels,
// but never stored.
type Tick struct {
	Symbol    string
	Bid       float64
	Ask       float64
	Timestamp time.Time
}

// Mid returns the bid/ask midpoint used for candle aggregation.
func (t Tick) Mid() float64 {
	return (t.Bid + t.Ask) / 2
}

// Candle is one OHLC bucket of a fixed timeframe. Immutable once closed.
type Candle struct {
	StartTime time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// Body returns the absolute open-to-close distance.
func (c Candle) Body() float64 {
	if c.Close >= c.Open {
		return c.Close - c.Open
	}
	return c.Open - c.Close
}

// Range returns the high-to-low distance.
func (c Candle) Range() float64 {
	return c.High - c.Low
}
