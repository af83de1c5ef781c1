package strategy

import (
	"math"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// DefaultATRPeriod is the rolling window used across all timeframes.
const DefaultATRPeriod = 14

// ATR computes the average true range over the trailing period candles.
// Requires at least period+1 candles; ok is false otherwise and callers must
// suppress any dependent decision rather than treating the value as zero.
func ATR(candles []model.Candle, period int) (float64, bool) {
	if period <= 0 || len(candles) < period+1 {
		return 0, false
	}

	sum := 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		c := candles[i]
		prev := candles[i-1]
		tr := math.Max(c.High-c.Low,
			math.Max(math.Abs(c.High-prev.Close), math.Abs(c.Low-prev.Close)))
		sum += tr
	}
	return sum / float64(period), true
}
