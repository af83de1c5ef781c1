package strategy

import "github.com/RizzyDope/paper-trading-bot/internal/model"

// Strong-candle thresholds relative to ATR. Tuned values, kept as behavioral
// contracts.
const (
	strongBodyATR  = 0.25
	strongRangeATR = 0.45
)

// EvaluateStructure classifies the mid-timeframe trend shape from the last 3
// closed candles. Stateless: recomputed from scratch each call. The window's
// last element is reserved for the forming candle and excluded; fewer than 4
// candles or an undefined ATR yields RANGE.
func EvaluateStructure(candles []model.Candle, atr float64, atrOK bool) model.Structure {
	if len(candles) < 4 || !atrOK {
		return model.StructureRange
	}

	closed := candles[:len(candles)-1]
	c1 := closed[len(closed)-3]
	c2 := closed[len(closed)-2]
	c3 := closed[len(closed)-1]

	strongCount := 0
	for _, c := range []model.Candle{c1, c2, c3} {
		if c.Body() >= strongBodyATR*atr && c.Range() >= strongRangeATR*atr {
			strongCount++
		}
	}
	if strongCount < 2 {
		return model.StructureRange
	}

	bearish := c3.High < c2.High && c2.High < c1.High &&
		c3.Low < c2.Low && c2.Low < c1.Low
	if bearish {
		return model.StructureBearish
	}

	bullish := c3.High > c2.High && c2.High > c1.High &&
		c3.Low > c2.Low && c2.Low > c1.Low
	if bullish {
		return model.StructureBullish
	}

	return model.StructureRange
}
