package strategy

import (
	"math"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// Pullback/reclaim depth thresholds relative to ATR. Tuned values, kept as
// behavioral contracts.
const (
	pullbackDepthATR = 0.2
	reclaimExcessATR = 0.12
)

// EvaluateEntry checks the three most recent 1m candles for a
// pullback-then-reclaim pattern aligned with bias and structure. Requires at
// least 3 candles and a defined ATR; returns EntryNone otherwise. Long and
// short conditions are mutually exclusive by construction.
func EvaluateEntry(candles []model.Candle, bias model.Bias, structure model.Structure, atr float64, atrOK bool) model.EntrySignal {
	if len(candles) < 3 || !atrOK {
		return model.EntryNone
	}

	c1 := candles[len(candles)-3]
	c2 := candles[len(candles)-2]
	c3 := candles[len(candles)-1]

	if bias == model.BiasBullish && structure == model.StructureBullish {
		pullbackDepth := math.Max(c1.Low-c2.Low, c1.Close-c2.Close)
		reclaimExcess := c3.Close - c2.High
		if pullbackDepth >= pullbackDepthATR*atr && reclaimExcess >= reclaimExcessATR*atr {
			return model.EntryLong
		}
	}

	if bias == model.BiasBearish && structure == model.StructureBearish {
		pullbackDepth := math.Max(c2.High-c1.High, c2.Close-c1.Close)
		breakdownExcess := c2.Low - c3.Close
		if pullbackDepth >= pullbackDepthATR*atr && breakdownExcess >= reclaimExcessATR*atr {
			return model.EntryShort
		}
	}

	return model.EntryNone
}
