package strategy

import "github.com/RizzyDope/paper-trading-bot/internal/model"

// EvaluateBias advances the higher-timeframe bias state machine. The window's
// last element is reserved for the forming candle and excluded; the decision
// uses the two most recent closed candles. With fewer than 3 candles there is
// no information, so the previous bias is returned unchanged.
//
// Continuation keeps or establishes a direction; invalidation flips directly
// to the opposite bias; anything else from a directional state decays to
// NEUTRAL. The asymmetry is deliberate: invalidation is only checked against
// the opposite direction.
func EvaluateBias(candles []model.Candle, previous model.Bias) model.Bias {
	if len(candles) < 3 {
		return previous
	}

	last := candles[len(candles)-2]
	prev := candles[len(candles)-3]

	bullCont := last.High > prev.High && last.Close > prev.Close
	bearCont := last.Low < prev.Low && last.Close < prev.Close

	bearInvalidation := last.Close < prev.Open && last.Low < prev.Low
	bullInvalidation := last.Close > prev.Open && last.High > prev.High

	switch previous {
	case model.BiasBullish:
		if bullCont {
			return model.BiasBullish
		}
		if bearInvalidation {
			return model.BiasBearish
		}
		return model.BiasNeutral
	case model.BiasBearish:
		if bearCont {
			return model.BiasBearish
		}
		if bullInvalidation {
			return model.BiasBullish
		}
		return model.BiasNeutral
	default:
		if bullCont {
			return model.BiasBullish
		}
		if bearCont {
			return model.BiasBearish
		}
		return model.BiasNeutral
	}
}
