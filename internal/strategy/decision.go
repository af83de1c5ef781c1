package strategy

import "github.com/RizzyDope/paper-trading-bot/internal/model"

// DecisionInput bundles the state the gate combines.
type DecisionInput struct {
	Bias            model.Bias
	Structure       model.Structure
	Entry           model.EntrySignal
	HasOpenPosition bool
	RiskAllowed     bool
}

// Decide maps market state, position status and risk permission to an action.
// Pure and deterministic; callers layer additional vetoes (trading hours,
// manual pause) by downgrading the result to HOLD.
func Decide(in DecisionInput) model.Decision {
	if !in.RiskAllowed {
		return model.DecisionHold
	}
	if in.HasOpenPosition {
		return model.DecisionHold
	}

	switch in.Entry {
	case model.EntryLong:
		return model.DecisionEnterLong
	case model.EntryShort:
		return model.DecisionEnterShort
	default:
		return model.DecisionHold
	}
}
