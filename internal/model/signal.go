package model

// Bias is the higher-timeframe directional state. It is stateful: the next
// value depends on the current one, not only on the candles.
type Bias string

const (
	BiasBullish Bias = "BULLISH"
	BiasBearish Bias = "BEARISH"
	BiasNeutral Bias = "NEUTRAL"
)

// Structure is the mid-timeframe trend-shape classification, recomputed
// fresh on every evaluation.
type Structure string

const (
	StructureBullish Structure = "BULLISH_STRUCTURE"
	StructureBearish Structure = "BEARISH_STRUCTURE"
	StructureRange   Structure = "RANGE"
)

// EntrySignal is the 1m entry evaluator output.
type EntrySignal string

const (
	EntryNone  EntrySignal = ""
	EntryLong  EntrySignal = "LONG_ENTRY"
	EntryShort EntrySignal = "SHORT_ENTRY"
)

// Decision is the output of the decision gate.
type Decision string

const (
	DecisionHold       Decision = "HOLD"
	DecisionEnterLong  Decision = "ENTER_LONG"
	DecisionEnterShort Decision = "ENTER_SHORT"
)

// FeedStatus classifies quote staleness into operating modes.
type FeedStatus string

const (
	FeedOK          FeedStatus = "OK"
	FeedHaltEntries FeedStatus = "HALT_ENTRIES"
	FeedDanger      FeedStatus = "DANGER"
)
