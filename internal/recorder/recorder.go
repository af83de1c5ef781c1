package recorder

import "github.com/RizzyDope/paper-trading-bot/internal/model"

// DailySummary is the rollover snapshot persisted once per UTC day.
type DailySummary struct {
	Date        string // YYYY-MM-DD, UTC
	TotalTrades int
	Wins        int
	Losses      int
	NetPnl      float64
	AvgR        float64
	Equity      float64
	Rejections  int
}

// Recorder persists trade history for analysis. Recorder failures are logged
// by callers and never interrupt the trading path.
type Recorder interface {
	RecordTrade(rec model.TradeRecord) error
	RecordDailySummary(sum DailySummary) error
	Close() error
}
