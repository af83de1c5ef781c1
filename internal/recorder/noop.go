package recorder

import "github.com/RizzyDope/paper-trading-bot/internal/model"

// NoopRecorder discards everything. Used when no database is configured or
// the sqlite recorder fails to open.
type NoopRecorder struct{}

// NewNoopRecorder creates a recorder that does nothing.
func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordTrade(model.TradeRecord) error   { return nil }
func (n *NoopRecorder) RecordDailySummary(DailySummary) error { return nil }
func (n *NoopRecorder) Close() error                          { return nil }
