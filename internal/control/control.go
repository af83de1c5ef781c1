package control

import "sync"

// TradeControl is the shared entries-enabled toggle. One instance is
// constructed at startup and passed by reference into every decision path and
// the command surface; pausing downgrades entries to HOLD but never touches
// stop/target management of open positions.
type TradeControl struct {
	mu      sync.Mutex
	enabled bool
}

// New creates an enabled toggle.
func New() *TradeControl {
	return &TradeControl{enabled: true}
}

// Enabled reports whether new entries are allowed.
func (t *TradeControl) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Pause disables new entries.
func (t *TradeControl) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = false
}

// Resume re-enables new entries.
func (t *TradeControl) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = true
}
