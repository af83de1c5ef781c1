package market

import (
	"log"
	"sync"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

const (
	entryHaltSilence = 60 * time.Second
	dangerSilence    = 10 * time.Minute
)

// FeedHealth classifies quote staleness into operating modes. Entries are
// suppressed after a minute of silence; after ten minutes the whole decision
// path freezes. The clock is injectable so silence episodes are testable.
type FeedHealth struct {
	mu            sync.Mutex
	now           func() time.Time
	lastTickAt    time.Time
	dangerEmitted bool
}

// NewFeedHealth creates a monitor. A nil clock uses time.Now.
func NewFeedHealth(now func() time.Time) *FeedHealth {
	if now == nil {
		now = time.Now
	}
	return &FeedHealth{now: now, lastTickAt: now()}
}

// RecordTick marks the feed alive and re-arms the danger log for the next
// silence episode.
func (f *FeedHealth) RecordTick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastTickAt = f.now()
	f.dangerEmitted = false
}

// Status returns the current operating mode. DANGER is logged once per
// silence episode.
func (f *FeedHealth) Status() model.FeedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()

	downtime := f.now().Sub(f.lastTickAt)

	if downtime >= dangerSilence {
		if !f.dangerEmitted {
			log.Printf("[ERROR] feed danger - price feed down for %v", downtime.Round(time.Second))
			f.dangerEmitted = true
		}
		return model.FeedDanger
	}
	if downtime >= entryHaltSilence {
		return model.FeedHaltEntries
	}
	return model.FeedOK
}
