package market

import (
	"sort"
	"sync"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// CandleStore keeps the last N closed candles for one timeframe, ordered by
// start time ascending. The live path appends in order; the backfill path may
// insert out of order and runs on its own goroutine, hence the mutex.
type CandleStore struct {
	mu      sync.Mutex
	candles []model.Candle
	depth   int
}

// NewCandleStore creates a store bounded to depth candles.
func NewCandleStore(depth int) *CandleStore {
	return &CandleStore{depth: depth}
}

// Append adds a live closed candle, evicting the oldest beyond capacity.
func (s *CandleStore) Append(c model.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.candles = append(s.candles, c)
	if len(s.candles) > s.depth {
		s.candles = s.candles[len(s.candles)-s.depth:]
	}
}

// AddHistorical inserts a backfilled candle. Duplicate start times are
// dropped, order is restored by re-sorting, and the bound is re-applied.
// Candles already delivered live keep their relative order.
func (s *CandleStore) AddHistorical(c model.Candle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.candles {
		if existing.StartTime.Equal(c.StartTime) {
			return
		}
	}

	s.candles = append(s.candles, c)
	sort.Slice(s.candles, func(i, j int) bool {
		return s.candles[i].StartTime.Before(s.candles[j].StartTime)
	})
	if len(s.candles) > s.depth {
		s.candles = s.candles[len(s.candles)-s.depth:]
	}
}

// Candles returns a copy of the stored candles, oldest first.
func (s *CandleStore) Candles() []model.Candle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Candle, len(s.candles))
	copy(out, s.candles)
	return out
}

// Last returns the most recent closed candle, if any.
func (s *CandleStore) Last() (model.Candle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.candles) == 0 {
		return model.Candle{}, false
	}
	return s.candles[len(s.candles)-1], true
}

// Len returns the number of stored candles.
func (s *CandleStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.candles)
}
