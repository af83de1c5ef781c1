package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

func candleAt(minute int) model.Candle {
	return model.Candle{StartTime: base.Add(time.Duration(minute) * time.Minute), Close: float64(minute)}
}

func TestStoreAppendEvictsOldest(t *testing.T) {
	s := NewCandleStore(3)
	for i := 0; i < 5; i++ {
		s.Append(candleAt(i))
	}

	assert.Equal(t, 3, s.Len())
	candles := s.Candles()
	assert.Equal(t, base.Add(2*time.Minute), candles[0].StartTime)
	assert.Equal(t, base.Add(4*time.Minute), candles[2].StartTime)
}

func TestStoreAddHistoricalSortsAndDedups(t *testing.T) {
	s := NewCandleStore(10)
	s.Append(candleAt(0))
	s.Append(candleAt(3))

	s.AddHistorical(candleAt(2))
	s.AddHistorical(candleAt(1))
	s.AddHistorical(candleAt(2)) // duplicate, dropped

	require.Equal(t, 4, s.Len())
	candles := s.Candles()
	for i := 0; i < 4; i++ {
		assert.Equal(t, base.Add(time.Duration(i)*time.Minute), candles[i].StartTime)
	}
}

func TestStoreAddHistoricalRespectsDepth(t *testing.T) {
	s := NewCandleStore(2)
	s.Append(candleAt(5))
	s.Append(candleAt(6))

	s.AddHistorical(candleAt(1))

	// Oldest falls off; the live candles survive.
	candles := s.Candles()
	require.Len(t, candles, 2)
	assert.Equal(t, base.Add(5*time.Minute), candles[0].StartTime)
	assert.Equal(t, base.Add(6*time.Minute), candles[1].StartTime)
}

func TestStoreLast(t *testing.T) {
	s := NewCandleStore(5)

	_, ok := s.Last()
	assert.False(t, ok)

	s.Append(candleAt(1))
	s.Append(candleAt(2))
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, base.Add(2*time.Minute), last.StartTime)
}

func TestStoreCandlesReturnsCopy(t *testing.T) {
	s := NewCandleStore(5)
	s.Append(candleAt(1))

	out := s.Candles()
	out[0].Close = 999

	fresh := s.Candles()
	assert.Equal(t, 1.0, fresh[0].Close)
}
