package market

import (
	"log"
	"time"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// CloseFunc receives a candle the moment its bucket boundary passes.
type CloseFunc func(candle model.Candle)

// GapFunc receives the bucket bounds of a detected gap so missing candles can
// be backfilled. It is invoked fire-and-forget, before the close callback.
type GapFunc func(lastBucketStart, newBucketStart time.Time)

// CandleBuilder folds a price stream into fixed-width OHLC candles for one
// timeframe. Not safe for concurrent use; the tick path is serialized per
// symbol.
type CandleBuilder struct {
	timeframe time.Duration
	onClose   CloseFunc
	onGap     GapFunc

	current    *model.Candle
	lastBucket time.Time
}

// NewCandleBuilder creates a builder for the given timeframe. onGap may be nil.
func NewCandleBuilder(timeframe time.Duration, onClose CloseFunc, onGap GapFunc) *CandleBuilder {
	return &CandleBuilder{
		timeframe: timeframe,
		onClose:   onClose,
		onGap:     onGap,
	}
}

// OnPrice updates the in-progress candle. When the timestamp crosses a bucket
// boundary the current candle closes and a new one starts seeded with the
// price. The very first tick seeds without emitting a close.
func (b *CandleBuilder) OnPrice(price float64, ts time.Time) {
	bucket := ts.Truncate(b.timeframe)

	if b.current == nil {
		b.current = seedCandle(bucket, price)
		b.lastBucket = bucket
		return
	}

	if bucket.Equal(b.current.StartTime) {
		if price > b.current.High {
			b.current.High = price
		}
		if price < b.current.Low {
			b.current.Low = price
		}
		b.current.Close = price
		return
	}

	// Gap check before the close, so backfill can start while the pipeline
	// keeps moving.
	gap := bucket.Sub(b.lastBucket)
	if float64(gap) > float64(b.timeframe)*1.5 && b.onGap != nil {
		log.Printf("[WARN] missing candles detected: %s -> %s",
			b.lastBucket.UTC().Format(time.RFC3339), bucket.UTC().Format(time.RFC3339))
		go b.onGap(b.lastBucket, bucket)
	}

	closed := *b.current
	b.current = seedCandle(bucket, price)
	b.lastBucket = bucket
	b.onClose(closed)
}

func seedCandle(bucket time.Time, price float64) *model.Candle {
	return &model.Candle{
		StartTime: bucket,
		Open:      price,
		High:      price,
		Low:       price,
		Close:     price,
	}
}
