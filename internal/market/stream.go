package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

const reconnectDelay = 5 * time.Second

// TickFunc receives each normalized top-of-book quote.
type TickFunc func(tick model.Tick)

// PriceStream subscribes to the bybit v5 public linear orderbook stream and
// delivers top-of-book ticks. On disconnect it reconnects after a fixed delay
// and resubscribes; gap detection downstream covers anything missed.
type PriceStream struct {
	url     string
	symbols []string
	health  *FeedHealth
	onTick  TickFunc
}

// NewPriceStream creates a stream client for the given symbols.
func NewPriceStream(url string, symbols []string, health *FeedHealth, onTick TickFunc) *PriceStream {
	return &PriceStream{
		url:     url,
		symbols: symbols,
		health:  health,
		onTick:  onTick,
	}
}

type orderbookMessage struct {
	Topic string `json:"topic"`
	TS    int64  `json:"ts"`
	Data  struct {
		Bids [][]string `json:"b"`
		Asks [][]string `json:"a"`
	} `json:"data"`
}

// Run connects and consumes until ctx is cancelled. Blocks.
func (p *PriceStream) Run(ctx context.Context) {
	for {
		if err := p.connectAndConsume(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("[INFO] price stream stopped")
				return
			}
			log.Printf("[WARN] price stream disconnected: %v, reconnecting in %v", err, reconnectDelay)
		}
		select {
		case <-ctx.Done():
			log.Println("[INFO] price stream stopped")
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (p *PriceStream) connectAndConsume(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	args := make([]string, len(p.symbols))
	for i, s := range p.symbols {
		args[i] = "orderbook.1." + s
	}
	sub := map[string]any{"op": "subscribe", "args": args}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	log.Printf("[INFO] connected to price stream, subscribed: %s", strings.Join(p.symbols, ", "))

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	tickCount := 0
	lastAliveLog := time.Now()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg orderbookMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if !strings.HasPrefix(msg.Topic, "orderbook.1.") {
			continue
		}
		if len(msg.Data.Bids) == 0 || len(msg.Data.Asks) == 0 {
			continue
		}

		bid, errB := strconv.ParseFloat(msg.Data.Bids[0][0], 64)
		ask, errA := strconv.ParseFloat(msg.Data.Asks[0][0], 64)
		if errB != nil || errA != nil {
			continue
		}

		ts := time.Now()
		if msg.TS > 0 {
			ts = time.UnixMilli(msg.TS)
		}

		tickCount++
		if time.Since(lastAliveLog) >= time.Minute {
			log.Printf("[INFO] price stream alive - %d updates", tickCount)
			lastAliveLog = time.Now()
		}

		p.health.RecordTick()
		p.onTick(model.Tick{
			Symbol:    strings.TrimPrefix(msg.Topic, "orderbook.1."),
			Bid:       bid,
			Ask:       ask,
			Timestamp: ts,
		})
	}
}
