package notifier

import (
	"context"
	"log"

	"github.com/RizzyDope/paper-trading-bot/internal/model"
)

// Pusher forwards trade lifecycle events to Telegram. It satisfies the order
// manager's observer interface.
type Pusher struct {
	notifier *TelegramNotifier
	ctx      context.Context
}

// NewPusher creates a trade event pusher.
func NewPusher(ctx context.Context, tn *TelegramNotifier) *Pusher {
	return &Pusher{notifier: tn, ctx: ctx}
}

// TradeOpened pushes a position-open notification.
func (p *Pusher) TradeOpened(pos model.Position) {
	if err := p.notifier.SendWithRetry(p.ctx, FormatTradeOpened(pos), 3); err != nil {
		log.Printf("[ERROR] push trade opened: %v", err)
	}
}

// TradeClosed pushes a position-close notification.
func (p *Pusher) TradeClosed(rec model.TradeRecord, equity float64) {
	if err := p.notifier.SendWithRetry(p.ctx, FormatTradeClosed(rec, equity), 3); err != nil {
		log.Printf("[ERROR] push trade closed: %v", err)
	}
}
