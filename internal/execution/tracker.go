package execution

import "sync"

// Internal rejection reasons.
const (
	RejectUnstableFeed     = "UNSTABLE_FEED"
	RejectOutsideHours     = "OUTSIDE_TRADING_HOURS"
	RejectPaused           = "PAUSED_VIA_TELEGRAM"
	RejectZeroPositionSize = "ZERO_POSITION_SIZE"
	RejectTransportFailure = "TRANSPORT_FAILURE"
)

// RejectionLedger counts refused order attempts, keyed by exchange error
// code and by internal rejection reason. Purely for reporting; reset once per
// UTC day at rollover.
type RejectionLedger struct {
	mu       sync.Mutex
	exchange map[string]*exchangeReject
	internal map[string]int
}

type exchangeReject struct {
	count   int
	message string
}

// ExchangeRejectEntry is one exchange error code with its count.
type ExchangeRejectEntry struct {
	Code    string
	Message string
	Count   int
}

// InternalRejectEntry is one internal reason with its count.
type InternalRejectEntry struct {
	Reason string
	Count  int
}

// RejectionSummary aggregates the ledger for reporting.
type RejectionSummary struct {
	TotalRejects     int
	ExchangeTotal    int
	TopExchangeIssue *ExchangeRejectEntry
	Exchange         []ExchangeRejectEntry
	InternalTotal    int
	Internal         []InternalRejectEntry
}

// NewRejectionLedger creates an empty ledger.
func NewRejectionLedger() *RejectionLedger {
	return &RejectionLedger{
		exchange: make(map[string]*exchangeReject),
		internal: make(map[string]int),
	}
}

// RecordExchangeReject counts an exchange refusal by error code.
func (l *RejectionLedger) RecordExchangeReject(code, message string) {
	if code == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.exchange[code]
	if !ok {
		entry = &exchangeReject{message: message}
		l.exchange[code] = entry
	}
	entry.count++
}

// RecordInternalReject counts an internally vetoed entry by reason.
func (l *RejectionLedger) RecordInternalReject(reason string) {
	if reason == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.internal[reason]++
}

// Summary returns totals, per-code and per-reason breakdowns, and the most
// frequent exchange issue if any.
func (l *RejectionLedger) Summary() RejectionSummary {
	l.mu.Lock()
	defer l.mu.Unlock()

	sum := RejectionSummary{}
	for code, e := range l.exchange {
		sum.ExchangeTotal += e.count
		sum.Exchange = append(sum.Exchange, ExchangeRejectEntry{Code: code, Message: e.message, Count: e.count})
		if sum.TopExchangeIssue == nil || e.count > sum.TopExchangeIssue.Count {
			sum.TopExchangeIssue = &ExchangeRejectEntry{Code: code, Message: e.message, Count: e.count}
		}
	}
	for reason, count := range l.internal {
		sum.InternalTotal += count
		sum.Internal = append(sum.Internal, InternalRejectEntry{Reason: reason, Count: count})
	}
	sum.TotalRejects = sum.ExchangeTotal + sum.InternalTotal
	return sum
}

// Reset clears all counters. Called at the daily rollover.
func (l *RejectionLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exchange = make(map[string]*exchangeReject)
	l.internal = make(map[string]int)
}
