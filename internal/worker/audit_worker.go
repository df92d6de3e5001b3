// Package worker consumes ledger events and keeps a running audit trail.
package worker

import (
	"fmt"
	"log/slog"
	"sync"

	"jarras/internal/amqp"
	"jarras/internal/log"
)

// AuditWorker records every ledger event it receives: one structured log
// line per event plus in-memory counters and the last observed total.
type AuditWorker struct {
	mu             sync.Mutex
	counts         map[string]int64
	lastTotalCents int64
	seen           int64
}

func NewAuditWorker() *AuditWorker {
	return &AuditWorker{counts: make(map[string]int64)}
}

// HandleLedgerEvent processes a single event from the queue. Unknown event
// names are rejected so they end up dead-lettered instead of silently
// counted.
func (w *AuditWorker) HandleLedgerEvent(msg *amqp.LedgerEventMessage) error {
	if !knownEvent(msg.Event) {
		return fmt.Errorf("unknown ledger event %q", msg.Event)
	}

	w.mu.Lock()
	w.counts[msg.Event]++
	w.lastTotalCents = msg.TotalCents
	w.seen++
	w.mu.Unlock()

	slog.Info("Ledger event received",
		log.FieldComponent, log.ComponentLedger,
		log.FieldEvent, msg.Event,
		log.FieldTransaction, msg.TransactionID,
		log.FieldTotalCents, msg.TotalCents,
		"timestamp", msg.Timestamp)

	return nil
}

// Stats reports the audit counters accumulated so far.
func (w *AuditWorker) Stats() (counts map[string]int64, lastTotalCents int64, seen int64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	counts = make(map[string]int64, len(w.counts))
	for k, v := range w.counts {
		counts[k] = v
	}
	return counts, w.lastTotalCents, w.seen
}

func knownEvent(event string) bool {
	switch event {
	case amqp.EventIncomeAdded,
		amqp.EventDirectIncomeAdded,
		amqp.EventWithdrawalAdded,
		amqp.EventTransactionReversed,
		amqp.EventBackupImported:
		return true
	}
	return false
}
