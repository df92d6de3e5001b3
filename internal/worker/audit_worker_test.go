package worker

import (
	"testing"
	"time"

	"jarras/internal/amqp"
)

func TestHandleLedgerEventCounts(t *testing.T) {
	w := NewAuditWorker()

	events := []string{
		amqp.EventIncomeAdded,
		amqp.EventIncomeAdded,
		amqp.EventWithdrawalAdded,
		amqp.EventBackupImported,
	}
	for i, ev := range events {
		msg := &amqp.LedgerEventMessage{
			Event:      ev,
			TotalCents: int64((i + 1) * 1000),
			Timestamp:  time.Now(),
		}
		if err := w.HandleLedgerEvent(msg); err != nil {
			t.Fatalf("HandleLedgerEvent(%s) error: %v", ev, err)
		}
	}

	counts, lastTotal, seen := w.Stats()
	if seen != 4 {
		t.Fatalf("seen = %d, want 4", seen)
	}
	if counts[amqp.EventIncomeAdded] != 2 {
		t.Fatalf("income_added count = %d, want 2", counts[amqp.EventIncomeAdded])
	}
	if counts[amqp.EventWithdrawalAdded] != 1 {
		t.Fatalf("withdrawal_added count = %d, want 1", counts[amqp.EventWithdrawalAdded])
	}
	if lastTotal != 4000 {
		t.Fatalf("lastTotalCents = %d, want 4000", lastTotal)
	}
}

func TestHandleLedgerEventRejectsUnknown(t *testing.T) {
	w := NewAuditWorker()

	err := w.HandleLedgerEvent(&amqp.LedgerEventMessage{Event: "jar_renamed"})
	if err == nil {
		t.Fatal("expected error for unknown event")
	}

	if _, _, seen := w.Stats(); seen != 0 {
		t.Fatalf("seen = %d, want 0 after rejected event", seen)
	}
}
