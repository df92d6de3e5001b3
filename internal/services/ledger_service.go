// Package services orchestrates the ledger: it owns the single in-memory
// state, runs reducer actions against it, persists the result and publishes
// change events.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"jarras/internal/amqp"
	"jarras/internal/backup"
	"jarras/internal/core"
	"jarras/internal/log"
)

// Store persists ledger states. Save errors are logged, not surfaced:
// persistence is a fire-and-forget side effect of each transition and a
// crash in between loses at most the latest action.
type Store interface {
	Save(ctx context.Context, state core.State) error
}

// EventPublisher notifies external consumers about ledger changes.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event, transactionID string, totalCents int64) error
}

// LedgerService is the single writer of the ledger. All mutations go
// through apply, which serializes callers, so reducer transitions are
// atomic from the outside.
type LedgerService struct {
	mu        sync.Mutex
	state     core.State
	reducer   *core.Reducer
	store     Store
	publisher EventPublisher // nil when AMQP is not configured
	now       func() time.Time
}

func NewLedgerService(initial core.State, store Store, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		state:     initial,
		reducer:   core.NewReducer(),
		store:     store,
		publisher: publisher,
		now:       time.Now,
	}
}

// State returns a copy of the current ledger state for reading.
func (s *LedgerService) State() core.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// AddIncome applies a distributed income across all jars.
func (s *LedgerService) AddIncome(ctx context.Context, amount core.Money, description string) (core.State, error) {
	return s.apply(ctx, core.DistributedIncome{Amount: amount, Description: description}, amqp.EventIncomeAdded)
}

// AddDirectIncome credits an amount to a single jar.
func (s *LedgerService) AddDirectIncome(ctx context.Context, amount core.Money, description string, jar core.Jar) (core.State, error) {
	return s.apply(ctx, core.DirectIncome{Amount: amount, Description: description, Jar: jar}, amqp.EventDirectIncomeAdded)
}

// Withdraw debits an amount from a single jar.
func (s *LedgerService) Withdraw(ctx context.Context, amount core.Money, description string, jar core.Jar) (core.State, error) {
	return s.apply(ctx, core.Withdrawal{Amount: amount, Description: description, Jar: jar}, amqp.EventWithdrawalAdded)
}

// DeleteTransaction reverses a transaction by id. Unknown ids are a no-op.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (core.State, error) {
	return s.apply(ctx, core.ReverseTransaction{ID: id}, amqp.EventTransactionReversed)
}

// SetTheme switches the UI preference.
func (s *LedgerService) SetTheme(ctx context.Context, theme core.Theme) (core.State, error) {
	return s.apply(ctx, core.SetTheme{Theme: theme}, "")
}

// ExportBackup wraps the current state into a snapshot.
func (s *LedgerService) ExportBackup() backup.Snapshot {
	return backup.Export(s.State(), s.now())
}

// ImportBackup replaces the ledger with a parsed snapshot, preserving the
// current theme preference.
func (s *LedgerService) ImportBackup(ctx context.Context, snap backup.Snapshot) (core.State, error) {
	return s.apply(ctx, snap.Action(), amqp.EventBackupImported)
}

func (s *LedgerService) apply(ctx context.Context, action core.Action, event string) (core.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// transaction id for the event payload; a reversal of an unknown id is
	// a silent no-op and publishes nothing
	transactionID := ""
	if rv, ok := action.(core.ReverseTransaction); ok {
		if _, found := s.state.FindTransaction(rv.ID); !found {
			event = ""
		}
		transactionID = rv.ID
	}

	next, err := s.reducer.Apply(s.state, action)
	if err != nil {
		return core.State{}, fmt.Errorf("apply %T: %w", action, err)
	}
	s.state = next

	if transactionID == "" {
		transactionID = headID(next)
	}

	if err := s.store.Save(ctx, next); err != nil {
		slog.ErrorContext(ctx, "Failed to persist ledger state",
			log.FieldComponent, log.ComponentLedger,
			log.FieldOperation, log.OpSave,
			log.FieldError, err)
		// state is already applied in memory; the next successful save
		// catches up
	}

	if event != "" {
		s.publish(ctx, event, transactionID, next.TotalBalance().Cents)
	}

	return next.Clone(), nil
}

func (s *LedgerService) publish(ctx context.Context, event, transactionID string, totalCents int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, event, transactionID, totalCents); err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			log.FieldComponent, log.ComponentLedger,
			log.FieldEvent, event,
			log.FieldError, err)
	}
}

func headID(s core.State) string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[0].ID
}
