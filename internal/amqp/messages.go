package amqp

import (
	"encoding/json"
	"time"
)

// Ledger event names published after reducer transitions.
const (
	EventIncomeAdded         = "income_added"
	EventDirectIncomeAdded   = "direct_income_added"
	EventWithdrawalAdded     = "withdrawal_added"
	EventTransactionReversed = "transaction_reversed"
	EventBackupImported      = "backup_imported"
)

// LedgerEventMessage notifies external consumers (dashboards, notification
// bots) that the ledger changed. It carries only identifiers and the new
// total; consumers read full state from the API.
type LedgerEventMessage struct {
	Event         string    `json:"event"`
	TransactionID string    `json:"transaction_id,omitempty"`
	TotalCents    int64     `json:"total_cents"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates a message stamped with the current time.
func NewLedgerEventMessage(event, transactionID string, totalCents int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Event:         event,
		TransactionID: transactionID,
		TotalCents:    totalCents,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
