package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRecorded is emitted after a deposit or withdrawal has been
// committed to the store.
type TransactionRecorded struct {
	TransactionID    uuid.UUID       `json:"transaction_id"`
	AccountNumber    uuid.UUID       `json:"account_number"`
	Type             string          `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	ResultingBalance decimal.Decimal `json:"resulting_balance"`
	OccurredAt       time.Time       `json:"occurred_at"`
}

// Publisher delivers ledger events to interested consumers. Publishing is
// best-effort; the ledger never fails an operation over a publish error.
type Publisher interface {
	Publish(topic string, event any) error
}

// NopPublisher discards every event. It is the default when no broker is
// configured.
type NopPublisher struct{}

func (NopPublisher) Publish(topic string, event any) error { return nil }
