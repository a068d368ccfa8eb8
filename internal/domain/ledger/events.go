package ledger

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeTransaction is the aggregate type name carried by ledger events
const AggregateTypeTransaction = "LedgerTransaction"

// EventTypeTransactionRecorded is raised for every new ledger row
const EventTypeTransactionRecorded = "LedgerTransactionRecorded"

// TransactionRecordedEvent is raised when a transaction is appended to the ledger
type TransactionRecordedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	ClientID      uuid.UUID       `json:"client_id"`
	Type          TransactionType `json:"type"`
	Category      Category        `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
}

// NewTransactionRecordedEvent creates a new TransactionRecordedEvent
func NewTransactionRecordedEvent(t *Transaction) *TransactionRecordedEvent {
	return &TransactionRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionRecorded, AggregateTypeTransaction, t.ID),
		TransactionID:   t.ID,
		ClientID:        t.ClientID,
		Type:            t.Type,
		Category:        t.Category,
		Amount:          t.Amount,
		Date:            t.Date,
	}
}
