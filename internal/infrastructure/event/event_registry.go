package event

import (
	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
)

// NewDomainSerializer returns a serializer that knows every finops event
func NewDomainSerializer() *EventSerializer {
	s := NewEventSerializer()
	RegisterAllEvents(s)
	return s
}

// RegisterAllEvents registers all domain event types with the serializer
func RegisterAllEvents(serializer *EventSerializer) {
	serializer.Register(expense.EventTypeAdminExpenseCreated, &expense.AdminExpenseCreatedEvent{})
	serializer.Register(expense.EventTypeDistributionSettled, &expense.DistributionSettledEvent{})
	serializer.Register(expense.EventTypeAdminExpenseSettled, &expense.AdminExpenseSettledEvent{})

	serializer.Register(ledger.EventTypeTransactionRecorded, &ledger.TransactionRecordedEvent{})
}
