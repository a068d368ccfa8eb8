package expense

import (
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AggregateTypeAdminExpense is the aggregate type name carried by expense events
const AggregateTypeAdminExpense = "AdminExpense"

// Event type names
const (
	EventTypeAdminExpenseCreated = "AdminExpenseCreated"
	EventTypeDistributionSettled = "DistributionSettled"
	EventTypeAdminExpenseSettled = "AdminExpenseSettled"
)

// AdminExpenseCreatedEvent is raised when an expense and its distributions are created
type AdminExpenseCreatedEvent struct {
	shared.BaseDomainEvent
	ExpenseID uuid.UUID       `json:"expense_id"`
	Concept   string          `json:"concept"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	PaidBy    PaidBy          `json:"paid_by"`
	ClientIDs []uuid.UUID     `json:"client_ids"`
}

// NewAdminExpenseCreatedEvent creates a new AdminExpenseCreatedEvent
func NewAdminExpenseCreatedEvent(e *AdminExpense) *AdminExpenseCreatedEvent {
	clientIDs := make([]uuid.UUID, 0, len(e.Distributions))
	for _, d := range e.Distributions {
		clientIDs = append(clientIDs, d.ClientID)
	}
	return &AdminExpenseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminExpenseCreated, AggregateTypeAdminExpense, e.ID),
		ExpenseID:       e.ID,
		Concept:         e.Concept,
		Amount:          e.Amount,
		Date:            e.Date,
		PaidBy:          e.PaidBy,
		ClientIDs:       clientIDs,
	}
}

// DistributionSettledEvent is raised for every distribution that moves to paid
type DistributionSettledEvent struct {
	shared.BaseDomainEvent
	ExpenseID      uuid.UUID       `json:"expense_id"`
	DistributionID uuid.UUID       `json:"distribution_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	Amount         decimal.Decimal `json:"amount"`
	Concept        string          `json:"concept"`
	PaidAt         time.Time       `json:"paid_at"`
}

// NewDistributionSettledEvent creates a new DistributionSettledEvent
func NewDistributionSettledEvent(e *AdminExpense, d *ExpenseDistribution) *DistributionSettledEvent {
	paidAt := time.Now()
	if d.PaidAt != nil {
		paidAt = *d.PaidAt
	}
	return &DistributionSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDistributionSettled, AggregateTypeAdminExpense, e.ID),
		ExpenseID:       e.ID,
		DistributionID:  d.ID,
		ClientID:        d.ClientID,
		Amount:          d.Amount,
		Concept:         e.Concept,
		PaidAt:          paidAt,
	}
}

// AdminExpenseSettledEvent is raised when the last pending distribution is paid
type AdminExpenseSettledEvent struct {
	shared.BaseDomainEvent
	ExpenseID uuid.UUID       `json:"expense_id"`
	Concept   string          `json:"concept"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
}

// NewAdminExpenseSettledEvent creates a new AdminExpenseSettledEvent
func NewAdminExpenseSettledEvent(e *AdminExpense) *AdminExpenseSettledEvent {
	paidAt := time.Now()
	if e.PaidAt != nil {
		paidAt = *e.PaidAt
	}
	return &AdminExpenseSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAdminExpenseSettled, AggregateTypeAdminExpense, e.ID),
		ExpenseID:       e.ID,
		Concept:         e.Concept,
		Amount:          e.Amount,
		PaidAt:          paidAt,
	}
}
