package expense

import (
	"time"

	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseDistribution is the portion of an AdminExpense allocated to one client
type ExpenseDistribution struct {
	shared.BaseEntity
	ExpenseID  uuid.UUID
	ClientID   uuid.UUID
	Percentage decimal.Decimal
	Amount     decimal.Decimal
	Status     Status
	PaidAt     *time.Time
}

func newDistribution(expenseID, clientID uuid.UUID, percentage, total decimal.Decimal) ExpenseDistribution {
	return ExpenseDistribution{
		BaseEntity: shared.NewBaseEntity(),
		ExpenseID:  expenseID,
		ClientID:   clientID,
		Percentage: percentage,
		Amount:     allocation.ComputeAmount(total, percentage),
		Status:     StatusPending,
	}
}

// IsPaid reports whether the distribution has been settled
func (d *ExpenseDistribution) IsPaid() bool {
	return d.Status == StatusPaid
}

// Share returns the percentage/amount pair of this distribution
func (d *ExpenseDistribution) Share() allocation.Share {
	return allocation.Share{Percentage: d.Percentage, Amount: d.Amount}
}

func (d *ExpenseDistribution) markPaid(at time.Time) {
	d.Status = StatusPaid
	d.PaidAt = &at
	d.UpdatedAt = at
}
