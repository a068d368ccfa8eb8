package expense

import (
	"context"
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for expense queries
type Filter struct {
	shared.Filter
	Status   *Status
	PaidBy   *PaidBy
	ClientID *uuid.UUID // expenses with a distribution for this client
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository persists AdminExpense aggregates together with their distributions
type Repository interface {
	// FindByID loads an expense with all of its distributions
	FindByID(ctx context.Context, id uuid.UUID) (*AdminExpense, error)

	// FindAll lists expenses with their distributions
	FindAll(ctx context.Context, filter Filter) ([]AdminExpense, error)

	// Count counts expenses matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// FindDistributions loads the distributions of one expense
	FindDistributions(ctx context.Context, expenseID uuid.UUID) ([]ExpenseDistribution, error)

	// Save inserts or updates the expense row only
	Save(ctx context.Context, expense *AdminExpense) error

	// SaveWithLock updates the expense row only if its stored version is
	// the one the aggregate was loaded with
	SaveWithLock(ctx context.Context, expense *AdminExpense) error

	// SaveDistributions inserts or updates the given distributions
	SaveDistributions(ctx context.Context, distributions []ExpenseDistribution) error
}
