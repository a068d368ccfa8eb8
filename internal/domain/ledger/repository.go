package ledger

import (
	"context"
	"time"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Filter defines filtering options for ledger queries
type Filter struct {
	shared.Filter
	ClientID *uuid.UUID
	Type     *TransactionType
	Category *Category
	FromDate *time.Time
	ToDate   *time.Time
}

// Repository persists ledger transactions. Rows are append-only.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindAll(ctx context.Context, filter Filter) ([]Transaction, error)
	Count(ctx context.Context, filter Filter) (int64, error)

	// FindByExpense returns the settlement rows produced by one expense
	FindByExpense(ctx context.Context, expenseID uuid.UUID) ([]Transaction, error)

	// ExistsForDistribution reports whether a settlement row already exists
	ExistsForDistribution(ctx context.Context, distributionID uuid.UUID) (bool, error)

	// TotalsForClient sums a client's transactions by type
	TotalsForClient(ctx context.Context, clientID uuid.UUID) (Totals, error)

	// Save appends a transaction
	Save(ctx context.Context, tx *Transaction) error

	// SaveBatch appends several transactions in one statement
	SaveBatch(ctx context.Context, txs []*Transaction) error
}
