package expense

import (
	"context"

	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
)

// TransactionScope runs a unit of work atomically. If fn returns an error,
// or ctx is cancelled before commit, nothing fn wrote is kept.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to the repositories bound to the
// current transaction.
//
// ExpenseRepo covers the AdminExpense aggregate and its distributions.
// LedgerRepo is append-only and receives the settlement rows.
type TransactionalRepositories interface {
	ExpenseRepo() expense.Repository
	LedgerRepo() ledger.Repository
}
