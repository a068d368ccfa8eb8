package expense

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/finops/backend/internal/domain/allocation"
	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var expenseDate = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

type reconcilerFixture struct {
	db         *memDB
	clients    []client.Client
	clientRepo *MockClientRepository
	publisher  *recordingPublisher
	metrics    *countingRecorder
	reconciler *ExpenseReconciler
}

func newFixture(t *testing.T, clientCount int) *reconcilerFixture {
	t.Helper()

	f := &reconcilerFixture{
		db:         newMemDB(),
		clientRepo: new(MockClientRepository),
		publisher:  &recordingPublisher{},
		metrics:    newCountingRecorder(),
	}
	for i := 0; i < clientCount; i++ {
		c, err := client.NewClient("Client "+string(rune('A'+i)), "", "")
		require.NoError(t, err)
		f.clients = append(f.clients, *c)
	}
	f.clientRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(f.clients, nil).Maybe()

	f.reconciler = NewExpenseReconciler(f.db.reader(), f.clientRepo, f.db)
	f.reconciler.SetEventPublisher(f.publisher)
	f.reconciler.SetMetrics(f.metrics)
	f.reconciler.now = func() time.Time { return time.Date(2025, 4, 20, 9, 0, 0, 0, time.UTC) }
	return f
}

func (f *reconcilerFixture) request(concept string, amount int64, percentages ...int64) CreateExpenseRequest {
	req := CreateExpenseRequest{
		Concept: concept,
		Amount:  decimal.NewFromInt(amount),
		Date:    expenseDate,
		PaidBy:  "shared",
	}
	for i, p := range percentages {
		req.Distributions = append(req.Distributions, DistributionRequest{
			ClientID:   f.clients[i].ID,
			Percentage: decimal.NewFromInt(p),
		})
	}
	return req
}

func (f *reconcilerFixture) officeRent(t *testing.T) *ExpenseResponse {
	t.Helper()
	resp, err := f.reconciler.CreateExpense(context.Background(), f.request("Office rent", 1000, 30, 25, 15, 15, 10, 5))
	require.NoError(t, err)
	return resp
}

// ============================================
// CreateExpense
// ============================================

func TestExpenseReconciler_CreateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("office rent split is persisted pending", func(t *testing.T) {
		f := newFixture(t, 6)
		resp := f.officeRent(t)

		assert.Equal(t, "pending", resp.Status)
		want := []int64{300, 250, 150, 150, 100, 50}
		require.Len(t, resp.Distributions, 6)
		for i, d := range resp.Distributions {
			assert.True(t, decimal.NewFromInt(want[i]).Equal(d.Amount), "distribution %d", i)
			assert.Equal(t, "pending", d.Status)
		}

		stored, err := f.reconciler.GetExpense(ctx, resp.ID)
		require.NoError(t, err)
		assert.Len(t, stored.Distributions, 6)
		assert.Equal(t, 1, f.db.expenseCount())
		assert.Equal(t, 6, f.db.distributionCount())
		assert.Empty(t, f.db.ledgerRows(), "creation must not touch the ledger")
		assert.Equal(t, 1, f.publisher.ofType(expense.EventTypeAdminExpenseCreated))
		assert.Equal(t, 1, f.metrics.created)
	})

	t.Run("percentage mismatch is returned before any persistence", func(t *testing.T) {
		f := newFixture(t, 2)

		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 100, 50, 49))
		require.Error(t, err)

		var mismatch *allocation.PercentageMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.True(t, decimal.NewFromInt(1).Equal(mismatch.Difference))
		assert.Equal(t, 0, f.db.execCalls)
		f.clientRepo.AssertNotCalled(t, "FindByIDs", mock.Anything, mock.Anything)
	})

	t.Run("non positive amount is rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 0, 100))
		assert.True(t, shared.HasCode(err, "INVALID_AMOUNT"))
		assert.Equal(t, 0, f.db.execCalls)
	})

	t.Run("empty concept is rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.CreateExpense(ctx, f.request("", 10, 100))
		assert.True(t, shared.HasCode(err, "INVALID_CONCEPT"))
	})

	t.Run("zero distributions are rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 10))
		assert.True(t, shared.HasCode(err, "NO_DISTRIBUTIONS"))
	})

	t.Run("unknown client is not found", func(t *testing.T) {
		f := newFixture(t, 2)
		f.clientRepo.ExpectedCalls = nil
		f.clientRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(f.clients[:1], nil)

		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 10, 50, 50))
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))
		assert.Equal(t, 0, f.db.execCalls)
	})

	t.Run("inactive client is rejected", func(t *testing.T) {
		f := newFixture(t, 1)
		require.NoError(t, f.clients[0].Deactivate())
		f.clientRepo.ExpectedCalls = nil
		f.clientRepo.On("FindByIDs", mock.Anything, mock.Anything).Return(f.clients, nil)

		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 10, 100))
		assert.True(t, shared.HasCode(err, "CLIENT_INACTIVE"))
	})

	t.Run("failed distribution write leaves nothing behind", func(t *testing.T) {
		f := newFixture(t, 3)
		f.db.failOn = "distributions"

		_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 900, 40, 35, 25))
		require.Error(t, err)

		var perr *PersistenceError
		require.True(t, errors.As(err, &perr))
		assert.True(t, errors.Is(err, errInjected))
		assert.Equal(t, 0, f.db.expenseCount())
		assert.Equal(t, 0, f.db.distributionCount())
		assert.Equal(t, 0, f.publisher.ofType(expense.EventTypeAdminExpenseCreated))
	})
}

// ============================================
// ConfirmDistributionsPaid
// ============================================

func TestExpenseReconciler_ConfirmDistributionsPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("settles two of six and writes two ledger rows", func(t *testing.T) {
		f := newFixture(t, 6)
		created := f.officeRent(t)
		d1, d2 := created.Distributions[0], created.Distributions[1]

		result, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{d1.ID, d2.ID})
		require.NoError(t, err)

		assert.Equal(t, OutcomeSettled, result.Outcome)
		assert.False(t, result.IsNoOp())
		assert.Equal(t, "pending", result.Expense.Status)
		require.Len(t, result.Settled, 2)
		assert.Len(t, result.Transactions, 2)

		rows := f.db.ledgerRows()
		require.Len(t, rows, 2)
		amounts := map[uuid.UUID]decimal.Decimal{}
		for _, row := range rows {
			assert.Equal(t, ledger.TypeExpense, row.Type)
			assert.Equal(t, ledger.CategoryAdmin, row.Category)
			assert.Equal(t, expenseDate, row.Date)
			assert.Contains(t, row.Notes, "Office rent")
			amounts[row.ClientID] = row.Amount
		}
		assert.True(t, decimal.NewFromInt(300).Equal(amounts[d1.ClientID]))
		assert.True(t, decimal.NewFromInt(250).Equal(amounts[d2.ClientID]))

		stored, err := f.reconciler.GetExpense(ctx, created.ID)
		require.NoError(t, err)
		paid := 0
		for _, d := range stored.Distributions {
			if d.Status == "paid" {
				paid++
			}
		}
		assert.Equal(t, 2, paid)
		assert.Equal(t, 2, f.publisher.ofType(expense.EventTypeDistributionSettled))
		assert.Equal(t, 2, f.publisher.ofType(ledger.EventTypeTransactionRecorded))
		assert.Equal(t, 0, f.publisher.ofType(expense.EventTypeAdminExpenseSettled))
	})

	t.Run("rollup pays expense when the last distribution settles", func(t *testing.T) {
		f := newFixture(t, 3)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Software", 1000, 40, 35, 25))
		require.NoError(t, err)
		ids := []uuid.UUID{created.Distributions[0].ID, created.Distributions[1].ID, created.Distributions[2].ID}

		result, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, ids[:2])
		require.NoError(t, err)
		assert.Equal(t, "pending", result.Expense.Status)

		result, err = f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, ids[2:])
		require.NoError(t, err)
		assert.Equal(t, "paid", result.Expense.Status)
		assert.NotNil(t, result.Expense.PaidAt)
		assert.Len(t, f.db.ledgerRows(), 3)
		assert.Equal(t, 1, f.publisher.ofType(expense.EventTypeAdminExpenseSettled))
	})

	t.Run("already paid ids are excluded without failing", func(t *testing.T) {
		f := newFixture(t, 3)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Software", 1000, 40, 35, 25))
		require.NoError(t, err)
		first, second := created.Distributions[0].ID, created.Distributions[1].ID

		_, err = f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{first})
		require.NoError(t, err)

		result, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{first, second})
		require.NoError(t, err)
		assert.Equal(t, OutcomeSettled, result.Outcome)
		require.Len(t, result.Settled, 1)
		assert.Equal(t, second, result.Settled[0].ID)
		assert.Len(t, f.db.ledgerRows(), 2)
	})

	t.Run("only already paid ids is a no-op", func(t *testing.T) {
		f := newFixture(t, 2)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Phone", 80, 50, 50))
		require.NoError(t, err)
		first := created.Distributions[0].ID

		_, err = f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{first})
		require.NoError(t, err)

		result, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{first})
		require.NoError(t, err)
		assert.True(t, result.IsNoOp())
		assert.Equal(t, NoOpWarning, result.Warning)
		assert.Empty(t, result.Settled)
		assert.Len(t, f.db.ledgerRows(), 1)
		assert.Equal(t, 1, f.metrics.outcomes[string(OutcomeNoOp)])
	})

	t.Run("empty id set is a validation error", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.ConfirmDistributionsPaid(ctx, uuid.New(), nil)
		assert.True(t, shared.HasCode(err, "INVALID_INPUT"))
		assert.Equal(t, 0, f.db.execCalls)
	})

	t.Run("unknown expense is not found", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.ConfirmDistributionsPaid(ctx, uuid.New(), []uuid.UUID{uuid.New()})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		var rerr *ReconcileError
		assert.False(t, errors.As(err, &rerr))
	})

	t.Run("unknown distribution is not found and nothing changes", func(t *testing.T) {
		f := newFixture(t, 2)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Phone", 80, 50, 50))
		require.NoError(t, err)

		_, err = f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{created.Distributions[0].ID, uuid.New()})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrNotFound))

		stored, err := f.reconciler.GetExpense(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", stored.Distributions[0].Status)
		assert.Empty(t, f.db.ledgerRows())
	})

	t.Run("ledger failure rolls back the whole settlement", func(t *testing.T) {
		f := newFixture(t, 3)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Software", 1000, 40, 35, 25))
		require.NoError(t, err)
		f.db.failOn = "ledger"

		_, err = f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.Error(t, err)

		var rerr *ReconcileError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, created.ID, rerr.ExpenseID)
		assert.True(t, errors.Is(err, errInjected))

		stored, err := f.reconciler.GetExpense(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", stored.Status)
		assert.Equal(t, created.Version, stored.Version)
		for _, d := range stored.Distributions {
			assert.Equal(t, "pending", d.Status)
		}
		assert.Empty(t, f.db.ledgerRows())
		assert.Equal(t, 0, f.publisher.ofType(expense.EventTypeDistributionSettled))
		assert.Equal(t, 1, f.metrics.failures["persistence"])
	})

	t.Run("version conflict is reported as reconcile error", func(t *testing.T) {
		f := newFixture(t, 1)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Phone", 80, 100))
		require.NoError(t, err)
		f.db.conflict = true

		_, err = f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.Error(t, err)

		var rerr *ReconcileError
		require.True(t, errors.As(err, &rerr))
		assert.True(t, errors.Is(err, shared.ErrConcurrencyConflict))
		assert.Equal(t, 1, f.metrics.failures["conflict"])
	})

	t.Run("cancelled context cannot take the lock", func(t *testing.T) {
		f := newFixture(t, 1)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Phone", 80, 100))
		require.NoError(t, err)

		unlock, err := f.reconciler.locker.Lock(ctx, created.ID)
		require.NoError(t, err)
		defer unlock()

		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()
		_, err = f.reconciler.ConfirmAllPaid(cctx, created.ID)

		var rerr *ReconcileError
		require.True(t, errors.As(err, &rerr))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

// ============================================
// ConfirmAllPaid
// ============================================

func TestExpenseReconciler_ConfirmAllPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("second call is a no-op with identical state", func(t *testing.T) {
		f := newFixture(t, 6)
		created := f.officeRent(t)

		first, err := f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, OutcomeSettled, first.Outcome)
		assert.Equal(t, "paid", first.Expense.Status)
		assert.Len(t, first.Settled, 6)
		assert.Len(t, f.db.ledgerRows(), 6)

		second, err := f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, second.IsNoOp())
		assert.Equal(t, first.Expense.Status, second.Expense.Status)
		assert.Equal(t, first.Expense.Version, second.Expense.Version)
		assert.Equal(t, first.Expense.PaidAt, second.Expense.PaidAt)
		require.Len(t, second.Expense.Distributions, 6)
		for _, d := range second.Expense.Distributions {
			assert.Equal(t, "paid", d.Status)
		}
		assert.Len(t, f.db.ledgerRows(), 6)
		assert.Equal(t, 1, f.publisher.ofType(expense.EventTypeAdminExpenseSettled))
	})

	t.Run("settles only the remaining pending distributions", func(t *testing.T) {
		f := newFixture(t, 6)
		created := f.officeRent(t)

		_, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{created.Distributions[0].ID})
		require.NoError(t, err)

		result, err := f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, result.Settled, 5)
		assert.Equal(t, "paid", result.Expense.Status)
		assert.Len(t, f.db.ledgerRows(), 6)
	})

	t.Run("zero percent share still gets its ledger row", func(t *testing.T) {
		f := newFixture(t, 3)
		created, err := f.reconciler.CreateExpense(ctx, f.request("Parking", 500, 60, 40, 0))
		require.NoError(t, err)

		result, err := f.reconciler.ConfirmAllPaid(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, result.Settled, 3)
		assert.Len(t, result.Transactions, 3)
		assert.Equal(t, "paid", result.Expense.Status)

		rows := f.db.ledgerRows()
		require.Len(t, rows, 3)
		zero := 0
		for _, tx := range rows {
			require.NotNil(t, tx.SourceDistributionID)
			if tx.Amount.IsZero() {
				zero++
				assert.Equal(t, f.clients[2].ID, tx.ClientID)
			}
		}
		assert.Equal(t, 1, zero)
	})

	t.Run("unknown expense is not found", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.reconciler.ConfirmAllPaid(ctx, uuid.New())
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("concurrent confirmations settle every distribution once", func(t *testing.T) {
		f := newFixture(t, 6)
		created := f.officeRent(t)

		var wg sync.WaitGroup
		errs := make(chan error, len(created.Distributions)*2)
		for _, d := range created.Distributions {
			for i := 0; i < 2; i++ {
				wg.Add(1)
				go func(id uuid.UUID) {
					defer wg.Done()
					_, err := f.reconciler.ConfirmDistributionsPaid(ctx, created.ID, []uuid.UUID{id})
					errs <- err
				}(d.ID)
			}
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			assert.NoError(t, err)
		}

		stored, err := f.reconciler.GetExpense(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "paid", stored.Status)
		assert.Len(t, f.db.ledgerRows(), 6)
		assert.Equal(t, 1, f.publisher.ofType(expense.EventTypeAdminExpenseSettled))
	})
}

// ============================================
// Queries
// ============================================

func TestExpenseReconciler_ListExpenses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 2)
	_, err := f.reconciler.CreateExpense(ctx, f.request("Rent", 100, 50, 50))
	require.NoError(t, err)
	paid, err := f.reconciler.CreateExpense(ctx, f.request("Phone", 40, 50, 50))
	require.NoError(t, err)
	_, err = f.reconciler.ConfirmAllPaid(ctx, paid.ID)
	require.NoError(t, err)

	t.Run("filters by status", func(t *testing.T) {
		items, total, err := f.reconciler.ListExpenses(ctx, ExpenseListFilter{Status: "paid", Page: 1, PageSize: 20})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, paid.ID, items[0].ID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		_, _, err := f.reconciler.ListExpenses(ctx, ExpenseListFilter{Status: "void"})
		assert.True(t, shared.HasCode(err, "INVALID_STATUS"))
	})

	t.Run("rejects unknown payer", func(t *testing.T) {
		_, _, err := f.reconciler.ListExpenses(ctx, ExpenseListFilter{PaidBy: "bank"})
		assert.True(t, shared.HasCode(err, "INVALID_PAID_BY"))
	})
}
