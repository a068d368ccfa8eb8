// Package expense orchestrates creation and settlement of admin expenses.
package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/logger"
	"github.com/finops/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NoOpWarning is returned with a NoOp settlement
const NoOpWarning = "Nothing to settle: the requested distributions are already paid"

// SettlementRecorder receives settlement metrics
type SettlementRecorder interface {
	RecordExpenseCreated(ctx context.Context, amount decimal.Decimal, distributions int)
	RecordSettlement(ctx context.Context, outcome string, distributions int, amount decimal.Decimal)
	RecordSettlementFailure(ctx context.Context, reason string)
}

// ExpenseReconciler creates admin expenses and confirms distribution payments,
// keeping the expense, its distributions and the ledger consistent.
type ExpenseReconciler struct {
	expenseRepo    expense.Repository
	clientRepo     client.Repository
	txScope        TransactionScope
	locker         ExpenseLocker
	eventPublisher shared.EventPublisher
	metrics        SettlementRecorder
	logger         *zap.Logger
	now            func() time.Time
}

// NewExpenseReconciler creates a new ExpenseReconciler with an in-process locker
func NewExpenseReconciler(
	expenseRepo expense.Repository,
	clientRepo client.Repository,
	txScope TransactionScope,
) *ExpenseReconciler {
	return &ExpenseReconciler{
		expenseRepo: expenseRepo,
		clientRepo:  clientRepo,
		txScope:     txScope,
		locker:      NewLocalExpenseLocker(),
		logger:      zap.NewNop(),
		now:         time.Now,
	}
}

// SetEventPublisher sets the publisher for domain events emitted after commit
func (r *ExpenseReconciler) SetEventPublisher(publisher shared.EventPublisher) {
	r.eventPublisher = publisher
}

// SetLocker replaces the per-expense locker
func (r *ExpenseReconciler) SetLocker(locker ExpenseLocker) {
	r.locker = locker
}

// SetMetrics sets the settlement metrics recorder
func (r *ExpenseReconciler) SetMetrics(metrics SettlementRecorder) {
	r.metrics = metrics
}

// SetLogger sets the logger
func (r *ExpenseReconciler) SetLogger(logger *zap.Logger) {
	r.logger = logger.Named("reconciler")
}

// CreateExpense validates the split, derives every distribution amount and
// stores the expense with its distributions in one transaction.
func (r *ExpenseReconciler) CreateExpense(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_expense", "create")
	defer span.End()

	inputs := make([]expense.DistributionInput, len(req.Distributions))
	for i, d := range req.Distributions {
		inputs[i] = expense.DistributionInput{ClientID: d.ClientID, Percentage: d.Percentage}
	}

	e, err := expense.NewAdminExpense(req.Concept, req.Amount, req.Date, expense.PaidBy(req.PaidBy), inputs)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithExpenseID(ctx, e.ID.String())

	if err := r.checkClients(ctx, e); err != nil {
		return nil, err
	}

	err = r.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.ExpenseRepo().Save(ctx, e); err != nil {
			return err
		}
		return repos.ExpenseRepo().SaveDistributions(ctx, e.Distributions)
	})
	if err != nil {
		r.logger.Error("Failed to persist admin expense",
			zap.String("expense_id", e.ID.String()),
			zap.Error(err),
		)
		telemetry.RecordError(span, err)
		return nil, &PersistenceError{Op: "create expense", Err: err}
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrExpenseID, e.ID.String(),
		telemetry.SpanAttrAmount, e.Amount.String(),
		telemetry.SpanAttrDistributions, len(e.Distributions),
	)

	r.logger.Info("Admin expense created",
		zap.String("expense_id", e.ID.String()),
		zap.String("amount", e.Amount.String()),
		zap.Int("distributions", len(e.Distributions)),
	)
	if r.metrics != nil {
		r.metrics.RecordExpenseCreated(ctx, e.Amount, len(e.Distributions))
	}
	r.publish(ctx, e.GetDomainEvents())
	e.ClearDomainEvents()

	resp := toExpenseResponse(e)
	return &resp, nil
}

// checkClients verifies every distribution targets an existing, active client
func (r *ExpenseReconciler) checkClients(ctx context.Context, e *expense.AdminExpense) error {
	if r.clientRepo == nil {
		return nil
	}
	ids := make([]uuid.UUID, len(e.Distributions))
	for i, d := range e.Distributions {
		ids[i] = d.ClientID
	}
	clients, err := r.clientRepo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]client.Client, len(clients))
	for _, c := range clients {
		byID[c.ID] = c
	}
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Client %s not found", id))
		}
		if !c.IsActive() {
			return shared.NewDomainError("CLIENT_INACTIVE", fmt.Sprintf("Client %s is inactive", c.Name))
		}
	}
	return nil
}

// ConfirmDistributionsPaid marks the given distributions of an expense paid.
// Distributions that are already paid are skipped; when every requested one
// is skipped the result is a NoOp. Each newly paid distribution produces one
// ledger transaction, and the expense status is rolled up, all in a single
// unit of work.
func (r *ExpenseReconciler) ConfirmDistributionsPaid(ctx context.Context, expenseID uuid.UUID, distributionIDs []uuid.UUID) (*SettlementResult, error) {
	if len(distributionIDs) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one distribution ID is required")
	}
	ids := append([]uuid.UUID(nil), distributionIDs...)
	return r.settle(ctx, expenseID, func(*expense.AdminExpense) []uuid.UUID {
		return ids
	})
}

// ConfirmAllPaid settles every pending distribution of the expense. An
// expense that is already fully paid yields a NoOp result.
func (r *ExpenseReconciler) ConfirmAllPaid(ctx context.Context, expenseID uuid.UUID) (*SettlementResult, error) {
	return r.settle(ctx, expenseID, func(e *expense.AdminExpense) []uuid.UUID {
		return e.PendingDistributionIDs()
	})
}

func (r *ExpenseReconciler) settle(
	ctx context.Context,
	expenseID uuid.UUID,
	selectIDs func(*expense.AdminExpense) []uuid.UUID,
) (*SettlementResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_expense", "settle")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrExpenseID, expenseID.String())
	ctx = logger.WithExpenseID(ctx, expenseID.String())

	unlock, err := r.locker.Lock(ctx, expenseID)
	if err != nil {
		r.recordFailure(ctx, "lock")
		telemetry.RecordError(span, err)
		return nil, &ReconcileError{ExpenseID: expenseID, Err: err}
	}
	defer unlock()

	var out settlement
	telemetry.WithProfilingLabels(ctx, map[string]string{"operation": "settle"}, func(ctx context.Context) {
		err = r.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			out, err = r.settleInTx(ctx, repos, expenseID, selectIDs)
			return err
		})
	})
	if err != nil {
		return nil, r.classify(ctx, expenseID, err)
	}
	e, settled, txs := out.expense, out.settled, out.transactions

	resp := toExpenseResponse(e)
	if len(settled) == 0 {
		telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(OutcomeNoOp))
		r.logger.Info("Settlement was a no-op", zap.String("expense_id", expenseID.String()))
		if r.metrics != nil {
			r.metrics.RecordSettlement(ctx, string(OutcomeNoOp), 0, decimal.Zero)
		}
		return &SettlementResult{
			Outcome:      OutcomeNoOp,
			Warning:      NoOpWarning,
			Expense:      resp,
			Settled:      []DistributionResponse{},
			Transactions: []uuid.UUID{},
		}, nil
	}

	settledAmount := decimal.Zero
	settledResp := make([]DistributionResponse, len(settled))
	for i := range settled {
		settledResp[i] = toDistributionResponse(&settled[i])
		settledAmount = settledAmount.Add(settled[i].Amount)
	}

	r.logger.Info("Distributions settled",
		zap.String("expense_id", expenseID.String()),
		zap.Int("settled", len(settled)),
		zap.String("amount", settledAmount.String()),
		zap.String("expense_status", e.Status.String()),
	)
	if r.metrics != nil {
		r.metrics.RecordSettlement(ctx, string(OutcomeSettled), len(settled), settledAmount)
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOutcome, string(OutcomeSettled),
		telemetry.SpanAttrDistributions, len(settled),
		telemetry.SpanAttrAmount, settledAmount.String(),
	)

	events := e.GetDomainEvents()
	for _, tx := range txs {
		events = append(events, tx.GetDomainEvents()...)
		tx.ClearDomainEvents()
	}
	e.ClearDomainEvents()
	r.publish(ctx, events)

	return &SettlementResult{
		Outcome:      OutcomeSettled,
		Expense:      resp,
		Settled:      settledResp,
		Transactions: transactionIDs(txs),
	}, nil
}

// settlement is what one settle unit of work changed
type settlement struct {
	expense      *expense.AdminExpense
	settled      []expense.ExpenseDistribution
	transactions []*ledger.Transaction
}

// settleInTx loads the expense, settles the selected distributions and
// appends one ledger row per newly paid distribution.
func (r *ExpenseReconciler) settleInTx(
	ctx context.Context,
	repos TransactionalRepositories,
	expenseID uuid.UUID,
	selectIDs func(*expense.AdminExpense) []uuid.UUID,
) (settlement, error) {
	e, err := repos.ExpenseRepo().FindByID(ctx, expenseID)
	if err != nil {
		return settlement{}, err
	}
	out := settlement{expense: e}

	ids := selectIDs(e)
	if len(ids) == 0 {
		return out, nil
	}
	out.settled, err = e.Settle(ids, r.now())
	if err != nil || len(out.settled) == 0 {
		return out, err
	}

	if err := repos.ExpenseRepo().SaveWithLock(ctx, e); err != nil {
		return out, err
	}
	if err := repos.ExpenseRepo().SaveDistributions(ctx, out.settled); err != nil {
		return out, err
	}

	out.transactions = make([]*ledger.Transaction, 0, len(out.settled))
	for _, d := range out.settled {
		tx, err := ledger.NewSettlementTransaction(d.ClientID, d.Amount, e.Date, e.Concept, e.ID, d.ID)
		if err != nil {
			return out, err
		}
		out.transactions = append(out.transactions, tx)
	}
	return out, repos.LedgerRepo().SaveBatch(ctx, out.transactions)
}

// classify passes business errors through unchanged and wraps everything
// else, including version conflicts, in a ReconcileError.
func (r *ExpenseReconciler) classify(ctx context.Context, expenseID uuid.UUID, err error) error {
	telemetry.RecordError(trace.SpanFromContext(ctx), err)
	if de, ok := shared.AsDomainError(err); ok && de.Code != shared.ErrConcurrencyConflict.Code {
		return err
	}
	r.logger.Error("Settlement aborted",
		zap.String("expense_id", expenseID.String()),
		zap.Error(err),
	)
	reason := "persistence"
	if shared.HasCode(err, shared.ErrConcurrencyConflict.Code) {
		reason = "conflict"
	}
	r.recordFailure(ctx, reason)
	return &ReconcileError{ExpenseID: expenseID, Err: err}
}

func (r *ExpenseReconciler) recordFailure(ctx context.Context, reason string) {
	if r.metrics != nil {
		r.metrics.RecordSettlementFailure(ctx, reason)
	}
}

// GetExpense returns an expense with its distributions
func (r *ExpenseReconciler) GetExpense(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	e, err := r.expenseRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toExpenseResponse(e)
	return &resp, nil
}

// ListExpenses lists expenses matching the filter
func (r *ExpenseReconciler) ListExpenses(ctx context.Context, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter := expense.Filter{
		ClientID: filter.ClientID,
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
	}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir

	if filter.Status != "" {
		status := expense.Status(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STATUS", "Status must be pending or paid")
		}
		domainFilter.Status = &status
	}
	if filter.PaidBy != "" {
		paidBy := expense.PaidBy(filter.PaidBy)
		if !paidBy.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_PAID_BY", "Paid by must be one of shared, company, owner")
		}
		domainFilter.PaidBy = &paidBy
	}

	expenses, err := r.expenseRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.expenseRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = toExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

func (r *ExpenseReconciler) publish(ctx context.Context, events []shared.DomainEvent) {
	if r.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := r.eventPublisher.Publish(ctx, events...); err != nil {
		r.logger.Warn("Failed to publish expense events", zap.Error(err))
	}
}
