package expense

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/finops/backend/internal/domain/client"
	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

var errInjected = errors.New("injected write failure")

// memState is a committed snapshot of the in-memory store
type memState struct {
	expenses map[uuid.UUID]expense.AdminExpense
	dists    map[uuid.UUID]expense.ExpenseDistribution
	seq      map[uuid.UUID]int
	next     int
	ledger   []ledger.Transaction
}

func newMemState() *memState {
	return &memState{
		expenses: make(map[uuid.UUID]expense.AdminExpense),
		dists:    make(map[uuid.UUID]expense.ExpenseDistribution),
		seq:      make(map[uuid.UUID]int),
	}
}

func (s *memState) clone() *memState {
	c := newMemState()
	for k, v := range s.expenses {
		c.expenses[k] = v
	}
	for k, v := range s.dists {
		c.dists[k] = v
	}
	for k, v := range s.seq {
		c.seq[k] = v
	}
	c.next = s.next
	c.ledger = append([]ledger.Transaction(nil), s.ledger...)
	return c
}

// memDB emulates a transactional store: Execute works on a clone and swaps
// it in only when fn succeeds.
type memDB struct {
	mu        sync.Mutex
	state     *memState
	failOn    string
	conflict  bool
	execCalls int
}

func newMemDB() *memDB {
	return &memDB{state: newMemState()}
}

func (db *memDB) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.execCalls++

	work := db.state.clone()
	if err := fn(&memRepos{db: db, st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	db.state = work
	return nil
}

func (db *memDB) expenseCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.expenses)
}

func (db *memDB) distributionCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.state.dists)
}

func (db *memDB) ledgerRows() []ledger.Transaction {
	db.mu.Lock()
	defer db.mu.Unlock()
	return append([]ledger.Transaction(nil), db.state.ledger...)
}

// reader returns repositories over the committed state
func (db *memDB) reader() *memExpenseRepo {
	return &memExpenseRepo{db: db}
}

type memRepos struct {
	db *memDB
	st *memState
}

func (r *memRepos) ExpenseRepo() expense.Repository {
	return &memExpenseRepo{db: r.db, st: r.st}
}

func (r *memRepos) LedgerRepo() ledger.Repository {
	return &memLedgerRepo{db: r.db, st: r.st}
}

type memExpenseRepo struct {
	db *memDB
	st *memState
}

// state returns the transaction snapshot, or the committed state for reads
// outside a transaction
func (r *memExpenseRepo) state() (*memState, func()) {
	if r.st != nil {
		return r.st, func() {}
	}
	r.db.mu.Lock()
	return r.db.state, r.db.mu.Unlock
}

func (r *memExpenseRepo) load(st *memState, id uuid.UUID) (*expense.AdminExpense, bool) {
	e, ok := st.expenses[id]
	if !ok {
		return nil, false
	}
	e.Distributions = r.distributionsOf(st, id)
	return &e, true
}

func (r *memExpenseRepo) distributionsOf(st *memState, id uuid.UUID) []expense.ExpenseDistribution {
	var out []expense.ExpenseDistribution
	for _, d := range st.dists {
		if d.ExpenseID == id {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return st.seq[out[i].ID] < st.seq[out[j].ID] })
	return out
}

func (r *memExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*expense.AdminExpense, error) {
	st, done := r.state()
	defer done()
	e, ok := r.load(st, id)
	if !ok {
		return nil, shared.ErrNotFound
	}
	return e, nil
}

func (r *memExpenseRepo) FindAll(_ context.Context, filter expense.Filter) ([]expense.AdminExpense, error) {
	st, done := r.state()
	defer done()
	var out []expense.AdminExpense
	for id := range st.expenses {
		e, _ := r.load(st, id)
		if filter.Status != nil && e.Status != *filter.Status {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *memExpenseRepo) Count(ctx context.Context, filter expense.Filter) (int64, error) {
	all, err := r.FindAll(ctx, filter)
	return int64(len(all)), err
}

func (r *memExpenseRepo) FindDistributions(_ context.Context, expenseID uuid.UUID) ([]expense.ExpenseDistribution, error) {
	st, done := r.state()
	defer done()
	return r.distributionsOf(st, expenseID), nil
}

func (r *memExpenseRepo) Save(_ context.Context, e *expense.AdminExpense) error {
	if r.db.failOn == "expense" {
		return errInjected
	}
	st, done := r.state()
	defer done()
	row := *e
	row.Distributions = nil
	row.ClearDomainEvents()
	st.expenses[e.ID] = row
	return nil
}

func (r *memExpenseRepo) SaveWithLock(_ context.Context, e *expense.AdminExpense) error {
	if r.db.conflict {
		return shared.ErrConcurrencyConflict
	}
	st, done := r.state()
	defer done()
	stored, ok := st.expenses[e.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != e.GetVersion()-1 {
		return shared.NewDomainError("CONCURRENCY_CONFLICT", "version mismatch")
	}
	row := *e
	row.Distributions = nil
	row.ClearDomainEvents()
	st.expenses[e.ID] = row
	return nil
}

func (r *memExpenseRepo) SaveDistributions(_ context.Context, dists []expense.ExpenseDistribution) error {
	if r.db.failOn == "distributions" {
		return errInjected
	}
	st, done := r.state()
	defer done()
	for _, d := range dists {
		if _, ok := st.seq[d.ID]; !ok {
			st.next++
			st.seq[d.ID] = st.next
		}
		st.dists[d.ID] = d
	}
	return nil
}

type memLedgerRepo struct {
	db *memDB
	st *memState
}

func (r *memLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*ledger.Transaction, error) {
	for _, t := range r.st.ledger {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memLedgerRepo) FindAll(_ context.Context, _ ledger.Filter) ([]ledger.Transaction, error) {
	return append([]ledger.Transaction(nil), r.st.ledger...), nil
}

func (r *memLedgerRepo) Count(_ context.Context, _ ledger.Filter) (int64, error) {
	return int64(len(r.st.ledger)), nil
}

func (r *memLedgerRepo) FindByExpense(_ context.Context, expenseID uuid.UUID) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	for _, t := range r.st.ledger {
		if t.SourceExpenseID != nil && *t.SourceExpenseID == expenseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *memLedgerRepo) ExistsForDistribution(_ context.Context, distributionID uuid.UUID) (bool, error) {
	for _, t := range r.st.ledger {
		if t.SourceDistributionID != nil && *t.SourceDistributionID == distributionID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLedgerRepo) TotalsForClient(_ context.Context, clientID uuid.UUID) (ledger.Totals, error) {
	totals := ledger.Totals{Funding: decimal.Zero, Expense: decimal.Zero, Lead: decimal.Zero}
	for _, t := range r.st.ledger {
		if t.ClientID == clientID && t.Type == ledger.TypeExpense {
			totals.Expense = totals.Expense.Add(t.Amount)
			totals.Count++
		}
	}
	return totals, nil
}

func (r *memLedgerRepo) Save(ctx context.Context, tx *ledger.Transaction) error {
	return r.SaveBatch(ctx, []*ledger.Transaction{tx})
}

func (r *memLedgerRepo) SaveBatch(ctx context.Context, txs []*ledger.Transaction) error {
	if r.db.failOn == "ledger" {
		return errInjected
	}
	for _, tx := range txs {
		if exists, _ := r.ExistsForDistribution(ctx, *tx.SourceDistributionID); exists {
			return errors.New("duplicate settlement row")
		}
		row := *tx
		row.ClearDomainEvents()
		r.st.ledger = append(r.st.ledger, row)
	}
	return nil
}

// MockClientRepository is a mock implementation of client.Repository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *MockClientRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]client.Client, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context, filter client.Filter) ([]client.Client, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *MockClientRepository) Count(ctx context.Context, filter client.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockClientRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, c *client.Client) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) ofType(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.EventType() == eventType {
			n++
		}
	}
	return n
}

// countingRecorder records metric calls
type countingRecorder struct {
	mu       sync.Mutex
	created  int
	outcomes map[string]int
	failures map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{outcomes: map[string]int{}, failures: map[string]int{}}
}

func (c *countingRecorder) RecordExpenseCreated(context.Context, decimal.Decimal, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created++
}

func (c *countingRecorder) RecordSettlement(_ context.Context, outcome string, _ int, _ decimal.Decimal) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func (c *countingRecorder) RecordSettlementFailure(_ context.Context, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[reason]++
}
