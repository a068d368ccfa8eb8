package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// SettlementMetrics records admin-expense and settlement activity.
type SettlementMetrics struct {
	expensesCreated    *Counter
	settlements        *Counter
	distributionsPaid  *Counter
	settledAmount      *Histogram
	settlementFailures *Counter
}

// NewSettlementMetrics creates the settlement instruments on meter.
func NewSettlementMetrics(meter metric.Meter) (*SettlementMetrics, error) {
	if meter == nil {
		return nil, errors.New("NewSettlementMetrics: meter cannot be nil")
	}

	expensesCreated, err := NewCounter(meter, "finops.admin_expenses.created", "Admin expenses created", "{expense}")
	if err != nil {
		return nil, err
	}
	settlements, err := NewCounter(meter, "finops.settlements", "Settlement requests by outcome", "{request}")
	if err != nil {
		return nil, err
	}
	distributionsPaid, err := NewCounter(meter, "finops.distributions.paid", "Distributions confirmed paid", "{distribution}")
	if err != nil {
		return nil, err
	}
	settledAmount, err := NewHistogram(meter, HistogramOpts{
		Name:        "finops.settlements.amount",
		Description: "Amount charged to client ledgers per settlement",
		Unit:        "1",
		Boundaries:  []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})
	if err != nil {
		return nil, err
	}
	failures, err := NewCounter(meter, "finops.settlements.failures", "Failed settlements by reason", "{request}")
	if err != nil {
		return nil, err
	}

	return &SettlementMetrics{
		expensesCreated:    expensesCreated,
		settlements:        settlements,
		distributionsPaid:  distributionsPaid,
		settledAmount:      settledAmount,
		settlementFailures: failures,
	}, nil
}

// RecordExpenseCreated counts a new admin expense.
func (m *SettlementMetrics) RecordExpenseCreated(ctx context.Context, _ decimal.Decimal, _ int) {
	m.expensesCreated.Inc(ctx)
}

// RecordSettlement counts a settlement request and, when something was
// settled, the distributions and amount charged.
func (m *SettlementMetrics) RecordSettlement(ctx context.Context, outcome string, distributions int, amount decimal.Decimal) {
	m.settlements.Inc(ctx, AttrOutcome.String(outcome))
	if distributions == 0 {
		return
	}
	m.distributionsPaid.Add(ctx, int64(distributions))
	m.settledAmount.Record(ctx, amount.InexactFloat64())
}

// RecordSettlementFailure counts a failed settlement.
func (m *SettlementMetrics) RecordSettlementFailure(ctx context.Context, reason string) {
	m.settlementFailures.Inc(ctx, AttrReason.String(reason))
}
