package telemetry_test

import (
	"context"
	"testing"

	appexpense "github.com/finops/backend/internal/application/expense"
	"github.com/finops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

var _ appexpense.SettlementRecorder = (*telemetry.SettlementMetrics)(nil)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestNewSettlementMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewSettlementMetrics(nil)
	require.Error(t, err)
	assert.Nil(t, m)
}

func TestSettlementMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := telemetry.NewSettlementMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordExpenseCreated(ctx, decimal.NewFromInt(1000), 6)
	m.RecordSettlement(ctx, "settled", 2, decimal.NewFromInt(550))
	m.RecordSettlement(ctx, "noop", 0, decimal.Zero)
	m.RecordSettlementFailure(ctx, "conflict")

	metrics := collect(t, reader)
	assert.Equal(t, int64(1), sumOf(t, metrics["finops.admin_expenses.created"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["finops.settlements"]))
	assert.Equal(t, int64(2), sumOf(t, metrics["finops.distributions.paid"]))
	assert.Equal(t, int64(1), sumOf(t, metrics["finops.settlements.failures"]))

	hist, ok := metrics["finops.settlements.amount"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.Equal(t, uint64(1), hist.DataPoints[0].Count)
	assert.Equal(t, 550.0, hist.DataPoints[0].Sum)
}
