package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	ledgerapp "github.com/finops/backend/internal/application/ledger"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ ledgerapp.SummaryCache = (*InMemorySummaryCache)(nil)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testSummary(clientID uuid.UUID) ledger.ClientSummary {
	return ledger.NewClientSummary(clientID, ledger.Totals{
		Funding: decimal.NewFromInt(1000),
		Expense: decimal.NewFromInt(300),
		Lead:    decimal.NewFromInt(50),
		Count:   3,
	})
}

func TestInMemorySummaryCache(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	c := NewInMemorySummaryCache(WithTTL(time.Minute), withClock(clock.Now))
	t.Cleanup(c.Stop)

	clientID := uuid.New()

	t.Run("miss then hit", func(t *testing.T) {
		_, ok, err := c.Get(ctx, clientID)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.Set(ctx, testSummary(clientID)))

		got, ok, err := c.Get(ctx, clientID)
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(650)))
		assert.Equal(t, int64(3), got.TransactionCount)
	})

	t.Run("returned summary is a copy", func(t *testing.T) {
		got, _, _ := c.Get(ctx, clientID)
		got.Balance = decimal.Zero

		again, _, _ := c.Get(ctx, clientID)
		assert.True(t, again.Balance.Equal(decimal.NewFromInt(650)))
	})

	t.Run("expires after ttl", func(t *testing.T) {
		clock.Advance(time.Minute)
		_, ok, err := c.Get(ctx, clientID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate drops only the given clients", func(t *testing.T) {
		other := uuid.New()
		require.NoError(t, c.Set(ctx, testSummary(clientID)))
		require.NoError(t, c.Set(ctx, testSummary(other)))

		require.NoError(t, c.Invalidate(ctx, clientID))

		_, ok, _ := c.Get(ctx, clientID)
		assert.False(t, ok)
		_, ok, _ = c.Get(ctx, other)
		assert.True(t, ok)
	})

	t.Run("stats count hits and misses", func(t *testing.T) {
		hits, misses := c.Stats()
		assert.Positive(t, hits)
		assert.Positive(t, misses)
	})
}

func TestInMemorySummaryCache_EvictExpired(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	c := NewInMemorySummaryCache(WithTTL(time.Minute), withClock(clock.Now))
	t.Cleanup(c.Stop)

	require.NoError(t, c.Set(ctx, testSummary(uuid.New())))
	clock.Advance(30 * time.Second)
	fresh := uuid.New()
	require.NoError(t, c.Set(ctx, testSummary(fresh)))

	clock.Advance(45 * time.Second)
	assert.Equal(t, 1, c.evictExpired())

	_, ok, _ := c.Get(ctx, fresh)
	assert.True(t, ok)
}

func TestInMemorySummaryCache_StopIsIdempotent(t *testing.T) {
	c := NewInMemorySummaryCache()
	c.Stop()
	assert.NotPanics(t, c.Stop)
}

func TestKeys(t *testing.T) {
	id := uuid.MustParse("7d0c4f5e-2a43-4f1e-9a59-0c3f8b1e2d10")
	assert.Equal(t, "finops:summary:7d0c4f5e-2a43-4f1e-9a59-0c3f8b1e2d10", summaryKey(id))
	assert.Equal(t, "finops:lock:expense:7d0c4f5e-2a43-4f1e-9a59-0c3f8b1e2d10", lockKey(id))
}
