package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/finops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultSummaryTTL      = 5 * time.Minute
	defaultCleanupInterval = 30 * time.Second
)

type summaryEntry struct {
	summary   ledger.ClientSummary
	expiresAt time.Time
}

// InMemorySummaryCache keeps client summaries in process memory with a TTL.
// Entries are only shared within one process.
type InMemorySummaryCache struct {
	entries sync.Map // map[uuid.UUID]*summaryEntry
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped atomic.Bool

	hits   atomic.Int64
	misses atomic.Int64
}

// InMemorySummaryCacheOption configures an InMemorySummaryCache
type InMemorySummaryCacheOption func(*InMemorySummaryCache)

// WithTTL sets how long a summary stays valid
func WithTTL(ttl time.Duration) InMemorySummaryCacheOption {
	return func(c *InMemorySummaryCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the cache logger
func WithLogger(logger *zap.Logger) InMemorySummaryCacheOption {
	return func(c *InMemorySummaryCache) {
		c.logger = logger
	}
}

func withClock(now func() time.Time) InMemorySummaryCacheOption {
	return func(c *InMemorySummaryCache) {
		c.now = now
	}
}

// NewInMemorySummaryCache creates the cache and starts its cleanup loop.
// Call Stop to end the loop.
func NewInMemorySummaryCache(opts ...InMemorySummaryCacheOption) *InMemorySummaryCache {
	c := &InMemorySummaryCache{
		ttl:    defaultSummaryTTL,
		now:    time.Now,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupLoop(defaultCleanupInterval)
	return c
}

// Get returns the cached summary for clientID, if present and fresh
func (c *InMemorySummaryCache) Get(_ context.Context, clientID uuid.UUID) (*ledger.ClientSummary, bool, error) {
	if v, ok := c.entries.Load(clientID); ok {
		entry := v.(*summaryEntry)
		if c.now().Before(entry.expiresAt) {
			c.hits.Add(1)
			summary := entry.summary
			return &summary, true, nil
		}
		c.entries.CompareAndDelete(clientID, v)
	}
	c.misses.Add(1)
	return nil, false, nil
}

// Set stores summary until the TTL elapses
func (c *InMemorySummaryCache) Set(_ context.Context, summary ledger.ClientSummary) error {
	c.entries.Store(summary.ClientID, &summaryEntry{
		summary:   summary,
		expiresAt: c.now().Add(c.ttl),
	})
	return nil
}

// Invalidate drops the summaries of the given clients
func (c *InMemorySummaryCache) Invalidate(_ context.Context, clientIDs ...uuid.UUID) error {
	for _, id := range clientIDs {
		c.entries.Delete(id)
	}
	return nil
}

// Stats returns hit and miss counters since creation
func (c *InMemorySummaryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Stop ends the cleanup loop. It is safe to call more than once.
func (c *InMemorySummaryCache) Stop() {
	if c.stopped.CompareAndSwap(false, true) {
		close(c.stopCh)
	}
}

func (c *InMemorySummaryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.evictExpired(); n > 0 {
				c.logger.Debug("Evicted expired client summaries", zap.Int("count", n))
			}
		case <-c.stopCh:
			return
		}
	}
}

func (c *InMemorySummaryCache) evictExpired() int {
	now := c.now()
	evicted := 0
	c.entries.Range(func(key, value any) bool {
		if !now.Before(value.(*summaryEntry).expiresAt) {
			if c.entries.CompareAndDelete(key, value) {
				evicted++
			}
		}
		return true
	})
	return evicted
}
