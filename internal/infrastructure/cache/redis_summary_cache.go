package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/finops/backend/internal/domain/ledger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisSummaryCache stores client summaries as JSON in Redis so every
// replica sees the same entries and invalidations.
type RedisSummaryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisSummaryCache creates a RedisSummaryCache. A non-positive ttl uses
// the default of five minutes.
func NewRedisSummaryCache(client redis.UniversalClient, ttl time.Duration) *RedisSummaryCache {
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &RedisSummaryCache{client: client, ttl: ttl}
}

func summaryKey(clientID uuid.UUID) string {
	return keyPrefix + "summary:" + clientID.String()
}

// Get returns the cached summary for clientID
func (c *RedisSummaryCache) Get(ctx context.Context, clientID uuid.UUID) (*ledger.ClientSummary, bool, error) {
	data, err := c.client.Get(ctx, summaryKey(clientID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read client summary: %w", err)
	}

	var summary ledger.ClientSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, false, fmt.Errorf("failed to decode client summary: %w", err)
	}
	return &summary, true, nil
}

// Set stores summary with the configured TTL
func (c *RedisSummaryCache) Set(ctx context.Context, summary ledger.ClientSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode client summary: %w", err)
	}
	if err := c.client.Set(ctx, summaryKey(summary.ClientID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write client summary: %w", err)
	}
	return nil
}

// Invalidate deletes the summaries of the given clients
func (c *RedisSummaryCache) Invalidate(ctx context.Context, clientIDs ...uuid.UUID) error {
	if len(clientIDs) == 0 {
		return nil
	}
	keys := make([]string, len(clientIDs))
	for i, id := range clientIDs {
		keys[i] = summaryKey(id)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate client summaries: %w", err)
	}
	return nil
}
