package ledger

import (
	"context"

	"github.com/finops/backend/internal/domain/expense"
	"github.com/finops/backend/internal/domain/ledger"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SummaryInvalidationHandler drops cached client summaries whenever a
// client's ledger changes
type SummaryInvalidationHandler struct {
	cache  SummaryCache
	logger *zap.Logger
}

// NewSummaryInvalidationHandler creates a new SummaryInvalidationHandler
func NewSummaryInvalidationHandler(cache SummaryCache, logger *zap.Logger) *SummaryInvalidationHandler {
	return &SummaryInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the events that touch client balances
func (h *SummaryInvalidationHandler) EventTypes() []string {
	return []string{
		ledger.EventTypeTransactionRecorded,
		expense.EventTypeDistributionSettled,
	}
}

// Handle invalidates the summary of the affected client
func (h *SummaryInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var clientID uuid.UUID
	switch e := event.(type) {
	case *ledger.TransactionRecordedEvent:
		clientID = e.ClientID
	case *expense.DistributionSettledEvent:
		clientID = e.ClientID
	default:
		return nil
	}

	if err := h.cache.Invalidate(ctx, clientID); err != nil {
		h.logger.Warn("Failed to invalidate client summary",
			zap.String("client_id", clientID.String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*SummaryInvalidationHandler)(nil)
