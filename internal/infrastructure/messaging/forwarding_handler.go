package messaging

import (
	"context"
	"strings"

	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/infrastructure/event"
	"go.uber.org/zap"
)

// Publisher sends a message to the broker
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
}

// ForwardingHandler forwards every domain event it receives to the broker.
// Routing keys look like "finops.adminexpense.DistributionSettled".
type ForwardingHandler struct {
	publisher  Publisher
	serializer *event.EventSerializer
	logger     *zap.Logger
}

// NewForwardingHandler creates a ForwardingHandler
func NewForwardingHandler(publisher Publisher, serializer *event.EventSerializer, logger *zap.Logger) *ForwardingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForwardingHandler{publisher: publisher, serializer: serializer, logger: logger}
}

// EventTypes subscribes to all events
func (h *ForwardingHandler) EventTypes() []string {
	return nil
}

// Handle encodes the event and publishes it
func (h *ForwardingHandler) Handle(ctx context.Context, evt shared.DomainEvent) error {
	body, err := h.serializer.Encode(evt)
	if err != nil {
		return err
	}
	err = h.publisher.Publish(ctx, Message{
		RoutingKey: RoutingKey(evt),
		MessageID:  evt.EventID().String(),
		Type:       evt.EventType(),
		Timestamp:  evt.OccurredAt(),
		Body:       body,
	})
	if err != nil {
		h.logger.Warn("Failed to forward event",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
			zap.Error(err),
		)
	}
	return err
}

// RoutingKey derives the topic routing key of evt
func RoutingKey(evt shared.DomainEvent) string {
	return "finops." + strings.ToLower(evt.AggregateType()) + "." + evt.EventType()
}

var _ shared.EventHandler = (*ForwardingHandler)(nil)
