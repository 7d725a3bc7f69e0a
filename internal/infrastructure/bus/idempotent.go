package bus

import (
	"context"

	"github.com/airp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// IdempotentHandler wraps an EventHandler with duplicate detection, so
// at-least-once delivery does not double-apply an event.
type IdempotentHandler struct {
	handler shared.EventHandler
	store   shared.IdempotencyStore
	config  shared.IdempotencyConfig
	logger  *zap.Logger
	metrics shared.MetricsSink
}

// NewIdempotentHandler creates a new idempotent handler wrapper
func NewIdempotentHandler(
	handler shared.EventHandler,
	store shared.IdempotencyStore,
	config shared.IdempotencyConfig,
	logger *zap.Logger,
	metrics shared.MetricsSink,
) *IdempotentHandler {
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	return &IdempotentHandler{
		handler: handler,
		store:   store,
		config:  config,
		logger:  logger,
		metrics: metrics,
	}
}

// EventTypes returns the event types the wrapped handler is interested in
func (h *IdempotentHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

// Handle processes the event unless it was already processed
func (h *IdempotentHandler) Handle(ctx context.Context, event *shared.StoredEvent) error {
	if !h.config.Enabled {
		return h.handler.Handle(ctx, event)
	}

	eventID := event.EventID.String()
	isNew, err := h.store.MarkProcessed(ctx, eventID, h.config.TTL)
	if err != nil {
		// Better to risk a duplicate than to drop the event; the
		// projection's own event-id guard catches double application.
		h.logger.Warn("idempotency check failed, processing anyway",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType),
			zap.Error(err))
	} else if !isNew {
		h.metrics.IncCounter(shared.MetricEventsDuplicate, map[string]string{"event_type": event.EventType})
		h.logger.Debug("duplicate event skipped",
			zap.String("event_id", eventID),
			zap.String("event_type", event.EventType))
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		// The idempotency key stays set until the TTL expires, which
		// throttles rapid retries of a failing event.
		return err
	}
	return nil
}

var _ shared.EventHandler = (*IdempotentHandler)(nil)
