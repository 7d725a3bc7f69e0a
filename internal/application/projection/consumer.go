package projection

import (
	"context"
	"encoding/json"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/bus"
	"go.uber.org/zap"
)

// Consumer wires projector handlers to bus topics. One subscription per
// (topic, group); the envelope is a JSON-serialized StoredEvent keyed by
// event id. A malformed envelope is acked after logging so it cannot poison
// the subscription.
type Consumer struct {
	messageBus shared.MessageBus
	topics     *bus.TopicMapper
	group      string
	logger     *zap.Logger
}

// NewConsumer creates a new projection consumer
func NewConsumer(messageBus shared.MessageBus, topics *bus.TopicMapper, group string, logger *zap.Logger) *Consumer {
	if group == "" {
		group = "projection"
	}
	return &Consumer{
		messageBus: messageBus,
		topics:     topics,
		group:      group,
		logger:     logger,
	}
}

// Register subscribes a handler to the topic of every event type it declares
func (c *Consumer) Register(handler shared.EventHandler) error {
	for _, eventType := range handler.EventTypes() {
		topic := c.topics.TopicFor(eventType)
		if err := c.messageBus.Subscribe(topic, c.group, c.messageHandler(handler)); err != nil {
			return err
		}
		c.logger.Info("projection handler registered",
			zap.String("event_type", eventType),
			zap.String("topic", topic),
			zap.String("group", c.group))
	}
	return nil
}

// Start begins consuming
func (c *Consumer) Start(ctx context.Context) error {
	return c.messageBus.Start(ctx)
}

// Stop stops consuming
func (c *Consumer) Stop(ctx context.Context) error {
	return c.messageBus.Stop(ctx)
}

func (c *Consumer) messageHandler(handler shared.EventHandler) shared.MessageHandler {
	return func(ctx context.Context, msg shared.Message) error {
		var event shared.StoredEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("dropping undecodable bus message",
				zap.String("key", msg.Key),
				zap.Error(err))
			return nil
		}
		return handler.Handle(ctx, &event)
	}
}
