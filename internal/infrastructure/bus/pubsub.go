package bus

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/airp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// PubSubBus implements shared.MessageBus on Google Cloud Pub/Sub. Topics and
// subscriptions are created on first use; subscription names are
// "<topic>.<group>" so separate groups each receive every message.
type PubSubBus struct {
	client *pubsub.Client
	logger *zap.Logger

	mu     sync.Mutex
	topics map[string]*pubsub.Topic
	subs   []pubsubSubscription
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type pubsubSubscription struct {
	topic   string
	group   string
	handler shared.MessageHandler
}

const pubsubAckDeadline = 20 * time.Second

// NewPubSubBus creates a bus over an existing Pub/Sub client. The caller
// owns the client's lifecycle.
func NewPubSubBus(client *pubsub.Client, logger *zap.Logger) *PubSubBus {
	return &PubSubBus{
		client: client,
		logger: logger,
		topics: make(map[string]*pubsub.Topic),
	}
}

// Publish delivers a message to a topic, blocking until the server acks it
func (b *PubSubBus) Publish(ctx context.Context, topic string, msg shared.Message) error {
	t, err := b.ensureTopic(ctx, topic)
	if err != nil {
		return err
	}
	result := t.Publish(ctx, &pubsub.Message{
		Data:       msg.Value,
		Attributes: map[string]string{"event_id": msg.Key},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish to %q: %w", topic, err)
	}
	return nil
}

// Subscribe registers a handler for a topic within a consumer group
func (b *PubSubBus) Subscribe(topic, group string, handler shared.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, pubsubSubscription{topic: topic, group: group, handler: handler})
	return nil
}

// Start creates subscriptions as needed and begins receiving
func (b *PubSubBus) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	b.mu.Lock()
	b.cancel = cancel
	subs := make([]pubsubSubscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, s := range subs {
		sub, err := b.ensureSubscription(ctx, s.topic, s.group)
		if err != nil {
			cancel()
			return err
		}
		handler := s.handler
		topic, group := s.topic, s.group
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			err := sub.Receive(runCtx, func(ctx context.Context, m *pubsub.Message) {
				msg := shared.Message{Key: m.Attributes["event_id"], Value: m.Data}
				if err := handler(ctx, msg); err != nil {
					b.logger.Warn("handler failed, nacking message",
						zap.String("topic", topic),
						zap.String("group", group),
						zap.String("key", msg.Key),
						zap.Error(err))
					m.Nack()
					return
				}
				m.Ack()
			})
			if err != nil && runCtx.Err() == nil {
				b.logger.Error("subscription receive stopped",
					zap.String("topic", topic),
					zap.String("group", group),
					zap.Error(err))
			}
		}()
	}
	b.logger.Info("pubsub bus started", zap.Int("subscriptions", len(subs)))
	return nil
}

// Stop cancels all receivers and waits for in-flight handlers
func (b *PubSubBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	cancel := b.cancel
	topics := b.topics
	b.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	for _, t := range topics {
		t.Stop()
	}
	b.logger.Info("pubsub bus stopped")
	return nil
}

func (b *PubSubBus) ensureTopic(ctx context.Context, name string) (*pubsub.Topic, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.topics[name]; ok {
		return t, nil
	}

	t := b.client.Topic(name)
	exists, err := t.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check topic %q: %w", name, err)
	}
	if !exists {
		t, err = b.client.CreateTopic(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create topic %q: %w", name, err)
		}
	}
	b.topics[name] = t
	return t, nil
}

func (b *PubSubBus) ensureSubscription(ctx context.Context, topic, group string) (*pubsub.Subscription, error) {
	t, err := b.ensureTopic(ctx, topic)
	if err != nil {
		return nil, err
	}

	name := topic + "." + group
	sub := b.client.Subscription(name)
	exists, err := sub.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check subscription %q: %w", name, err)
	}
	if !exists {
		sub, err = b.client.CreateSubscription(ctx, name, pubsub.SubscriptionConfig{
			Topic:       t,
			AckDeadline: pubsubAckDeadline,
		})
		if err != nil {
			return nil, fmt.Errorf("create subscription %q: %w", name, err)
		}
	}
	return sub, nil
}

var _ shared.MessageBus = (*PubSubBus)(nil)
