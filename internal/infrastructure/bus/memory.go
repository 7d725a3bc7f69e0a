package bus

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/airp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryBus implements shared.MessageBus for single-process deployments
// and tests. Each (topic, group) pair gets its own queue; messages published
// before Start are buffered and delivered once delivery begins.
type InMemoryBus struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	subs    map[string][]*memorySubscription
	running atomic.Bool
	wg      sync.WaitGroup
	cancel  context.CancelFunc
}

type memorySubscription struct {
	topic   string
	group   string
	handler shared.MessageHandler
	queue   chan shared.Message
}

const memoryQueueDepth = 1024

// NewInMemoryBus creates a new in-memory message bus
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		logger: logger,
		subs:   make(map[string][]*memorySubscription),
	}
}

// Publish delivers a message to every group subscribed to the topic
func (b *InMemoryBus) Publish(ctx context.Context, topic string, msg shared.Message) error {
	b.mu.RLock()
	subs := b.subs[topic]
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.queue <- msg:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Subscribe registers a handler for a topic within a consumer group.
// One handler per (topic, group); later registrations for the same pair
// replace the earlier handler.
func (b *InMemoryBus) Subscribe(topic, group string, handler shared.MessageHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[topic] {
		if sub.group == group {
			sub.handler = handler
			return nil
		}
	}
	b.subs[topic] = append(b.subs[topic], &memorySubscription{
		topic:   topic,
		group:   group,
		handler: handler,
		queue:   make(chan shared.Message, memoryQueueDepth),
	})
	return nil
}

// Start begins delivering queued messages to handlers
func (b *InMemoryBus) Start(ctx context.Context) error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	runCtx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, subs := range b.subs {
		for _, sub := range subs {
			b.wg.Add(1)
			go b.deliver(runCtx, sub)
		}
	}
	b.logger.Info("in-memory bus started")
	return nil
}

// Stop stops delivery and waits for in-flight handlers
func (b *InMemoryBus) Stop(ctx context.Context) error {
	if !b.running.CompareAndSwap(true, false) {
		return nil
	}
	b.cancel()

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
	b.logger.Info("in-memory bus stopped")
	return nil
}

// deliver drains one subscription queue. A handler error requeues the
// message, mirroring the redelivery a broker would perform.
func (b *InMemoryBus) deliver(ctx context.Context, sub *memorySubscription) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sub.queue:
			if err := sub.handler(ctx, msg); err != nil {
				b.logger.Warn("handler failed, requeueing message",
					zap.String("topic", sub.topic),
					zap.String("group", sub.group),
					zap.String("key", msg.Key),
					zap.Error(err))
				select {
				case sub.queue <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

var _ shared.MessageBus = (*InMemoryBus)(nil)
