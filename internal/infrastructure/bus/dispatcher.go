package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/airp/ledger/internal/domain/shared"
	"go.uber.org/zap"
)

// CursorStore persists the dispatcher's publish position
type CursorStore interface {
	// Get returns the last published sequence, creating a zero cursor on first use
	Get(ctx context.Context, name string) (int64, error)
	// Advance moves the cursor forward; never rewinds
	Advance(ctx context.Context, name string, sequence int64) error
	// Reset rewinds the cursor so later events are republished
	Reset(ctx context.Context, name string, fromSequence int64) error
}

// DispatcherOptions tunes the polling loop
type DispatcherOptions struct {
	Name         string
	BatchSize    int
	PollInterval time.Duration
}

// Dispatcher publishes durably committed events to the message bus. The event
// store itself is the outbox: the dispatcher scans for sequence numbers above
// its cursor and advances the cursor only after a successful publish, which
// makes delivery at-least-once across crashes and restarts.
type Dispatcher struct {
	store   shared.EventStore
	cursors CursorStore
	bus     shared.MessageBus
	topics  *TopicMapper
	logger  *zap.Logger
	metrics shared.MetricsSink
	opts    DispatcherOptions

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(
	store shared.EventStore,
	cursors CursorStore,
	messageBus shared.MessageBus,
	topics *TopicMapper,
	logger *zap.Logger,
	metrics shared.MetricsSink,
	opts DispatcherOptions,
) *Dispatcher {
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 2 * time.Second
	}
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	return &Dispatcher{
		store:   store,
		cursors: cursors,
		bus:     messageBus,
		topics:  topics,
		logger:  logger,
		metrics: metrics,
		opts:    opts,
	}
}

// Start begins the polling loop
func (d *Dispatcher) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ticker := time.NewTicker(d.opts.PollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				if _, err := d.ProcessBatch(runCtx); err != nil {
					d.logger.Error("dispatch batch failed", zap.Error(err))
				}
			}
		}
	}()
	d.logger.Info("dispatcher started",
		zap.String("name", d.opts.Name),
		zap.Int("batch_size", d.opts.BatchSize),
		zap.Duration("poll_interval", d.opts.PollInterval))
	return nil
}

// Stop halts the polling loop and waits for an in-flight batch
func (d *Dispatcher) Stop(ctx context.Context) error {
	if d.cancel != nil {
		d.cancel()
	}
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	d.logger.Info("dispatcher stopped", zap.String("name", d.opts.Name))
	return nil
}

// ProcessBatch publishes one batch of unpublished events and returns how many
// were published. The cursor advances after each successful publish; a
// publish failure stops the batch so the failed event is retried first on
// the next poll.
func (d *Dispatcher) ProcessBatch(ctx context.Context) (int, error) {
	cursor, err := d.cursors.Get(ctx, d.opts.Name)
	if err != nil {
		return 0, fmt.Errorf("load publish cursor: %w", err)
	}

	events, err := d.store.GetAfterSequence(ctx, cursor, d.opts.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("scan event store: %w", err)
	}

	published := 0
	for _, event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			return published, fmt.Errorf("marshal event %s: %w", event.EventID, err)
		}
		topic := d.topics.TopicFor(event.EventType)
		msg := shared.Message{Key: event.EventID.String(), Value: payload}
		if err := d.bus.Publish(ctx, topic, msg); err != nil {
			d.metrics.IncCounter(shared.MetricPublishFailures, map[string]string{"topic": topic})
			return published, fmt.Errorf("publish event %s: %w", event.EventID, err)
		}
		if err := d.cursors.Advance(ctx, d.opts.Name, event.SequenceNumber); err != nil {
			// Event is already on the bus; a stale cursor only means
			// redelivery, which consumers absorb.
			d.logger.Warn("failed to advance publish cursor",
				zap.Int64("sequence", event.SequenceNumber),
				zap.Error(err))
		}
		d.metrics.IncCounter(shared.MetricEventsPublished, map[string]string{"topic": topic})
		published++
	}

	if published > 0 {
		d.logger.Debug("batch published",
			zap.Int("count", published),
			zap.Int64("cursor", events[published-1].SequenceNumber))
	}
	return published, nil
}

// Redrive rewinds the cursor so every event after fromSequence is published
// again. Used to backfill consumers after an outage or a rebuilt projection.
func (d *Dispatcher) Redrive(ctx context.Context, fromSequence int64) error {
	if fromSequence < 0 {
		return shared.ErrCursorOutOfRange
	}
	if err := d.cursors.Reset(ctx, d.opts.Name, fromSequence); err != nil {
		return fmt.Errorf("reset publish cursor: %w", err)
	}
	d.logger.Info("publish cursor reset",
		zap.String("name", d.opts.Name),
		zap.Int64("from_sequence", fromSequence))
	return nil
}
