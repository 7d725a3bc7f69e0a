package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeEventStore serves a fixed slice of stored events
type fakeEventStore struct {
	events []*shared.StoredEvent
	err    error
}

func (f *fakeEventStore) Append(context.Context, shared.ProposedEvent) (*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) AppendBatch(context.Context, []shared.ProposedEvent) ([]*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) GetByAggregate(context.Context, uuid.UUID, uuid.UUID) ([]*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) GetByType(context.Context, uuid.UUID, string, int) ([]*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) GetByCorrelation(context.Context, uuid.UUID) ([]*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) GetRecent(context.Context, uuid.UUID, int) ([]*shared.StoredEvent, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) GetAfterSequence(_ context.Context, after int64, limit int) ([]*shared.StoredEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*shared.StoredEvent
	for _, e := range f.events {
		if e.SequenceNumber > after {
			out = append(out, e)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeEventStore) CountByType(context.Context, uuid.UUID) (map[string]int64, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeEventStore) VerifyIntegrity(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("not implemented")
}

// fakeCursorStore keeps cursors in memory
type fakeCursorStore struct {
	mu      sync.Mutex
	cursors map[string]int64
}

func newFakeCursorStore() *fakeCursorStore {
	return &fakeCursorStore{cursors: make(map[string]int64)}
}

func (f *fakeCursorStore) Get(_ context.Context, name string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursors[name], nil
}

func (f *fakeCursorStore) Advance(_ context.Context, name string, sequence int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cursors[name] < sequence {
		f.cursors[name] = sequence
	}
	return nil
}

func (f *fakeCursorStore) Reset(_ context.Context, name string, fromSequence int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cursors[name] = fromSequence
	return nil
}

// fakeBus records publishes and can fail on a specific key
type fakeBus struct {
	mu        sync.Mutex
	published []publishedMsg
	failOnKey string
}

type publishedMsg struct {
	topic string
	msg   shared.Message
}

func (f *fakeBus) Publish(_ context.Context, topic string, msg shared.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOnKey != "" && msg.Key == f.failOnKey {
		return errors.New("broker unavailable")
	}
	f.published = append(f.published, publishedMsg{topic: topic, msg: msg})
	return nil
}

func (f *fakeBus) Subscribe(string, string, shared.MessageHandler) error { return nil }
func (f *fakeBus) Start(context.Context) error                          { return nil }
func (f *fakeBus) Stop(context.Context) error                           { return nil }

func storedEvent(seq int64, eventType string) *shared.StoredEvent {
	return &shared.StoredEvent{
		EventID:        uuid.New(),
		TenantID:       uuid.New(),
		AggregateID:    uuid.New(),
		AggregateType:  "JournalEntry",
		EventType:      eventType,
		EventVersion:   1,
		Payload:        json.RawMessage(`{}`),
		CorrelationID:  uuid.New(),
		Timestamp:      time.Now().UTC(),
		SequenceNumber: seq,
	}
}

func newTestDispatcher(store shared.EventStore, cursors CursorStore, b shared.MessageBus, metrics shared.MetricsSink) *Dispatcher {
	topics := NewTopicMapper("ledger.events", []string{"JournalEntryPosted", "InvoiceReceived"})
	return NewDispatcher(store, cursors, b, topics, zap.NewNop(), metrics, DispatcherOptions{Name: "test", BatchSize: 10})
}

func TestDispatcher_ProcessBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes events above the cursor and advances it", func(t *testing.T) {
		store := &fakeEventStore{events: []*shared.StoredEvent{
			storedEvent(1, "JournalEntryPosted"),
			storedEvent(2, "InvoiceReceived"),
			storedEvent(3, "JournalEntryPosted"),
		}}
		cursors := newFakeCursorStore()
		b := &fakeBus{}
		metrics := shared.NewInMemoryMetrics()
		d := newTestDispatcher(store, cursors, b, metrics)

		published, err := d.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, published)

		cursor, _ := cursors.Get(ctx, "test")
		assert.Equal(t, int64(3), cursor)

		require.Len(t, b.published, 3)
		assert.Equal(t, "ledger.events.journal-entry-posted", b.published[0].topic)
		assert.Equal(t, "ledger.events.invoice-received", b.published[1].topic)
		assert.Equal(t, store.events[0].EventID.String(), b.published[0].msg.Key)
		assert.Equal(t, int64(3), metrics.Value(shared.MetricEventsPublished, map[string]string{"topic": "ledger.events.journal-entry-posted"})+
			metrics.Value(shared.MetricEventsPublished, map[string]string{"topic": "ledger.events.invoice-received"}))
	})

	t.Run("envelope is the serialized stored event", func(t *testing.T) {
		event := storedEvent(1, "JournalEntryPosted")
		store := &fakeEventStore{events: []*shared.StoredEvent{event}}
		b := &fakeBus{}
		d := newTestDispatcher(store, newFakeCursorStore(), b, nil)

		_, err := d.ProcessBatch(ctx)
		require.NoError(t, err)

		var decoded shared.StoredEvent
		require.NoError(t, json.Unmarshal(b.published[0].msg.Value, &decoded))
		assert.Equal(t, event.EventID, decoded.EventID)
		assert.Equal(t, event.SequenceNumber, decoded.SequenceNumber)
	})

	t.Run("second batch starts where the first ended", func(t *testing.T) {
		store := &fakeEventStore{events: []*shared.StoredEvent{
			storedEvent(1, "JournalEntryPosted"),
			storedEvent(2, "JournalEntryPosted"),
		}}
		cursors := newFakeCursorStore()
		b := &fakeBus{}
		d := newTestDispatcher(store, cursors, b, nil)

		_, err := d.ProcessBatch(ctx)
		require.NoError(t, err)

		published, err := d.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, published)
		assert.Len(t, b.published, 2)
	})

	t.Run("publish failure stops the batch before the failed event", func(t *testing.T) {
		events := []*shared.StoredEvent{
			storedEvent(1, "JournalEntryPosted"),
			storedEvent(2, "JournalEntryPosted"),
			storedEvent(3, "JournalEntryPosted"),
		}
		store := &fakeEventStore{events: events}
		cursors := newFakeCursorStore()
		b := &fakeBus{failOnKey: events[1].EventID.String()}
		metrics := shared.NewInMemoryMetrics()
		d := newTestDispatcher(store, cursors, b, metrics)

		published, err := d.ProcessBatch(ctx)
		require.Error(t, err)
		assert.Equal(t, 1, published)

		// cursor stays at the last successful publish; the failed event
		// is retried first on the next poll
		cursor, _ := cursors.Get(ctx, "test")
		assert.Equal(t, int64(1), cursor)
		assert.Equal(t, int64(1), metrics.Value(shared.MetricPublishFailures, map[string]string{"topic": "ledger.events.journal-entry-posted"}))
	})

	t.Run("store scan failure is returned", func(t *testing.T) {
		store := &fakeEventStore{err: errors.New("connection refused")}
		d := newTestDispatcher(store, newFakeCursorStore(), &fakeBus{}, nil)

		_, err := d.ProcessBatch(ctx)
		assert.Error(t, err)
	})
}

func TestDispatcher_Redrive(t *testing.T) {
	ctx := context.Background()

	t.Run("rewinds the cursor", func(t *testing.T) {
		store := &fakeEventStore{events: []*shared.StoredEvent{
			storedEvent(1, "JournalEntryPosted"),
			storedEvent(2, "JournalEntryPosted"),
		}}
		cursors := newFakeCursorStore()
		b := &fakeBus{}
		d := newTestDispatcher(store, cursors, b, nil)

		_, err := d.ProcessBatch(ctx)
		require.NoError(t, err)
		require.Len(t, b.published, 2)

		require.NoError(t, d.Redrive(ctx, 0))

		published, err := d.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, published)
		assert.Len(t, b.published, 4)
	})

	t.Run("negative sequence is rejected", func(t *testing.T) {
		d := newTestDispatcher(&fakeEventStore{}, newFakeCursorStore(), &fakeBus{}, nil)
		assert.ErrorIs(t, d.Redrive(ctx, -1), shared.ErrCursorOutOfRange)
	})
}

func TestDispatcher_StartStop(t *testing.T) {
	store := &fakeEventStore{events: []*shared.StoredEvent{storedEvent(1, "JournalEntryPosted")}}
	cursors := newFakeCursorStore()
	b := &fakeBus{}
	topics := NewTopicMapper("ledger.events", []string{"JournalEntryPosted"})
	d := NewDispatcher(store, cursors, b, topics, zap.NewNop(), nil,
		DispatcherOptions{Name: "test", BatchSize: 10, PollInterval: 10 * time.Millisecond})

	require.NoError(t, d.Start(context.Background()))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		n := len(b.published)
		b.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Stop(stopCtx))

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, len(b.published))
}
