package bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingHandler records how many events it saw
type countingHandler struct {
	types   []string
	handled []*shared.StoredEvent
	err     error
}

func (h *countingHandler) EventTypes() []string { return h.types }

func (h *countingHandler) Handle(_ context.Context, event *shared.StoredEvent) error {
	if h.err != nil {
		return h.err
	}
	h.handled = append(h.handled, event)
	return nil
}

// fakeIdempotencyStore is an in-memory IdempotencyStore without expiry
type fakeIdempotencyStore struct {
	seen map[string]bool
	err  error
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{seen: make(map[string]bool)}
}

func (f *fakeIdempotencyStore) MarkProcessed(_ context.Context, eventID string, _ time.Duration) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	return f.seen[eventID], nil
}

func (f *fakeIdempotencyStore) Close() error { return nil }

func enabledConfig() shared.IdempotencyConfig {
	return shared.IdempotencyConfig{TTL: time.Hour, Enabled: true}
}

func TestIdempotentHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("first delivery is processed", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}}
		h := NewIdempotentHandler(inner, newFakeIdempotencyStore(), enabledConfig(), zap.NewNop(), nil)

		event := storedEvent(1, "JournalEntryPosted")
		require.NoError(t, h.Handle(ctx, event))
		assert.Len(t, inner.handled, 1)
	})

	t.Run("redelivery of the same event is skipped", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}}
		metrics := shared.NewInMemoryMetrics()
		h := NewIdempotentHandler(inner, newFakeIdempotencyStore(), enabledConfig(), zap.NewNop(), metrics)

		event := storedEvent(1, "JournalEntryPosted")
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))

		assert.Len(t, inner.handled, 1)
		assert.Equal(t, int64(1), metrics.Value(shared.MetricEventsDuplicate, map[string]string{"event_type": "JournalEntryPosted"}))
	})

	t.Run("distinct events both process", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}}
		h := NewIdempotentHandler(inner, newFakeIdempotencyStore(), enabledConfig(), zap.NewNop(), nil)

		require.NoError(t, h.Handle(ctx, storedEvent(1, "JournalEntryPosted")))
		require.NoError(t, h.Handle(ctx, storedEvent(2, "JournalEntryPosted")))
		assert.Len(t, inner.handled, 2)
	})

	t.Run("store failure processes anyway", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}}
		store := newFakeIdempotencyStore()
		store.err = errors.New("redis down")
		h := NewIdempotentHandler(inner, store, enabledConfig(), zap.NewNop(), nil)

		require.NoError(t, h.Handle(ctx, storedEvent(1, "JournalEntryPosted")))
		assert.Len(t, inner.handled, 1)
	})

	t.Run("handler error propagates", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}, err: errors.New("storage failure")}
		h := NewIdempotentHandler(inner, newFakeIdempotencyStore(), enabledConfig(), zap.NewNop(), nil)

		assert.Error(t, h.Handle(ctx, storedEvent(1, "JournalEntryPosted")))
	})

	t.Run("disabled config passes straight through", func(t *testing.T) {
		inner := &countingHandler{types: []string{"JournalEntryPosted"}}
		h := NewIdempotentHandler(inner, newFakeIdempotencyStore(),
			shared.IdempotencyConfig{Enabled: false}, zap.NewNop(), nil)

		event := storedEvent(1, "JournalEntryPosted")
		require.NoError(t, h.Handle(ctx, event))
		require.NoError(t, h.Handle(ctx, event))
		assert.Len(t, inner.handled, 2)
	})
}

func TestIdempotentHandler_EventTypes(t *testing.T) {
	inner := &countingHandler{types: []string{"InvoiceReceived", "PaymentExecuted"}}
	h := NewIdempotentHandler(inner, newFakeIdempotencyStore(), enabledConfig(), zap.NewNop(), nil)
	assert.Equal(t, []string{"InvoiceReceived", "PaymentExecuted"}, h.EventTypes())
}

func TestIdempotentHandler_KeyIsEventID(t *testing.T) {
	inner := &countingHandler{types: []string{"JournalEntryPosted"}}
	store := newFakeIdempotencyStore()
	h := NewIdempotentHandler(inner, store, enabledConfig(), zap.NewNop(), nil)

	event := storedEvent(1, "JournalEntryPosted")
	require.NoError(t, h.Handle(context.Background(), event))

	processed, err := store.IsProcessed(context.Background(), event.EventID.String())
	require.NoError(t, err)
	assert.True(t, processed)
	processed, _ = store.IsProcessed(context.Background(), uuid.New().String())
	assert.False(t, processed)
}
