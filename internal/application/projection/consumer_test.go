package projection

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/bus"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// recordingHandler captures decoded events
type recordingHandler struct {
	types []string

	mu     sync.Mutex
	events []*shared.StoredEvent
}

func (h *recordingHandler) EventTypes() []string { return h.types }

func (h *recordingHandler) Handle(_ context.Context, event *shared.StoredEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return nil
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func (h *recordingHandler) first() *shared.StoredEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events[0]
}

func testTopics() *bus.TopicMapper {
	return bus.NewTopicMapper("ledger.events", []string{
		domainledger.EventTypeJournalEntryPosted,
		domainledger.EventTypeInvoiceReceived,
		domainledger.EventTypeInvoiceIssued,
		domainledger.EventTypePaymentExecuted,
	})
}

func TestConsumer_RegisterAndConsume(t *testing.T) {
	messageBus := bus.NewInMemoryBus(zap.NewNop())
	consumer := NewConsumer(messageBus, testTopics(), "projection", zap.NewNop())

	handler := &recordingHandler{types: []string{domainledger.EventTypeJournalEntryPosted}}
	require.NoError(t, consumer.Register(handler))

	ctx := context.Background()
	require.NoError(t, consumer.Start(ctx))
	defer func() { _ = consumer.Stop(context.Background()) }()

	event := &shared.StoredEvent{
		EventID:        uuid.New(),
		TenantID:       uuid.New(),
		AggregateID:    uuid.New(),
		EventType:      domainledger.EventTypeJournalEntryPosted,
		EventVersion:   1,
		Payload:        json.RawMessage(`{"entryNumber":"JE-1"}`),
		CorrelationID:  uuid.New(),
		Timestamp:      time.Now().UTC(),
		SequenceNumber: 7,
	}
	envelope, err := json.Marshal(event)
	require.NoError(t, err)

	require.NoError(t, messageBus.Publish(ctx, "ledger.events.journal-entry-posted",
		shared.Message{Key: event.EventID.String(), Value: envelope}))

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && handler.count() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, handler.count())
	decoded := handler.first()
	assert.Equal(t, event.EventID, decoded.EventID)
	assert.Equal(t, event.SequenceNumber, decoded.SequenceNumber)
	assert.JSONEq(t, string(event.Payload), string(decoded.Payload))
}

func TestConsumer_RegistersEveryDeclaredType(t *testing.T) {
	messageBus := bus.NewInMemoryBus(zap.NewNop())
	consumer := NewConsumer(messageBus, testTopics(), "projection", zap.NewNop())

	handler := &recordingHandler{types: []string{
		domainledger.EventTypeInvoiceReceived,
		domainledger.EventTypeInvoiceIssued,
		domainledger.EventTypePaymentExecuted,
	}}
	require.NoError(t, consumer.Register(handler))

	ctx := context.Background()
	require.NoError(t, consumer.Start(ctx))
	defer func() { _ = consumer.Stop(context.Background()) }()

	for _, eventType := range handler.types {
		event := &shared.StoredEvent{EventID: uuid.New(), EventType: eventType, Payload: json.RawMessage(`{}`)}
		envelope, err := json.Marshal(event)
		require.NoError(t, err)
		topic := testTopics().TopicFor(eventType)
		require.NoError(t, messageBus.Publish(ctx, topic, shared.Message{Key: event.EventID.String(), Value: envelope}))
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && handler.count() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 3, handler.count())
}

func TestConsumer_UndecodableEnvelopeIsAcked(t *testing.T) {
	messageBus := bus.NewInMemoryBus(zap.NewNop())
	consumer := NewConsumer(messageBus, testTopics(), "projection", zap.NewNop())

	handler := &recordingHandler{types: []string{domainledger.EventTypeJournalEntryPosted}}
	require.NoError(t, consumer.Register(handler))

	ctx := context.Background()
	require.NoError(t, consumer.Start(ctx))
	defer func() { _ = consumer.Stop(context.Background()) }()

	require.NoError(t, messageBus.Publish(ctx, "ledger.events.journal-entry-posted",
		shared.Message{Key: "bad", Value: []byte(`not-json`)}))

	// give delivery a moment; an acked poison message never reaches the handler
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, handler.count())
}
