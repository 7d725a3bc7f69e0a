package ledger

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/airp/ledger/internal/domain/shared"
)

// PayloadRegistry decodes the type-tagged event payloads: one concrete
// schema per event type, validated at the deserialization boundary.
type PayloadRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewPayloadRegistry creates an empty registry
func NewPayloadRegistry() *PayloadRegistry {
	return &PayloadRegistry{types: make(map[string]reflect.Type)}
}

// DefaultPayloadRegistry returns a registry with every ledger payload registered
func DefaultPayloadRegistry() *PayloadRegistry {
	r := NewPayloadRegistry()
	r.Register(EventTypeJournalEntryPosted, &JournalEntryPayload{})
	r.Register(EventTypeInvoiceReceived, &InvoiceReceivedPayload{})
	r.Register(EventTypeInvoiceIssued, &InvoiceIssuedPayload{})
	r.Register(EventTypePaymentExecuted, &PaymentExecutedPayload{})
	return r
}

// Register associates an event type with a payload prototype
func (r *PayloadRegistry) Register(eventType string, prototype Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := reflect.TypeOf(prototype)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	r.types[eventType] = t
}

// Known reports whether a schema is registered for the event type
func (r *PayloadRegistry) Known(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[eventType]
	return ok
}

// Decode unmarshals and validates a payload for the given event type.
// Payloads that fail to parse cleanly are rejected, never defaulted.
func (r *PayloadRegistry) Decode(eventType string, data []byte) (Payload, error) {
	r.mu.RLock()
	t, ok := r.types[eventType]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownEventType, eventType)
	}

	v := reflect.New(t).Interface()
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrPayloadMalformed, eventType, err)
	}

	payload, ok := v.(Payload)
	if !ok {
		return nil, fmt.Errorf("registered type for %s does not implement Payload", eventType)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

// DecodeJournalEntry is a typed convenience for the most common payload
func (r *PayloadRegistry) DecodeJournalEntry(data []byte) (*JournalEntryPayload, error) {
	p, err := r.Decode(EventTypeJournalEntryPosted, data)
	if err != nil {
		return nil, err
	}
	entry, ok := p.(*JournalEntryPayload)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", p)
	}
	return entry, nil
}
