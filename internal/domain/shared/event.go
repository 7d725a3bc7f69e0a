package shared

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProposedEvent describes a domain fact before it is durably appended.
// The store assigns identity, ordering and integrity fields.
type ProposedEvent struct {
	TenantID      uuid.UUID
	AggregateID   uuid.UUID
	AggregateType string
	EventType     string
	Payload       json.RawMessage
	CausationID   *uuid.UUID
	CorrelationID uuid.UUID // zero value means the store assigns a fresh one
	UserID        *uuid.UUID
}

// StoredEvent is an immutable, durably committed event. Once written it is
// never mutated or deleted; Checksum must always re-derive to the stored value.
type StoredEvent struct {
	EventID        uuid.UUID       `json:"event_id"`
	TenantID       uuid.UUID       `json:"tenant_id"`
	AggregateID    uuid.UUID       `json:"aggregate_id"`
	AggregateType  string          `json:"aggregate_type"`
	EventType      string          `json:"event_type"`
	EventVersion   int             `json:"event_version"`
	Payload        json.RawMessage `json:"event_data"`
	CausationID    *uuid.UUID      `json:"causation_id,omitempty"`
	CorrelationID  uuid.UUID       `json:"correlation_id"`
	UserID         *uuid.UUID      `json:"user_id,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	SequenceNumber int64           `json:"sequence_number"`
	Checksum       string          `json:"checksum"`
}

// EventStore is the append-only, tenant-partitioned log of domain events.
// Append is the only mutation path; there is no update or delete.
type EventStore interface {
	// Append durably stores a single event and returns it with
	// store-assigned identity, sequence and checksum.
	Append(ctx context.Context, proposed ProposedEvent) (*StoredEvent, error)
	// AppendBatch stores all events in one transaction, or none of them.
	AppendBatch(ctx context.Context, proposed []ProposedEvent) ([]*StoredEvent, error)
	// GetByAggregate returns the events of one aggregate in commit order
	// (sequence ascending). This ordering is authoritative for replay.
	GetByAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]*StoredEvent, error)
	// GetByType returns the most recent events of a type, newest first.
	GetByType(ctx context.Context, tenantID uuid.UUID, eventType string, limit int) ([]*StoredEvent, error)
	// GetByCorrelation returns all events of one logical operation in commit order.
	GetByCorrelation(ctx context.Context, correlationID uuid.UUID) ([]*StoredEvent, error)
	// GetRecent returns the newest events for a tenant, newest first.
	GetRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*StoredEvent, error)
	// GetAfterSequence returns up to limit events with a sequence number
	// strictly greater than after, sequence ascending. Used by the dispatcher.
	GetAfterSequence(ctx context.Context, after int64, limit int) ([]*StoredEvent, error)
	// CountByType returns per-event-type counts for a tenant.
	CountByType(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error)
	// VerifyIntegrity recomputes the checksum of a stored event and compares
	// it with the stored value. A mismatch is reported, never repaired.
	VerifyIntegrity(ctx context.Context, eventID uuid.UUID) (bool, error)
}
