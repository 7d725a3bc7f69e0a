package models

import (
	"time"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// StoredEventModel is the persistence model for the append-only event store.
// Rows are inserted once and never updated or deleted; SequenceNumber is a
// bigserial assigned by the database at commit time.
type StoredEventModel struct {
	SequenceNumber int64      `gorm:"primaryKey;autoIncrement"`
	EventID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	TenantID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_event_store_tenant_type,priority:1"`
	AggregateID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_event_store_aggregate"`
	AggregateType  string     `gorm:"type:varchar(255);not null"`
	EventType      string     `gorm:"type:varchar(255);not null;index:idx_event_store_tenant_type,priority:2"`
	EventVersion   int        `gorm:"not null;default:1"`
	EventData      []byte     `gorm:"type:text;not null"`
	CausationID    *uuid.UUID `gorm:"type:uuid"`
	CorrelationID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_event_store_correlation"`
	UserID         *uuid.UUID `gorm:"type:uuid"`
	Timestamp      time.Time  `gorm:"not null"`
	Checksum       string     `gorm:"type:char(64);not null"`
}

// TableName returns the table name for GORM
func (StoredEventModel) TableName() string {
	return "event_store"
}

// ToDomain converts the persistence model to a domain StoredEvent
func (m *StoredEventModel) ToDomain() *shared.StoredEvent {
	return &shared.StoredEvent{
		EventID:        m.EventID,
		TenantID:       m.TenantID,
		AggregateID:    m.AggregateID,
		AggregateType:  m.AggregateType,
		EventType:      m.EventType,
		EventVersion:   m.EventVersion,
		Payload:        m.EventData,
		CausationID:    m.CausationID,
		CorrelationID:  m.CorrelationID,
		UserID:         m.UserID,
		Timestamp:      m.Timestamp,
		SequenceNumber: m.SequenceNumber,
		Checksum:       m.Checksum,
	}
}

// StoredEventModelFromDomain creates a persistence model from a domain StoredEvent
func StoredEventModelFromDomain(e *shared.StoredEvent) *StoredEventModel {
	return &StoredEventModel{
		SequenceNumber: e.SequenceNumber,
		EventID:        e.EventID,
		TenantID:       e.TenantID,
		AggregateID:    e.AggregateID,
		AggregateType:  e.AggregateType,
		EventType:      e.EventType,
		EventVersion:   e.EventVersion,
		EventData:      e.Payload,
		CausationID:    e.CausationID,
		CorrelationID:  e.CorrelationID,
		UserID:         e.UserID,
		Timestamp:      e.Timestamp,
		Checksum:       e.Checksum,
	}
}
