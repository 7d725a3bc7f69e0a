package ledger

import (
	"context"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultQueryLimit caps event queries that omit an explicit limit
const DefaultQueryLimit = 100

// VerifyResult reports an integrity check on one stored event
type VerifyResult struct {
	EventID uuid.UUID `json:"eventId"`
	Valid   bool      `json:"valid"`
	Message string    `json:"message"`
}

// EventQueryService exposes read access to the event log
type EventQueryService struct {
	store shared.EventStore
}

// NewEventQueryService creates a new EventQueryService
func NewEventQueryService(store shared.EventStore) *EventQueryService {
	return &EventQueryService{store: store}
}

// ByAggregate returns an aggregate's events in commit order
func (s *EventQueryService) ByAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]*shared.StoredEvent, error) {
	return s.store.GetByAggregate(ctx, tenantID, aggregateID)
}

// ByType returns the most recent events of one type
func (s *EventQueryService) ByType(ctx context.Context, tenantID uuid.UUID, eventType string, limit int) ([]*shared.StoredEvent, error) {
	return s.store.GetByType(ctx, tenantID, eventType, normalizeLimit(limit))
}

// ByCorrelation returns every event of one logical operation
func (s *EventQueryService) ByCorrelation(ctx context.Context, correlationID uuid.UUID) ([]*shared.StoredEvent, error) {
	return s.store.GetByCorrelation(ctx, correlationID)
}

// Recent returns the newest events for a tenant
func (s *EventQueryService) Recent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*shared.StoredEvent, error) {
	return s.store.GetRecent(ctx, tenantID, normalizeLimit(limit))
}

// Verify recomputes a stored event's checksum
func (s *EventQueryService) Verify(ctx context.Context, eventID uuid.UUID) (*VerifyResult, error) {
	valid, err := s.store.VerifyIntegrity(ctx, eventID)
	if err != nil {
		return nil, err
	}
	result := &VerifyResult{EventID: eventID, Valid: valid}
	if valid {
		result.Message = "event integrity verified"
	} else {
		result.Message = "checksum mismatch: event data does not match stored checksum"
	}
	return result, nil
}

// Stats returns per-event-type counts for a tenant
func (s *EventQueryService) Stats(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	return s.store.CountByType(ctx, tenantID)
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultQueryLimit
	}
	return limit
}
