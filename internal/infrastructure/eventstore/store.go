package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GormEventStore implements shared.EventStore on Postgres. Rows are written
// once; the sequence number comes from the database at commit time, so
// commit order and sequence order agree.
type GormEventStore struct {
	db      *gorm.DB
	logger  *zap.Logger
	metrics shared.MetricsSink
}

// NewGormEventStore creates a new GormEventStore
func NewGormEventStore(db *gorm.DB, logger *zap.Logger, metrics shared.MetricsSink) *GormEventStore {
	if metrics == nil {
		metrics = shared.NopMetrics{}
	}
	return &GormEventStore{db: db, logger: logger, metrics: metrics}
}

// Append durably stores a single event and returns it with store-assigned
// identity, sequence and checksum.
func (s *GormEventStore) Append(ctx context.Context, proposed shared.ProposedEvent) (*shared.StoredEvent, error) {
	model, err := s.prepare(proposed)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	stored := model.ToDomain()
	s.metrics.IncCounter(shared.MetricEventsAppended, map[string]string{"event_type": stored.EventType})
	s.logger.Debug("event appended",
		zap.String("event_id", stored.EventID.String()),
		zap.String("event_type", stored.EventType),
		zap.Int64("sequence", stored.SequenceNumber))
	return stored, nil
}

// AppendBatch stores all events in one transaction, or none of them
func (s *GormEventStore) AppendBatch(ctx context.Context, proposed []shared.ProposedEvent) ([]*shared.StoredEvent, error) {
	if len(proposed) == 0 {
		return []*shared.StoredEvent{}, nil
	}

	eventModels := make([]*models.StoredEventModel, len(proposed))
	for i := range proposed {
		model, err := s.prepare(proposed[i])
		if err != nil {
			return nil, err
		}
		eventModels[i] = model
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range eventModels {
			if err := tx.Create(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}

	stored := make([]*shared.StoredEvent, len(eventModels))
	for i, model := range eventModels {
		stored[i] = model.ToDomain()
		s.metrics.IncCounter(shared.MetricEventsAppended, map[string]string{"event_type": stored[i].EventType})
	}
	return stored, nil
}

// prepare validates a proposal and assigns identity, timestamp and checksum
func (s *GormEventStore) prepare(proposed shared.ProposedEvent) (*models.StoredEventModel, error) {
	if proposed.TenantID == uuid.Nil {
		return nil, shared.ErrTenantRequired
	}
	if proposed.AggregateID == uuid.Nil || proposed.EventType == "" || proposed.AggregateType == "" {
		return nil, shared.ErrInvalidInput
	}
	if len(proposed.Payload) == 0 {
		return nil, shared.ErrPayloadMalformed
	}

	correlationID := proposed.CorrelationID
	if correlationID == uuid.Nil {
		correlationID = uuid.New()
	}
	// Truncated to the precision the timestamp column keeps, so the value
	// hashed here is the value VerifyIntegrity re-reads.
	now := time.Now().UTC().Truncate(time.Microsecond)

	return &models.StoredEventModel{
		EventID:       uuid.New(),
		TenantID:      proposed.TenantID,
		AggregateID:   proposed.AggregateID,
		AggregateType: proposed.AggregateType,
		EventType:     proposed.EventType,
		EventVersion:  1,
		EventData:     proposed.Payload,
		CausationID:   proposed.CausationID,
		CorrelationID: correlationID,
		UserID:        proposed.UserID,
		Timestamp:     now,
		Checksum:      ComputeChecksum(proposed.AggregateID, proposed.EventType, proposed.Payload, now),
	}, nil
}

// GetByAggregate returns the events of one aggregate in commit order
func (s *GormEventStore) GetByAggregate(ctx context.Context, tenantID, aggregateID uuid.UUID) ([]*shared.StoredEvent, error) {
	var eventModels []models.StoredEventModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND aggregate_id = ?", tenantID, aggregateID).
		Order("sequence_number ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(eventModels), nil
}

// GetByType returns the most recent events of a type, newest first
func (s *GormEventStore) GetByType(ctx context.Context, tenantID uuid.UUID, eventType string, limit int) ([]*shared.StoredEvent, error) {
	var eventModels []models.StoredEventModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND event_type = ?", tenantID, eventType).
		Order("sequence_number DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(eventModels), nil
}

// GetByCorrelation returns all events of one logical operation in commit order
func (s *GormEventStore) GetByCorrelation(ctx context.Context, correlationID uuid.UUID) ([]*shared.StoredEvent, error) {
	var eventModels []models.StoredEventModel
	if err := s.db.WithContext(ctx).
		Where("correlation_id = ?", correlationID).
		Order("sequence_number ASC").
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(eventModels), nil
}

// GetRecent returns the newest events for a tenant, newest first
func (s *GormEventStore) GetRecent(ctx context.Context, tenantID uuid.UUID, limit int) ([]*shared.StoredEvent, error) {
	var eventModels []models.StoredEventModel
	if err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sequence_number DESC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(eventModels), nil
}

// GetAfterSequence returns up to limit events with sequence strictly greater
// than after, sequence ascending. Cross-tenant: the dispatcher publishes the
// whole log.
func (s *GormEventStore) GetAfterSequence(ctx context.Context, after int64, limit int) ([]*shared.StoredEvent, error) {
	var eventModels []models.StoredEventModel
	if err := s.db.WithContext(ctx).
		Where("sequence_number > ?", after).
		Order("sequence_number ASC").
		Limit(limit).
		Find(&eventModels).Error; err != nil {
		return nil, err
	}
	return toDomainSlice(eventModels), nil
}

// CountByType returns per-event-type counts for a tenant
func (s *GormEventStore) CountByType(ctx context.Context, tenantID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		EventType string
		Count     int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.StoredEventModel{}).
		Select("event_type, COUNT(*) AS count").
		Where("tenant_id = ?", tenantID).
		Group("event_type").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.EventType] = row.Count
	}
	return counts, nil
}

// VerifyIntegrity recomputes the checksum of a stored event and compares it
// with the stored value. A mismatch is reported, never repaired.
func (s *GormEventStore) VerifyIntegrity(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var model models.StoredEventModel
	if err := s.db.WithContext(ctx).
		First(&model, "event_id = ?", eventID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, shared.ErrNotFound
		}
		return false, err
	}

	computed := ComputeChecksum(model.AggregateID, model.EventType, model.EventData, model.Timestamp)
	if computed != model.Checksum {
		s.logger.Error("event checksum mismatch",
			zap.String("event_id", eventID.String()),
			zap.String("stored", model.Checksum),
			zap.String("computed", computed))
		return false, nil
	}
	return true, nil
}

func toDomainSlice(eventModels []models.StoredEventModel) []*shared.StoredEvent {
	events := make([]*shared.StoredEvent, len(eventModels))
	for i := range eventModels {
		events[i] = eventModels[i].ToDomain()
	}
	return events
}
