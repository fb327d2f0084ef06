package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agaii/ping-api/domain/model"
	"go.uber.org/zap"
)

type EraseResult struct {
	EventsDeleted int64     `json:"events_deleted"`
	ErasedAt      time.Time `json:"erased_at"`
}

// ExportedEvent is one row of a data-subject export: the stored record
// as-is, including its post-filter payload snapshot.
type ExportedEvent struct {
	ID        int64           `json:"id"`
	ModuleID  string          `json:"module_id"`
	SessionID string          `json:"session_id"`
	EventType string          `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
	Timestamp time.Time       `json:"timestamp"`
}

type ExportResult struct {
	TotalEvents int64           `json:"total_events"`
	Events      []ExportedEvent `json:"events"`
	ExportedAt  time.Time       `json:"exported_at"`
}

// Erase deletes every relational row recorded against the actor's
// identity. The append-only session logs are untouched: their lines
// carry only the day-bounded anonymized token, never the identity
// being erased.
func (uc *telemetryUseCase) Erase(ctx context.Context, actor model.Actor) (*EraseResult, error) {
	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%w: actor identity required", ErrValidation)
	}

	deleted, err := uc.repository.DeleteByActor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("delete actor events: %w", err)
	}

	uc.logger.Info("erased actor telemetry",
		zap.Int64("eventsDeleted", deleted),
		zap.Bool("registered", actor.IsRegistered()))

	return &EraseResult{
		EventsDeleted: deleted,
		ErasedAt:      uc.clock().UTC(),
	}, nil
}

// Export returns every stored row recorded against the actor's
// identity, in storage order.
func (uc *telemetryUseCase) Export(ctx context.Context, actor model.Actor) (*ExportResult, error) {
	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%w: actor identity required", ErrValidation)
	}

	rows, err := uc.repository.ListByActor(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("list actor events: %w", err)
	}

	events := make([]ExportedEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, ExportedEvent{
			ID:        row.ID,
			ModuleID:  row.ModuleID,
			SessionID: row.SessionID,
			EventType: row.EventType,
			EventData: json.RawMessage(row.EventData),
			Timestamp: row.Timestamp,
		})
	}

	return &ExportResult{
		TotalEvents: int64(len(events)),
		Events:      events,
		ExportedAt:  uc.clock().UTC(),
	}, nil
}

// AnonymizeUser severs the link between a registered user and their
// stored rows without deleting them; used by account hard-deletes that
// keep research data.
func (uc *telemetryUseCase) AnonymizeUser(ctx context.Context, userID int64) (int64, error) {
	detached, err := uc.repository.AnonymizeUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("anonymize user events: %w", err)
	}

	uc.logger.Info("detached user from telemetry",
		zap.Int64("userID", userID),
		zap.Int64("eventsDetached", detached))

	return detached, nil
}
