package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agaii/ping-api/domain/event"
	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/infrastructure/metrics"
	"github.com/agaii/ping-api/infrastructure/privacy"
	"github.com/agaii/ping-api/infrastructure/sessionlog"
	"go.uber.org/zap"
)

// IngestResult echoes how many events arrived and how many survived
// the compliance filter and were persisted. The gap between the two is
// silently dropped material; clients are not told which events failed.
type IngestResult struct {
	EventsReceived int `json:"events_received"`
	EventsSaved    int `json:"events_saved"`
}

// Ingest runs one batch through the pipeline: compliance filter,
// identity anonymization, payload summarization, then both sinks. The
// relational write is a single transaction and decides the batch's
// fate; session log appends happen after it and are best-effort.
func (uc *telemetryUseCase) Ingest(ctx context.Context, actor model.Actor, sessionID string, batch []event.RawEvent) (*IngestResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id cannot be empty", ErrValidation)
	}

	started := uc.clock()
	uc.metrics.IncCounter(metrics.EventsReceivedTotal, float64(len(batch)))

	accepted, rejected := event.Partition(batch)
	if len(rejected) > 0 {
		uc.metrics.IncCounter(metrics.EventsRejectedTotal, float64(len(rejected)))
		uc.logger.Debug("dropped non-compliant events",
			zap.String("sessionID", sessionID),
			zap.Int("rejected", len(rejected)))
	}

	if len(accepted) == 0 {
		return &IngestResult{EventsReceived: len(batch)}, nil
	}

	anonID := privacy.Anonymize(actor.UserID, actor.GuestID, started)

	// The persisted timestamp is always server-assigned; whatever the
	// client reports rides along separately for diagnostics only.
	receivedAt := started.UTC()

	rows := make([]model.BehaviorEvent, 0, len(accepted))
	groups := make(map[string][]sessionlog.Record)
	for _, e := range accepted {
		payload := event.Summarize(e)
		payload["anon_id"] = anonID

		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode event payload: %w", err)
		}

		rows = append(rows, model.BehaviorEvent{
			UserID:         actor.NullUserID(),
			GuestSessionID: actor.NullGuestID(),
			ModuleID:       e.ModuleID,
			SessionID:      sessionID,
			EventType:      string(e.EventType),
			EventData:      data,
			Timestamp:      receivedAt,
		})
		groups[e.ModuleID] = append(groups[e.ModuleID], sessionlog.Record{
			SessionID:       sessionID,
			ModuleID:        e.ModuleID,
			EventType:       string(e.EventType),
			Timestamp:       receivedAt,
			ClientTime:      e.Timestamp,
			ClientTimestamp: e.ClientTimestamp,
			AnonID:          anonID,
			Payload:         payload,
		})
	}

	if err := uc.repository.CreateBatch(ctx, rows); err != nil {
		uc.logger.Error("failed to persist event batch",
			zap.Error(err),
			zap.String("sessionID", sessionID),
			zap.Int("events", len(rows)))
		return nil, fmt.Errorf("persist event batch: %w", err)
	}
	uc.metrics.IncCounter(metrics.EventsSavedTotal, float64(len(rows)))

	for moduleID, records := range groups {
		if err := uc.sink.Append(moduleID, sessionID, records); err != nil {
			uc.metrics.IncCounter(metrics.SessionLogWriteErrorTotal, 1)
			uc.logger.Error("failed to append session log",
				zap.Error(err),
				zap.String("moduleID", moduleID),
				zap.String("sessionID", sessionID))
		}
	}

	uc.metrics.ObserveHistogram(metrics.IngestBatchSeconds, uc.clock().Sub(started).Seconds())

	return &IngestResult{
		EventsReceived: len(batch),
		EventsSaved:    len(accepted),
	}, nil
}
