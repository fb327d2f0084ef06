package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/infrastructure/config"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStartResult hands the client its server-issued session id and
// the capture policy it must honor for the session's lifetime.
type SessionStartResult struct {
	SessionID     string                     `json:"session_id"`
	ModuleID      string                     `json:"module_id"`
	UserID        *int64                     `json:"user_id"`
	GuestID       *string                    `json:"guest_id"`
	StartedAt     time.Time                  `json:"started_at"`
	CapturePolicy config.CapturePolicyConfig `json:"capture_policy"`
}

type SessionEndResult struct {
	SessionID   string    `json:"session_id"`
	TotalEvents int64     `json:"total_events"`
	EndedAt     time.Time `json:"ended_at"`
}

// SessionStatsResult summarizes one session: per-type counts, the
// observed time range, and whether an append-only log file exists for
// it on disk.
type SessionStatsResult struct {
	SessionID     string           `json:"session_id"`
	ModuleID      string           `json:"module_id"`
	TotalEvents   int64            `json:"total_events"`
	EventCounts   map[string]int64 `json:"event_counts"`
	FirstEventAt  time.Time        `json:"first_event_at"`
	LastEventAt   time.Time        `json:"last_event_at"`
	HasSessionLog bool             `json:"has_session_log"`
}

// StartSession issues a fresh session id. No row is written here: a
// session exists in storage only once its first event arrives, so
// abandoned sessions leave no residue.
func (uc *telemetryUseCase) StartSession(ctx context.Context, actor model.Actor, moduleID string) (*SessionStartResult, error) {
	if moduleID == "" {
		return nil, fmt.Errorf("%w: module_id cannot be empty", ErrValidation)
	}

	sessionID := uuid.NewString()
	uc.logger.Info("session started",
		zap.String("sessionID", sessionID),
		zap.String("moduleID", moduleID),
		zap.Bool("registered", actor.IsRegistered()))

	return &SessionStartResult{
		SessionID:     sessionID,
		ModuleID:      moduleID,
		UserID:        actor.UserID,
		GuestID:       actor.GuestID,
		StartedAt:     uc.clock().UTC(),
		CapturePolicy: uc.policy,
	}, nil
}

// EndSession reports how many events the session accumulated. Sessions
// that never produced an event end with a count of zero; that is not
// an error.
func (uc *telemetryUseCase) EndSession(ctx context.Context, actor model.Actor, sessionID string) (*SessionEndResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id cannot be empty", ErrValidation)
	}

	count, err := uc.repository.CountBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count session events: %w", err)
	}

	return &SessionEndResult{
		SessionID:   sessionID,
		TotalEvents: count,
		EndedAt:     uc.clock().UTC(),
	}, nil
}

// SessionStats aggregates a session's stored events. Ownership is
// decided by the session's first event: whoever recorded it owns the
// whole session, and anyone else is refused.
func (uc *telemetryUseCase) SessionStats(ctx context.Context, actor model.Actor, sessionID string) (*SessionStatsResult, error) {
	if actor.IsAnonymous() {
		return nil, fmt.Errorf("%w: actor identity required", ErrValidation)
	}

	rows, err := uc.repository.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session events: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrSessionNotFound
	}
	if !actor.Owns(rows[0]) {
		return nil, ErrForbidden
	}

	counts := make(map[string]int64)
	first, last := rows[0].Timestamp, rows[0].Timestamp
	for _, row := range rows {
		counts[row.EventType]++
		if row.Timestamp.Before(first) {
			first = row.Timestamp
		}
		if row.Timestamp.After(last) {
			last = row.Timestamp
		}
	}

	moduleID := rows[0].ModuleID
	return &SessionStatsResult{
		SessionID:     sessionID,
		ModuleID:      moduleID,
		TotalEvents:   int64(len(rows)),
		EventCounts:   counts,
		FirstEventAt:  first,
		LastEventAt:   last,
		HasSessionLog: uc.sink.Exists(moduleID, sessionID),
	}, nil
}
