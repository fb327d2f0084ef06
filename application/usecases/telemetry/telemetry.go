package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/agaii/ping-api/domain/event"
	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/domain/repository"
	"github.com/agaii/ping-api/infrastructure/config"
	"github.com/agaii/ping-api/infrastructure/logger"
	"github.com/agaii/ping-api/infrastructure/metrics"
	"github.com/agaii/ping-api/infrastructure/sessionlog"
)

var (
	// ErrValidation marks caller mistakes: missing module id, missing
	// actor identity where one is required.
	ErrValidation = errors.New("validation failed")

	// ErrSessionNotFound is returned when a session has no recorded
	// events at all.
	ErrSessionNotFound = errors.New("session not found")

	// ErrForbidden is returned when the requesting actor does not own
	// the session it is asking about.
	ErrForbidden = errors.New("forbidden")
)

// SessionLogSink is the append-only file sink consumed by the
// ingestion pipeline. Append failures are surfaced here and absorbed
// by the pipeline; they never fail the batch.
type SessionLogSink interface {
	Append(moduleID, sessionID string, records []sessionlog.Record) error
	Exists(moduleID, sessionID string) bool
}

type TelemetryUseCase interface {
	StartSession(ctx context.Context, actor model.Actor, moduleID string) (*SessionStartResult, error)
	Ingest(ctx context.Context, actor model.Actor, sessionID string, batch []event.RawEvent) (*IngestResult, error)
	EndSession(ctx context.Context, actor model.Actor, sessionID string) (*SessionEndResult, error)
	SessionStats(ctx context.Context, actor model.Actor, sessionID string) (*SessionStatsResult, error)
	Erase(ctx context.Context, actor model.Actor) (*EraseResult, error)
	Export(ctx context.Context, actor model.Actor) (*ExportResult, error)
	AnonymizeUser(ctx context.Context, userID int64) (int64, error)
}

type telemetryUseCase struct {
	repository repository.BehaviorEventRepository
	sink       SessionLogSink
	metrics    metrics.Manager
	logger     *logger.Logger
	policy     config.CapturePolicyConfig
	clock      func() time.Time
}

// NewTelemetryUseCase wires the ingestion pipeline and session
// lifecycle tracker. The capture policy and the clock are fixed at
// construction; nothing here reads ambient process state at call time.
func NewTelemetryUseCase(
	repository repository.BehaviorEventRepository,
	sink SessionLogSink,
	metricsManager metrics.Manager,
	logger *logger.Logger,
	policy config.CapturePolicyConfig,
) TelemetryUseCase {
	return &telemetryUseCase{
		repository: repository,
		sink:       sink,
		metrics:    metricsManager,
		logger:     logger,
		policy:     policy,
		clock:      time.Now,
	}
}
