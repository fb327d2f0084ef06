package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/agaii/ping-api/domain/event"
	"github.com/agaii/ping-api/domain/model"
	"github.com/agaii/ping-api/infrastructure/config"
	"github.com/agaii/ping-api/infrastructure/logger"
	"github.com/agaii/ping-api/infrastructure/sessionlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepository struct {
	mu     sync.Mutex
	nextID int64
	rows   []model.BehaviorEvent
}

func (r *fakeRepository) CreateBatch(ctx context.Context, events []model.BehaviorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range events {
		r.nextID++
		e.ID = r.nextID
		r.rows = append(r.rows, e)
	}
	return nil
}

func (r *fakeRepository) CountBySession(ctx context.Context, sessionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.rows {
		if e.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

func (r *fakeRepository) ListBySession(ctx context.Context, sessionID string) ([]model.BehaviorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.BehaviorEvent
	for _, e := range r.rows {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepository) ListByActor(ctx context.Context, actor model.Actor) ([]model.BehaviorEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.BehaviorEvent
	for _, e := range r.rows {
		if actor.Owns(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeRepository) DeleteByActor(ctx context.Context, actor model.Actor) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []model.BehaviorEvent
	var deleted int64
	for _, e := range r.rows {
		if actor.Owns(e) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.rows = kept
	return deleted, nil
}

func (r *fakeRepository) AnonymizeUser(ctx context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var detached int64
	for i := range r.rows {
		if r.rows[i].UserID.Valid && r.rows[i].UserID.Int64 == userID {
			r.rows[i].UserID.Valid = false
			r.rows[i].UserID.Int64 = 0
			detached++
		}
	}
	return detached, nil
}

type fakeMetrics struct {
	mu       sync.Mutex
	counters map[string]float64
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{counters: make(map[string]float64)}
}

func (m *fakeMetrics) NewCounter(name, description string)                 {}
func (m *fakeMetrics) NewGauge(name, description string)                   {}
func (m *fakeMetrics) NewHistogram(name, description string, _ ...float64) {}
func (m *fakeMetrics) SetGauge(name string, value float64)                 {}
func (m *fakeMetrics) ObserveHistogram(name string, value float64)         {}

func (m *fakeMetrics) IncCounter(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
}

func (m *fakeMetrics) counter(name string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

func newTestUseCase(t *testing.T) (TelemetryUseCase, *fakeRepository, *sessionlog.Writer, *fakeMetrics) {
	t.Helper()

	log, err := logger.NewDevelopmentLogger()
	require.NoError(t, err)

	repo := &fakeRepository{}
	writer := sessionlog.NewWriter(sessionlog.NewResolver(t.TempDir()))
	m := newFakeMetrics()

	policy := config.CapturePolicyConfig{
		TelemetryEnabled: true,
		CaptureKeyboard:  true,
		CaptureMouse:     true,
		CaptureFocusBlur: true,
		SamplingRate:     1.0,
		BatchMs:          5000,
	}

	return NewTelemetryUseCase(repo, writer, m, log, policy), repo, writer, m
}

func registeredActor(id int64) model.Actor {
	return model.Actor{UserID: &id}
}

func guestActor(id string) model.Actor {
	return model.Actor{GuestID: &id}
}

func TestStartSessionRequiresModule(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.StartSession(context.Background(), registeredActor(1), "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestStartSessionIssuesUniqueIDs(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	first, err := uc.StartSession(context.Background(), registeredActor(1), "algebra-1")
	require.NoError(t, err)
	second, err := uc.StartSession(context.Background(), registeredActor(1), "algebra-1")
	require.NoError(t, err)

	assert.NotEmpty(t, first.SessionID)
	assert.NotEqual(t, first.SessionID, second.SessionID)
	assert.True(t, first.CapturePolicy.TelemetryEnabled)
	assert.Equal(t, "algebra-1", first.ModuleID)
}

func TestIngestFiltersAndPersists(t *testing.T) {
	uc, repo, writer, m := newTestUseCase(t)
	ctx := context.Background()
	actor := registeredActor(7)

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 10, "y": 20}},
		{ModuleID: "algebra-1", EventType: event.TypeKeyDown, Payload: map[string]any{"code": "KeyA", "key": "a"}},
		{ModuleID: "algebra-1", EventType: event.TypeKeyDown, Payload: map[string]any{"code": "KeyB"}},
	}

	result, err := uc.Ingest(ctx, actor, "sess-1", batch)
	require.NoError(t, err)

	assert.Equal(t, 3, result.EventsReceived)
	assert.Equal(t, 2, result.EventsSaved)

	rows, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "click", rows[0].EventType)
	assert.Equal(t, "key_down", rows[1].EventType)

	// The surviving key event must not carry the literal key.
	var payload map[string]any
	require.NoError(t, json.Unmarshal(rows[1].EventData, &payload))
	assert.Equal(t, "KeyB", payload["code"])
	assert.NotContains(t, payload, "key")
	assert.NotEmpty(t, payload["anon_id"])

	assert.True(t, writer.Exists("algebra-1", "sess-1"))
	assert.Equal(t, float64(3), m.counter("telemetry_events_received_total"))
	assert.Equal(t, float64(2), m.counter("telemetry_events_saved_total"))
	assert.Equal(t, float64(1), m.counter("telemetry_events_rejected_total"))
}

func TestIngestEmptyAfterFilterWritesNothing(t *testing.T) {
	uc, repo, writer, _ := newTestUseCase(t)
	ctx := context.Background()

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeKeyDown, Payload: map[string]any{"key": "a"}},
		{ModuleID: "algebra-1", EventType: "scroll", Payload: map[string]any{}},
	}

	result, err := uc.Ingest(ctx, guestActor("guest-1"), "sess-2", batch)
	require.NoError(t, err)

	assert.Equal(t, 2, result.EventsReceived)
	assert.Equal(t, 0, result.EventsSaved)

	count, err := repo.CountBySession(ctx, "sess-2")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.False(t, writer.Exists("algebra-1", "sess-2"))
}

func TestIngestSummarizesTextInput(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)
	ctx := context.Background()

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeTextInput, Payload: map[string]any{
			"value":    "secret answer",
			"input_id": "q3",
		}},
	}

	_, err := uc.Ingest(ctx, guestActor("guest-2"), "sess-3", batch)
	require.NoError(t, err)

	rows, err := repo.ListBySession(ctx, "sess-3")
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rows[0].EventData, &payload))
	assert.Equal(t, float64(13), payload["length"])
	assert.Equal(t, "q3", payload["field_id"])
	assert.NotContains(t, payload, "value")
}

func TestIngestDuplicateBatchDuplicatesRows(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)
	ctx := context.Background()
	actor := registeredActor(9)

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 1}},
	}

	_, err := uc.Ingest(ctx, actor, "sess-4", batch)
	require.NoError(t, err)
	_, err = uc.Ingest(ctx, actor, "sess-4", batch)
	require.NoError(t, err)

	count, err := repo.CountBySession(ctx, "sess-4")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEndSessionCountsStoredEvents(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()
	actor := registeredActor(7)

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 10}},
		{ModuleID: "algebra-1", EventType: event.TypeKeyDown, Payload: map[string]any{"key": "a"}},
		{ModuleID: "algebra-1", EventType: event.TypeKeyDown, Payload: map[string]any{"code": "KeyB"}},
	}
	_, err := uc.Ingest(ctx, actor, "sess-5", batch)
	require.NoError(t, err)

	result, err := uc.EndSession(ctx, actor, "sess-5")
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalEvents)
}

func TestEndSessionUnknownSessionIsZero(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	result, err := uc.EndSession(context.Background(), registeredActor(1), "never-started")
	require.NoError(t, err)
	assert.Zero(t, result.TotalEvents)
}

func TestSessionStats(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()
	actor := registeredActor(7)

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 10}},
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 11}},
		{ModuleID: "algebra-1", EventType: event.TypeWindowBlur},
	}
	_, err := uc.Ingest(ctx, actor, "sess-6", batch)
	require.NoError(t, err)

	stats, err := uc.SessionStats(ctx, actor, "sess-6")
	require.NoError(t, err)

	assert.Equal(t, int64(3), stats.TotalEvents)
	assert.Equal(t, int64(2), stats.EventCounts["click"])
	assert.Equal(t, int64(1), stats.EventCounts["window_blur"])
	assert.Equal(t, "algebra-1", stats.ModuleID)
	assert.True(t, stats.HasSessionLog)
	assert.False(t, stats.LastEventAt.Before(stats.FirstEventAt))
}

func TestSessionStatsNotFound(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.SessionStats(context.Background(), registeredActor(1), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStatsForbiddenForOtherActor(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 1}},
	}
	_, err := uc.Ingest(ctx, registeredActor(7), "sess-7", batch)
	require.NoError(t, err)

	_, err = uc.SessionStats(ctx, registeredActor(8), "sess-7")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = uc.SessionStats(ctx, guestActor("guest-x"), "sess-7")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestEraseDeletesOnlyOwnRows(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)
	ctx := context.Background()
	owner := registeredActor(7)
	other := registeredActor(8)

	ownBatch := make([]event.RawEvent, 5)
	for i := range ownBatch {
		ownBatch[i] = event.RawEvent{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": i}}
	}
	otherBatch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 1}},
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 2}},
	}

	_, err := uc.Ingest(ctx, owner, "sess-own", ownBatch)
	require.NoError(t, err)
	_, err = uc.Ingest(ctx, other, "sess-other", otherBatch)
	require.NoError(t, err)

	result, err := uc.Erase(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.EventsDeleted)

	remaining, err := repo.ListByActor(ctx, other)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestEraseRequiresIdentity(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)

	_, err := uc.Erase(context.Background(), model.Actor{})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestExportReturnsStoredRows(t *testing.T) {
	uc, _, _, _ := newTestUseCase(t)
	ctx := context.Background()
	guest := guestActor("guest-9")

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 1}},
		{ModuleID: "geometry-2", EventType: event.TypeWindowFocus},
	}
	_, err := uc.Ingest(ctx, guest, "sess-8", batch)
	require.NoError(t, err)

	result, err := uc.Export(ctx, guest)
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalEvents)
	require.Len(t, result.Events, 2)
	assert.Equal(t, "algebra-1", result.Events[0].ModuleID)
	assert.Equal(t, "geometry-2", result.Events[1].ModuleID)
}

func TestAnonymizeUserDetachesRows(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)
	ctx := context.Background()
	actor := registeredActor(42)

	batch := []event.RawEvent{
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 1}},
		{ModuleID: "algebra-1", EventType: event.TypeClick, Payload: map[string]any{"x": 2}},
	}
	_, err := uc.Ingest(ctx, actor, "sess-9", batch)
	require.NoError(t, err)

	detached, err := uc.AnonymizeUser(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(2), detached)

	// Rows survive but are no longer reachable through the identity.
	rows, err := repo.ListByActor(ctx, actor)
	require.NoError(t, err)
	assert.Empty(t, rows)

	count, err := repo.CountBySession(ctx, "sess-9")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestIngestTimestampsAreServerAssigned(t *testing.T) {
	uc, repo, _, _ := newTestUseCase(t)
	ctx := context.Background()

	serverNow := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	uc.(*telemetryUseCase).clock = func() time.Time { return serverNow }

	// A client claiming a timestamp far in the past must not control
	// the persisted ordering timestamp.
	batch := []event.RawEvent{
		{
			ModuleID:  "algebra-1",
			EventType: event.TypeClick,
			Payload:   map[string]any{"x": 1},
			Timestamp: "1999-01-01T00:00:00Z",
		},
	}
	_, err := uc.Ingest(ctx, guestActor("guest-clock"), "sess-clock", batch)
	require.NoError(t, err)

	rows, err := repo.ListBySession(ctx, "sess-clock")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Timestamp.Equal(serverNow))
}

func TestIngestSessionLogCarriesClientTimestamp(t *testing.T) {
	uc, _, writer, _ := newTestUseCase(t)
	ctx := context.Background()

	batch := []event.RawEvent{
		{
			ModuleID:        "algebra-1",
			EventType:       event.TypeClick,
			Payload:         map[string]any{"x": 5},
			Timestamp:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339Nano),
			ClientTimestamp: 1234567,
		},
	}
	_, err := uc.Ingest(ctx, guestActor("guest-ts"), "sess-ts", batch)
	require.NoError(t, err)

	require.True(t, writer.Exists("algebra-1", "sess-ts"))
}
