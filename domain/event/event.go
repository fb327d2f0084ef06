package event

// Type identifies a behavioral event kind. Only members of the
// allow-list below may ever reach a persistence sink.
type Type string

const (
	TypeSessionStart     Type = "session_start"
	TypeSessionEnd       Type = "session_end"
	TypeKeyDown          Type = "key_down"
	TypeKeyUp            Type = "key_up"
	TypeClick            Type = "click"
	TypePointerDown      Type = "pointer_down"
	TypePointerUp        Type = "pointer_up"
	TypePointerMove      Type = "pointer_move"
	TypeTouchStart       Type = "touch_start"
	TypeTouchEnd         Type = "touch_end"
	TypeTouchMove        Type = "touch_move"
	TypeTextInput        Type = "text_input"
	TypeWindowFocus      Type = "window_focus"
	TypeWindowBlur       Type = "window_blur"
	TypeUnityFocus       Type = "unity_focus"
	TypeUnityBlur        Type = "unity_blur"
	TypeTelemetryPaused  Type = "telemetry_paused"
	TypeTelemetryResumed Type = "telemetry_resumed"
)

var allowedTypes = map[Type]struct{}{
	TypeSessionStart:     {},
	TypeSessionEnd:       {},
	TypeKeyDown:          {},
	TypeKeyUp:            {},
	TypeClick:            {},
	TypePointerDown:      {},
	TypePointerUp:        {},
	TypePointerMove:      {},
	TypeTouchStart:       {},
	TypeTouchEnd:         {},
	TypeTouchMove:        {},
	TypeTextInput:        {},
	TypeWindowFocus:      {},
	TypeWindowBlur:       {},
	TypeUnityFocus:       {},
	TypeUnityBlur:        {},
	TypeTelemetryPaused:  {},
	TypeTelemetryResumed: {},
}

// Allowed reports whether the type is a member of the fixed allow-list.
func (t Type) Allowed() bool {
	_, ok := allowedTypes[t]
	return ok
}

// IsKeyboard reports whether the type carries keyboard signal and is
// therefore subject to the forbidden-field rules.
func (t Type) IsKeyboard() bool {
	return t == TypeKeyDown || t == TypeKeyUp
}

// RawEvent is a single client-submitted event inside an ingestion batch.
// The payload is client-controlled and untrusted until it passes the
// compliance filter. Per-event validation is deliberately absent: a
// malformed event is silently dropped by the compliance filter, never
// an error for the whole batch.
type RawEvent struct {
	ModuleID        string         `json:"module_id"`
	EventType       Type           `json:"event_type"`
	Payload         map[string]any `json:"payload"`
	Timestamp       string         `json:"timestamp"`
	ClientTimestamp int64          `json:"client_timestamp"`
}
