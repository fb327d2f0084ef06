package event

// TextInputSummary is the only shape of a text_input payload that may
// reach a sink: derived length and interaction metadata, never the
// literal text.
type TextInputSummary struct {
	Length  int    `json:"length"`
	FieldID string `json:"field_id,omitempty"`
	Device  string `json:"device,omitempty"`
	X       any    `json:"x,omitempty"`
	Y       any    `json:"y,omitempty"`
}

// Summarize returns the payload that may be persisted for an event.
// For text_input the payload is reduced to a TextInputSummary before it
// reaches either sink; every other type passes through unchanged. The
// returned map is a fresh copy so callers may merge fields into it.
func Summarize(e RawEvent) map[string]any {
	if e.EventType == TypeTextInput {
		return summarizeTextInput(e.Payload)
	}

	out := make(map[string]any, len(e.Payload)+1)
	for k, v := range e.Payload {
		out[k] = v
	}
	return out
}

func summarizeTextInput(payload map[string]any) map[string]any {
	summary := TextInputSummary{Length: textLength(payload)}

	if id, ok := stringField(payload, "field_id"); ok {
		summary.FieldID = id
	} else if id, ok := stringField(payload, "input_id"); ok {
		summary.FieldID = id
	}
	if device, ok := stringField(payload, "device"); ok {
		summary.Device = device
	}

	out := map[string]any{"length": summary.Length}
	if summary.FieldID != "" {
		out["field_id"] = summary.FieldID
	}
	if summary.Device != "" {
		out["device"] = summary.Device
	}
	if x, ok := payload["x"]; ok {
		out["x"] = x
	}
	if y, ok := payload["y"]; ok {
		out["y"] = y
	}
	return out
}

// textLength derives the length of the input without retaining it. A
// client-supplied numeric length wins; otherwise it is measured from
// the text field about to be discarded.
func textLength(payload map[string]any) int {
	switch v := payload["length"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}

	for _, field := range []string{"value", "text"} {
		if s, ok := payload[field].(string); ok {
			return len([]rune(s))
		}
	}
	return 0
}

func stringField(payload map[string]any, key string) (string, bool) {
	s, ok := payload[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
