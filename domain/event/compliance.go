package event

// forbiddenKeyboardFields are payload keys that can carry literal key
// values or free text. Their presence on a keyboard event rejects the
// whole event; key identity may only travel as a physical key code.
var forbiddenKeyboardFields = []string{"key", "value", "text", "input", "data"}

// IsCompliant decides whether a single event may be persisted under the
// K-12 data-protection policy. It is pure and evaluated per event: one
// event's rejection never affects its siblings in a batch.
func IsCompliant(e RawEvent) bool {
	if !e.EventType.Allowed() {
		return false
	}

	if e.EventType.IsKeyboard() {
		for _, field := range forbiddenKeyboardFields {
			if _, present := e.Payload[field]; present {
				return false
			}
		}
		if _, present := e.Payload["code"]; !present {
			return false
		}
	}

	return true
}

// Partition splits a batch into compliant and rejected events, in input
// order, before any persistence side effect takes place.
func Partition(events []RawEvent) (accepted, rejected []RawEvent) {
	for _, e := range events {
		if IsCompliant(e) {
			accepted = append(accepted, e)
		} else {
			rejected = append(rejected, e)
		}
	}
	return accepted, rejected
}
