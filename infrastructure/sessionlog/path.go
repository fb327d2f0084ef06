package sessionlog

import (
	"path/filepath"
	"regexp"
	"strings"
)

var unsafeSegmentChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SanitizeSegment rewrites an attacker-controlled identifier into a
// safe path segment: every run of characters outside [A-Za-z0-9._-]
// becomes an underscore, leading/trailing underscores are stripped, and
// an empty result becomes "unknown". A segment left with only dots
// ("." or "..") would still traverse when joined, so those also become
// "unknown".
func SanitizeSegment(value string) string {
	safe := strings.Trim(unsafeSegmentChars.ReplaceAllString(value, "_"), "_")
	if safe == "" || strings.Trim(safe, ".") == "" {
		return "unknown"
	}
	return safe
}

// Resolver maps a (module, session) pair to the session log file that
// holds its append-only record stream.
type Resolver struct {
	root string
}

func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Resolve returns <root>/<module>/<session>.jsonl.zst with both
// segments sanitized, so traversal attempts cannot escape the root.
func (r *Resolver) Resolve(moduleID, sessionID string) string {
	return filepath.Join(r.root, SanitizeSegment(moduleID), SanitizeSegment(sessionID)+".jsonl.zst")
}

// Root returns the configured telemetry data directory.
func (r *Resolver) Root() string {
	return r.root
}
