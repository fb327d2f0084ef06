package sessionlog

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSegment(t *testing.T) {
	assert.Equal(t, "newton1", SanitizeSegment("newton1"))
	assert.Equal(t, "a-b.c_d", SanitizeSegment("a-b.c_d"))
	assert.Equal(t, "etc_passwd", SanitizeSegment("etc/passwd"))
	assert.Equal(t, "a_b", SanitizeSegment("a b"))
	assert.Equal(t, "a_b", SanitizeSegment("__a//b__"))
	assert.Equal(t, "unknown", SanitizeSegment(""))
	assert.Equal(t, "unknown", SanitizeSegment("///"))
	assert.Equal(t, "unknown", SanitizeSegment("日本語"))
}

func TestSanitizeSegmentDotSegments(t *testing.T) {
	// Dots are allowed characters, but a segment of only dots would
	// still traverse when joined.
	assert.Equal(t, "unknown", SanitizeSegment("."))
	assert.Equal(t, "unknown", SanitizeSegment(".."))
	assert.Equal(t, "unknown", SanitizeSegment("..."))
	assert.Equal(t, "unknown", SanitizeSegment("_.._"))
	assert.Equal(t, "unknown", SanitizeSegment("../"))
}

func TestResolveStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(root)

	path := r.Resolve("../../etc", "passwd")
	assert.True(t, strings.HasPrefix(path, root+string(filepath.Separator)))
	assert.Equal(t, filepath.Join(root, ".._.._etc", "passwd.jsonl.zst"), path)

	escape := r.Resolve("..", "session")
	assert.True(t, strings.HasPrefix(escape, root+string(filepath.Separator)))
	assert.Equal(t, filepath.Join(root, "unknown", "session.jsonl.zst"), escape)
}

func TestResolveLayout(t *testing.T) {
	r := NewResolver("/var/lib/telemetry")
	assert.Equal(t,
		filepath.Join("/var/lib/telemetry", "newton1", "abc-123.jsonl.zst"),
		r.Resolve("newton1", "abc-123"))
}
