package sessionlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

// Record is one line of the append-only session log. It is a superset
// of the relational row: Timestamp is server-assigned, while the
// client-reported wall clock and monotonic timestamp ride along for
// diagnosing client-side event ordering.
type Record struct {
	SessionID       string         `json:"session_id"`
	ModuleID        string         `json:"module_id"`
	EventType       string         `json:"event_type"`
	Timestamp       time.Time      `json:"timestamp"`
	ClientTime      string         `json:"client_time,omitempty"`
	ClientTimestamp int64          `json:"client_timestamp"`
	AnonID          string         `json:"anon_id"`
	Payload         map[string]any `json:"payload"`
}

// Writer appends zstd-compressed JSON lines to per-(module,session)
// files. Appends targeting the same file serialize on a per-key mutex;
// distinct keys never block each other. Each append writes one zstd
// frame, so compression framing restarts per request — readers must
// decode the file as a sequence of concatenated frames, which the zstd
// format supports natively.
type Writer struct {
	resolver *Resolver

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewWriter(resolver *Resolver) *Writer {
	return &Writer{
		resolver: resolver,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Append writes the records for one (module, session) group to its log
// file, creating directory and file lazily on first use. The file is
// only ever opened in append mode and never rewritten.
func (w *Writer) Append(moduleID, sessionID string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	path := w.resolver.Resolve(moduleID, sessionID)

	lock := w.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "create session log directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.Wrap(err, "open session log")
	}
	defer file.Close()

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return errors.Wrap(err, "create zstd writer")
	}

	lineEnc := json.NewEncoder(enc)
	for _, record := range records {
		if err := lineEnc.Encode(record); err != nil {
			enc.Close()
			return errors.Wrap(err, "encode session log record")
		}
	}

	if err := enc.Close(); err != nil {
		return errors.Wrap(err, "flush session log frame")
	}
	return errors.Wrap(file.Sync(), "sync session log")
}

// Exists reports whether a session log file has been created for the
// (module, session) pair.
func (w *Writer) Exists(moduleID, sessionID string) bool {
	_, err := os.Stat(w.resolver.Resolve(moduleID, sessionID))
	return err == nil
}

func (w *Writer) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[path] = lock
	}
	return lock
}
