// Package audit records one JSONL entry per processed document. Entries
// carry counts and identifiers only, never note text or annotation values.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Outcome labels for Entry.Outcome.
const (
	OutcomeOK        = "ok"
	OutcomeConfig    = "config_error"
	OutcomeDetector  = "detector_error"
	OutcomeInvariant = "invariant_error"
)

// Entry is one processed document.
type Entry struct {
	Timestamp  string         `json:"timestamp"`
	DocumentID string         `json:"document_id,omitempty"`
	Outcome    string         `json:"outcome"`
	TagCounts  map[string]int `json:"tag_counts,omitempty"`
	Redacted   int            `json:"redacted"`
	DurationMs float64        `json:"duration_ms"`
	Error      string         `json:"error,omitempty"`
}

// Logger records audit entries.
type Logger interface {
	Log(entry Entry) error
}

// Nop is a Logger that discards entries.
type Nop struct{}

// Log implements Logger.
func (Nop) Log(Entry) error { return nil }

// JSONLLogger appends entries to a JSON-lines file.
type JSONLLogger struct {
	path string
	mu   sync.Mutex
}

// NewJSONLLogger creates the log file's directory and verifies the file is
// writable.
func NewJSONLLogger(path string) (*JSONLLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create audit log: %w", err)
	}
	_ = f.Close()
	return &JSONLLogger{path: path}, nil
}

// Log appends one entry, stamping it with the current time.
func (l *JSONLLogger) Log(entry Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}
