package audit

import (
	"os"
	"path/filepath"
	"testing"
)

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "audit.log")
	l, err := NewJSONLLogger(path)
	if err != nil {
		t.Fatalf("NewJSONLLogger() error = %v", err)
	}

	entries := []Entry{
		{DocumentID: "n1", Outcome: OutcomeOK, Redacted: 3,
			TagCounts: map[string]int{"patient": 1, "bsn": 2}, DurationMs: 1.5},
		{DocumentID: "n2", Outcome: OutcomeConfig, Error: "unknown detector"},
	}
	for _, e := range entries {
		if err := l.Log(e); err != nil {
			t.Fatalf("Log() error = %v", err)
		}
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
	if got[0].DocumentID != "n1" || got[0].Redacted != 3 || got[0].TagCounts["bsn"] != 2 {
		t.Fatalf("entry 0 = %+v", got[0])
	}
	if got[1].Outcome != OutcomeConfig || got[1].Error != "unknown detector" {
		t.Fatalf("entry 1 = %+v", got[1])
	}
	if got[0].Timestamp == "" {
		t.Fatal("timestamp not stamped")
	}
}

func TestReadFileMissing(t *testing.T) {
	got, err := ReadFile(filepath.Join(t.TempDir(), "absent.log"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got != nil {
		t.Fatalf("missing file yielded entries: %v", got)
	}
}

func TestReadFileSkipsGarbageLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	content := `{"outcome":"ok","redacted":1}
niet json
{"outcome":"detector_error","redacted":0}

`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("read %d entries, want 2", len(got))
	}
}
