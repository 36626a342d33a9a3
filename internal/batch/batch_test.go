package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	"veil/internal/audit"
	"veil/internal/detect"
	"veil/internal/logger"
	"veil/internal/lookup"
	"veil/internal/pipeline"
	"veil/internal/resolve"
)

type captureAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (c *captureAudit) Log(e audit.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func newTestProcessor(jobs int, auditLog audit.Logger) *Processor {
	deid := pipeline.New(detect.NewRegistry(lookup.Builtin()), resolve.New())
	log := logger.NewWithWriter("batch", "error", io.Discard)
	return New(deid, pipeline.Options{}, jobs, log, auditLog)
}

func inputLine(id, text string) string {
	return strings.Join([]string{
		"hash-" + id, id, "consult", "Jan", "J", "Jansen", "JANSEN", "", text,
	}, "\t")
}

func TestParseRecord(t *testing.T) {
	rec, err := ParseRecord(inputLine("n1", "tekst van de nota"))
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	if rec.NoteID != "n1" || rec.FamilyName != "Jansen" || rec.NoteText != "tekst van de nota" {
		t.Fatalf("record = %+v", rec)
	}

	if _, err := ParseRecord("te\tweinig\tkolommen"); err == nil {
		t.Fatal("short record accepted")
	}
}

func TestRecordDocument(t *testing.T) {
	rec, err := ParseRecord(strings.Join([]string{
		"h", "n1", "consult", "Jan Willem", "JW", " Jansen ", "", "", "tekst",
	}, "\t"))
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	doc := rec.Document()
	if doc.Patient == nil {
		t.Fatal("patient metadata dropped")
	}
	if len(doc.Patient.FirstNames) != 2 || doc.Patient.FirstNames[1] != "Willem" {
		t.Fatalf("FirstNames = %v", doc.Patient.FirstNames)
	}
	if doc.Patient.Surname != "Jansen" {
		t.Fatalf("Surname = %q", doc.Patient.Surname)
	}
}

func TestRecordDocumentWithoutMetadata(t *testing.T) {
	rec, err := ParseRecord(strings.Join([]string{
		"h", "n1", "consult", "", "", "", "", "", "tekst",
	}, "\t"))
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	if rec.Document().Patient != nil {
		t.Fatal("empty metadata produced a Patient")
	}
}

func TestOutputLineFlattensControlChars(t *testing.T) {
	rec, err := ParseRecord(inputLine("n1", "tekst"))
	if err != nil {
		t.Fatalf("ParseRecord() error = %v", err)
	}
	got := rec.OutputLine("regel1\nregel2\tkolom")
	if strings.Count(got, "\t") != numColumns {
		t.Fatalf("output has %d tabs, want %d: %q", strings.Count(got, "\t"), numColumns, got)
	}
	if !strings.HasSuffix(got, "\tregel1 regel2 kolom") {
		t.Fatalf("appended column not flattened: %q", got)
	}
}

func TestProcessFilePreservesOrder(t *testing.T) {
	const n = 40
	var in bytes.Buffer
	for i := 0; i < n; i++ {
		fmt.Fprintln(&in, inputLine(fmt.Sprintf("n%d", i), fmt.Sprintf("nota %d van Jan Jansen", i)))
	}

	var out bytes.Buffer
	p := newTestProcessor(8, nil)
	sum, err := p.ProcessFile(context.Background(), &in, &out)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if sum.Records != n || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != n {
		t.Fatalf("got %d output lines, want %d", len(lines), n)
	}
	for i, line := range lines {
		wantPrefix := inputLine(fmt.Sprintf("n%d", i), fmt.Sprintf("nota %d van Jan Jansen", i))
		wantDeid := fmt.Sprintf("nota %d van [PATIENT]", i)
		if line != wantPrefix+"\t"+wantDeid {
			t.Fatalf("line %d out of order or wrong:\ngot  %q\nwant %q", i, line, wantPrefix+"\t"+wantDeid)
		}
	}
}

func TestProcessFileFailureIsolation(t *testing.T) {
	var in bytes.Buffer
	fmt.Fprintln(&in, inputLine("n0", "Jan Jansen heeft bsn 111222333."))
	fmt.Fprintln(&in, "kapotte regel zonder kolommen")
	fmt.Fprintln(&in, inputLine("n2", "geen bijzonderheden"))

	ca := &captureAudit{}
	var out bytes.Buffer
	p := newTestProcessor(2, ca)
	sum, err := p.ProcessFile(context.Background(), &in, &out)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if sum.Records != 3 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Redacted != 2 {
		t.Fatalf("Redacted = %d, want 2", sum.Redacted)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d output lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], "\t[PATIENT] heeft bsn [BSN-1].") {
		t.Fatalf("line 0 = %q", lines[0])
	}
	// The bad record is echoed with an empty appended column.
	if lines[1] != "kapotte regel zonder kolommen\t" {
		t.Fatalf("line 1 = %q", lines[1])
	}
	if !strings.HasSuffix(lines[2], "\tgeen bijzonderheden") {
		t.Fatalf("line 2 = %q", lines[2])
	}

	if len(ca.entries) != 3 {
		t.Fatalf("audited %d entries, want 3", len(ca.entries))
	}
	failed := 0
	for _, e := range ca.entries {
		if e.Outcome != audit.OutcomeOK {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("audited %d failures, want 1", failed)
	}
}

func TestProcessFileEmptyInput(t *testing.T) {
	var out bytes.Buffer
	p := newTestProcessor(4, nil)
	sum, err := p.ProcessFile(context.Background(), strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("ProcessFile() error = %v", err)
	}
	if sum.Records != 0 || out.Len() != 0 {
		t.Fatalf("empty input produced output: %+v %q", sum, out.String())
	}
}
