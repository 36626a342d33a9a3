// Package batch processes tab-delimited note files: it fans independent
// documents out across a worker pool and writes results back in input
// order. Results are collected into a slot per input index, so output
// order never depends on completion order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"veil/internal/audit"
	"veil/internal/logger"
	"veil/internal/pipeline"
)

// maxLineBytes bounds a single input record; clinical notes can be large.
const maxLineBytes = 16 * 1024 * 1024

// Summary reports a completed run.
type Summary struct {
	Records  int
	Failed   int
	Redacted int
	Elapsed  time.Duration
}

// Processor runs the pipeline over a tab-delimited file.
type Processor struct {
	deid  *pipeline.Deidentifier
	opts  pipeline.Options
	jobs  int
	log   *logger.Logger
	audit audit.Logger
}

// New creates a Processor. jobs <= 0 selects GOMAXPROCS workers.
func New(deid *pipeline.Deidentifier, opts pipeline.Options, jobs int, log *logger.Logger, auditLog audit.Logger) *Processor {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	return &Processor{deid: deid, opts: opts, jobs: jobs, log: log, audit: auditLog}
}

type slot struct {
	line     string
	redacted int
	err      error
}

// ProcessFile reads records from in, de-identifies them in parallel and
// writes each input line with the de-identified text appended, in input
// order. A failed record is written with an empty appended column and
// counted in the summary; it never aborts its siblings.
func (p *Processor) ProcessFile(ctx context.Context, in io.Reader, out io.Writer) (Summary, error) {
	started := time.Now()

	var lines []string
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return Summary{}, fmt.Errorf("read input: %w", err)
	}

	results := make([]slot, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(p.jobs, max(len(lines), 1)))
	for i, line := range lines {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = p.processLine(gctx, line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	w := bufio.NewWriter(out)
	sum := Summary{Records: len(lines)}
	for i, res := range results {
		if res.err != nil {
			sum.Failed++
			p.log.Errorf("record_failed", "line %d: %v", i+1, res.err)
		}
		sum.Redacted += res.redacted
		if _, err := fmt.Fprintln(w, res.line); err != nil {
			return sum, fmt.Errorf("write output: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return sum, fmt.Errorf("flush output: %w", err)
	}
	sum.Elapsed = time.Since(started)
	return sum, nil
}

func (p *Processor) processLine(ctx context.Context, line string) slot {
	started := time.Now()

	rec, err := ParseRecord(line)
	if err != nil {
		p.logEntry("", audit.OutcomeConfig, nil, 0, started, err)
		return slot{line: line + "\t", err: err}
	}

	result, err := p.deid.Deidentify(ctx, rec.Document(), p.opts)
	if err != nil {
		p.logEntry(rec.NoteID, outcomeFor(err), nil, 0, started, err)
		return slot{line: rec.OutputLine(""), err: err}
	}

	counts := make(map[string]int, len(result.Annotations))
	for _, a := range result.Annotations {
		counts[a.Tag]++
	}
	p.logEntry(rec.NoteID, audit.OutcomeOK, counts, len(result.Annotations), started, nil)
	return slot{line: rec.OutputLine(result.Deidentified), redacted: len(result.Annotations)}
}

func (p *Processor) logEntry(id, outcome string, counts map[string]int, redacted int, started time.Time, cause error) {
	entry := audit.Entry{
		DocumentID: id,
		Outcome:    outcome,
		TagCounts:  counts,
		Redacted:   redacted,
		DurationMs: float64(time.Since(started).Microseconds()) / 1000,
	}
	if cause != nil {
		entry.Error = cause.Error()
	}
	if err := p.audit.Log(entry); err != nil {
		p.log.Warnf("audit_write", "%v", err)
	}
}

func outcomeFor(err error) string {
	switch err.(type) {
	case *pipeline.ConfigError:
		return audit.OutcomeConfig
	case *pipeline.InvariantError:
		return audit.OutcomeInvariant
	default:
		return audit.OutcomeDetector
	}
}
