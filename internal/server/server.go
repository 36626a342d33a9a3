// Package server exposes the de-identification pipeline over HTTP.
//
// Endpoints:
//
//	POST /deidentify       - de-identify one document
//	POST /deidentify_bulk  - de-identify a list of documents, in order
//	GET  /status           - uptime and processing counters
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"veil/internal/audit"
	"veil/internal/detect"
	"veil/internal/logger"
	"veil/internal/pipeline"
	"veil/internal/stats"
)

// maxBodyBytes bounds a request body.
const maxBodyBytes = 64 * 1024 * 1024

// Version is stamped by the build; the default marks a source build.
var Version = "dev"

// Payload is one document in a request. Text is a pointer so an explicit
// null round-trips to a null result instead of an error.
type Payload struct {
	Text              *string  `json:"text"`
	PatientFirstNames string   `json:"patient_first_names,omitempty"`
	PatientInitials   string   `json:"patient_initials,omitempty"`
	PatientSurname    string   `json:"patient_surname,omitempty"`
	ID                string   `json:"id,omitempty"`
	Disabled          []string `json:"disabled,omitempty"`
}

// BulkPayload is the request body for /deidentify_bulk. Disabled applies to
// every document, merged with each document's own list.
type BulkPayload struct {
	Texts    []Payload `json:"texts"`
	Disabled []string  `json:"disabled,omitempty"`
}

// Response is one de-identified document.
type Response struct {
	Text *string `json:"text"`
	ID   string  `json:"id,omitempty"`
	// Error is set on a per-document failure in a bulk response, so one
	// document's failure does not abort its siblings.
	Error string `json:"error,omitempty"`
}

// BulkResponse mirrors the input order of the bulk request.
type BulkResponse struct {
	Texts []Response `json:"texts"`
}

// Server is the HTTP service.
type Server struct {
	deid    *pipeline.Deidentifier
	log     *logger.Logger
	audit   audit.Logger
	httpSrv *http.Server
	started time.Time

	mu      sync.Mutex
	entries []audit.Entry
}

// New creates a Server listening on addr.
func New(addr string, deid *pipeline.Deidentifier, log *logger.Logger, auditLog audit.Logger) *Server {
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	s := &Server{deid: deid, log: log, audit: auditLog}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /deidentify", s.handleDeidentify)
	mux.HandleFunc("POST /deidentify_bulk", s.handleDeidentifyBulk)
	mux.HandleFunc("GET /status", s.handleStatus)
	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler exposes the route mux, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.started = time.Now()
	s.log.Infof("listen", "http %s", s.httpSrv.Addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleDeidentify(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	var p Payload
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, reqID, http.StatusBadRequest, err)
		return
	}

	resp, status, err := s.deidentifyOne(r.Context(), p, nil)
	if err != nil {
		s.writeError(w, reqID, status, err)
		return
	}
	s.writeJSON(w, reqID, http.StatusOK, resp)
}

func (s *Server) handleDeidentifyBulk(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	var p BulkPayload
	if err := decodeJSON(r, &p); err != nil {
		s.writeError(w, reqID, http.StatusBadRequest, err)
		return
	}

	s.log.Infof("bulk_start", "request %s: %d documents", reqID, len(p.Texts))

	out := BulkResponse{Texts: make([]Response, len(p.Texts))}
	g, gctx := errgroup.WithContext(r.Context())
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, doc := range p.Texts {
		g.Go(func() error {
			resp, _, err := s.deidentifyOne(gctx, doc, p.Disabled)
			if err != nil {
				resp = Response{ID: doc.ID, Error: err.Error()}
			}
			out.Texts[i] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.writeError(w, reqID, http.StatusInternalServerError, err)
		return
	}

	s.log.Infof("bulk_done", "request %s: %d documents", reqID, len(p.Texts))
	s.writeJSON(w, reqID, http.StatusOK, out)
}

// deidentifyOne runs the pipeline for one payload. The returned status is
// the HTTP code to use when the error is surfaced directly.
func (s *Server) deidentifyOne(ctx context.Context, p Payload, globalDisabled []string) (Response, int, error) {
	if p.Text == nil {
		// Absent text short-circuits to a null result by contract.
		return Response{Text: nil, ID: p.ID}, http.StatusOK, nil
	}

	started := time.Now()
	doc := detect.Document{Text: *p.Text}
	if p.PatientFirstNames != "" || p.PatientSurname != "" || p.PatientInitials != "" {
		doc.Patient = &detect.Patient{
			FirstNames: strings.Fields(p.PatientFirstNames),
			Initials:   p.PatientInitials,
			Surname:    strings.TrimSpace(p.PatientSurname),
		}
	}
	opts := pipeline.Options{Disabled: mergeDisabled(globalDisabled, p.Disabled)}

	result, err := s.deid.Deidentify(ctx, doc, opts)
	if err != nil {
		s.record(p.ID, nil, 0, started, err)
		var cfg *pipeline.ConfigError
		if errors.As(err, &cfg) {
			return Response{}, http.StatusBadRequest, err
		}
		return Response{}, http.StatusInternalServerError, err
	}

	counts := make(map[string]int, len(result.Annotations))
	for _, a := range result.Annotations {
		counts[a.Tag]++
	}
	s.record(p.ID, counts, len(result.Annotations), started, nil)

	text := result.Deidentified
	return Response{Text: &text, ID: p.ID}, http.StatusOK, nil
}

func (s *Server) record(id string, counts map[string]int, redacted int, started time.Time, cause error) {
	entry := audit.Entry{
		DocumentID: id,
		Outcome:    audit.OutcomeOK,
		TagCounts:  counts,
		Redacted:   redacted,
		DurationMs: float64(time.Since(started).Microseconds()) / 1000,
	}
	if cause != nil {
		entry.Error = cause.Error()
		switch {
		case isConfigError(cause):
			entry.Outcome = audit.OutcomeConfig
		case isInvariantError(cause):
			entry.Outcome = audit.OutcomeInvariant
		default:
			entry.Outcome = audit.OutcomeDetector
		}
	}
	if err := s.audit.Log(entry); err != nil {
		s.log.Warnf("audit_write", "%v", err)
	}
	s.mu.Lock()
	entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	s.entries = append(s.entries, entry)
	s.mu.Unlock()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	entries := make([]audit.Entry, len(s.entries))
	copy(entries, s.entries)
	s.mu.Unlock()

	st := stats.Collect(entries, stats.Options{
		Status:  "running",
		Version: Version,
		Uptime:  time.Since(s.started),
	})
	s.writeJSON(w, uuid.NewString(), http.StatusOK, st)
}

func isConfigError(err error) bool {
	var e *pipeline.ConfigError
	return errors.As(err, &e)
}

func isInvariantError(err error) bool {
	var e *pipeline.InvariantError
	return errors.As(err, &e)
}

func mergeDisabled(global, local []string) []string {
	if len(global) == 0 {
		return local
	}
	seen := make(map[string]bool, len(global)+len(local))
	out := make([]string, 0, len(global)+len(local))
	for _, name := range append(append([]string{}, global...), local...) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, reqID string, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Request-ID", reqID)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warnf("response_write", "request %s: %v", reqID, err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, reqID string, status int, err error) {
	s.log.Errorf("request_failed", "request %s: %v", reqID, err)
	s.writeJSON(w, reqID, status, map[string]string{"message": err.Error()})
}
