package pipeline

import (
	"context"
	"errors"
	"testing"

	"veil/internal/detect"
	"veil/internal/lookup"
	"veil/internal/resolve"
)

func newTestDeidentifier() *Deidentifier {
	return New(detect.NewRegistry(lookup.Builtin()), resolve.New())
}

func TestDeidentifyPatientAndBSN(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{
		Text: "Jan Jansen heeft bsn 111222333.",
		Patient: &detect.Patient{
			FirstNames: []string{"Jan"},
			Initials:   "J",
			Surname:    "Jansen",
		},
	}

	res, err := d.Deidentify(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Deidentify() error = %v", err)
	}
	if want := "[PATIENT] heeft bsn [BSN-1]."; res.Deidentified != want {
		t.Fatalf("Deidentified = %q, want %q", res.Deidentified, want)
	}
	if want := "<PATIENT>Jan Jansen</PATIENT> heeft bsn <BSN>111222333</BSN>."; res.Intext != want {
		t.Fatalf("Intext = %q, want %q", res.Intext, want)
	}
	if res.Original != doc.Text {
		t.Fatalf("Original = %q", res.Original)
	}
}

func TestDeidentifyClinicalNote(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{
		Text: "betreft: Jan Jansen, bsn 111222333, patnr 1234567. " +
			"De patient is 64 jaar oud en woonachtig in Utrecht.",
		Patient: &detect.Patient{
			FirstNames: []string{"Jan"},
			Initials:   "J",
			Surname:    "Jansen",
		},
	}

	res, err := d.Deidentify(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Deidentify() error = %v", err)
	}
	want := "betreft: [PATIENT], bsn [BSN-1], patnr [ID-1]. " +
		"De patient is [LEEFTIJD-1] jaar oud en woonachtig in [LOCATIE-1]."
	if res.Deidentified != want {
		t.Fatalf("Deidentified = %q\nwant           %q", res.Deidentified, want)
	}
}

func TestDeidentifyWithoutMetadata(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{Text: "Jan Jansen werd gezien."}

	res, err := d.Deidentify(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Deidentify() error = %v", err)
	}
	// Without patient metadata the name is still caught, as a third party.
	if want := "[PERSOON-1] werd gezien."; res.Deidentified != want {
		t.Fatalf("Deidentified = %q, want %q", res.Deidentified, want)
	}
}

func TestDeidentifyNothingToRedact(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{Text: "geen bijzonderheden vandaag"}

	res, err := d.Deidentify(context.Background(), doc, Options{})
	if err != nil {
		t.Fatalf("Deidentify() error = %v", err)
	}
	if res.Deidentified != doc.Text || len(res.Annotations) != 0 {
		t.Fatalf("clean text changed: %+v", res)
	}
}

func TestDeidentifyDisabledDetector(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{Text: "controle bsn 111222333 vandaag"}

	res, err := d.Deidentify(context.Background(), doc, Options{Disabled: []string{"bsn"}})
	if err != nil {
		t.Fatalf("Deidentify() error = %v", err)
	}
	// With bsn off the number still matches the generic id detector.
	if want := "controle bsn [ID-1] vandaag"; res.Deidentified != want {
		t.Fatalf("Deidentified = %q, want %q", res.Deidentified, want)
	}
}

func TestDeidentifyUnknownDisabledName(t *testing.T) {
	d := newTestDeidentifier()
	doc := detect.Document{Text: "tekst"}

	_, err := d.Deidentify(context.Background(), doc, Options{Disabled: []string{"kenteken"}})
	var cfg *ConfigError
	if !errors.As(err, &cfg) {
		t.Fatalf("Deidentify() error = %v, want ConfigError", err)
	}
	var unknown *detect.UnknownDetectorError
	if !errors.As(err, &unknown) {
		t.Fatalf("ConfigError does not wrap the detector name: %v", err)
	}
}

func TestDeidentifyCanceledContext(t *testing.T) {
	d := newTestDeidentifier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Deidentify(ctx, detect.Document{Text: "tekst"}, Options{})
	var det *DetectorError
	if !errors.As(err, &det) {
		t.Fatalf("Deidentify() error = %v, want DetectorError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error does not wrap context.Canceled: %v", err)
	}
}
