package redact

import (
	"errors"
	"testing"

	"veil/internal/annotation"
)

func tagged(text string, start, end int, tag, display string) annotation.Tagged {
	return annotation.Tagged{
		Annotation: annotation.Annotation{
			Span: annotation.Span{Start: start, End: end, Text: text[start:end]},
			Tag:  tag,
		},
		DisplayTag: display,
	}
}

func TestRenderEmpty(t *testing.T) {
	text := "geen annotaties hier"
	res, err := Render(text, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Deidentified != text || res.Intext != text || res.Original != text {
		t.Fatalf("empty annotation set changed the text: %+v", res)
	}
}

func TestRenderDeidentified(t *testing.T) {
	text := "Jan Jansen woont in Utrecht en werkt in Utrecht."
	anns := []annotation.Tagged{
		tagged(text, 0, 10, "patient", "PATIENT"),
		tagged(text, 20, 27, "locatie", "LOCATIE-1"),
		tagged(text, 40, 47, "locatie", "LOCATIE-1"),
	}

	res, err := Render(text, anns)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "[PATIENT] woont in [LOCATIE-1] en werkt in [LOCATIE-1]."
	if res.Deidentified != want {
		t.Fatalf("Deidentified = %q, want %q", res.Deidentified, want)
	}
	if res.Original != text {
		t.Fatalf("Original changed: %q", res.Original)
	}
}

func TestRenderIntextUnsuffixed(t *testing.T) {
	text := "Peter de Visser uit Rotterdam"
	anns := []annotation.Tagged{
		tagged(text, 0, 15, "persoon", "PERSOON-1"),
		tagged(text, 20, 29, "locatie", "LOCATIE-3"),
	}

	res, err := Render(text, anns)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	want := "<PERSOON>Peter de Visser</PERSOON> uit <LOCATIE>Rotterdam</LOCATIE>"
	if res.Intext != want {
		t.Fatalf("Intext = %q, want %q", res.Intext, want)
	}
}

func TestRenderSortsAnnotations(t *testing.T) {
	text := "Utrecht en Rotterdam"
	anns := []annotation.Tagged{
		tagged(text, 11, 20, "locatie", "LOCATIE-2"),
		tagged(text, 0, 7, "locatie", "LOCATIE-1"),
	}

	res, err := Render(text, anns)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Deidentified != "[LOCATIE-1] en [LOCATIE-2]" {
		t.Fatalf("Deidentified = %q", res.Deidentified)
	}
	if res.Annotations[0].Start != 0 || res.Annotations[1].Start != 11 {
		t.Fatalf("annotations not sorted by start: %+v", res.Annotations)
	}
}

func TestRenderAdjacentSpans(t *testing.T) {
	// Touching spans are valid, only true overlap is rejected.
	text := "0612345678"
	anns := []annotation.Tagged{
		tagged(text, 0, 5, "telefoonnummer", "TELEFOONNUMMER-1"),
		tagged(text, 5, 10, "id", "ID-1"),
	}
	res, err := Render(text, anns)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if res.Deidentified != "[TELEFOONNUMMER-1][ID-1]" {
		t.Fatalf("Deidentified = %q", res.Deidentified)
	}
}

func TestRenderRejectsOverlap(t *testing.T) {
	text := "Oude Turfmarkt"
	anns := []annotation.Tagged{
		tagged(text, 0, 14, "locatie", "LOCATIE-1"),
		tagged(text, 5, 14, "locatie", "LOCATIE-2"),
	}

	_, err := Render(text, anns)
	var overlap *OverlapError
	if !errors.As(err, &overlap) {
		t.Fatalf("Render() error = %v, want OverlapError", err)
	}
}

func TestRenderRejectsStaleSpan(t *testing.T) {
	text := "Jan woont hier"
	anns := []annotation.Tagged{
		tagged("Piet woont hier", 0, 4, "persoon", "PERSOON-1"),
	}
	if _, err := Render(text, anns); err == nil {
		t.Fatal("span with mismatched text accepted")
	}
}
