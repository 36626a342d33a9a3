package annotation

import "testing"

func span(start, end int, text string) Span {
	return Span{Start: start, End: end, Text: text}
}

func TestCheckSpan(t *testing.T) {
	text := "Jan Jansen woont in Utrecht"

	if err := CheckSpan(text, span(0, 10, "Jan Jansen")); err != nil {
		t.Fatalf("valid span rejected: %v", err)
	}
	if err := CheckSpan(text, span(0, 10, "Jan Janssen")); err == nil {
		t.Fatal("mismatched text accepted")
	}
	if err := CheckSpan(text, span(5, 5, "")); err == nil {
		t.Fatal("zero-length span accepted")
	}
	if err := CheckSpan(text, span(20, 100, "Utrecht")); err == nil {
		t.Fatal("out-of-range span accepted")
	}
	if err := CheckSpan(text, span(-1, 3, "Jan")); err == nil {
		t.Fatal("negative start accepted")
	}
}

func TestOverlapsAndContains(t *testing.T) {
	cases := []struct {
		name               string
		a, b               Span
		overlaps, contains bool
	}{
		{"disjoint", span(0, 5, ""), span(5, 10, ""), false, false},
		{"partial", span(0, 5, ""), span(3, 8, ""), true, false},
		{"nested", span(0, 10, ""), span(3, 8, ""), true, true},
		{"equal", span(2, 6, ""), span(2, 6, ""), true, true},
		{"shared_end", span(0, 10, ""), span(4, 10, ""), true, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.overlaps {
				t.Fatalf("Overlaps = %v, want %v", got, tc.overlaps)
			}
			if got := Overlaps(tc.b, tc.a); got != tc.overlaps {
				t.Fatalf("Overlaps not symmetric")
			}
			if got := Contains(tc.a, tc.b); got != tc.contains {
				t.Fatalf("Contains = %v, want %v", got, tc.contains)
			}
		})
	}

	if !StrictlyContains(span(0, 10, ""), span(3, 8, "")) {
		t.Fatal("nested span not strictly contained")
	}
	if StrictlyContains(span(2, 6, ""), span(2, 6, "")) {
		t.Fatal("equal spans must not be strictly contained")
	}
}

func TestAdjacentOver(t *testing.T) {
	text := "Heide-Jagers Op Akkerhuis, Utrecht"

	a := span(0, 5, "Heide")
	b := span(6, 12, "Jagers")
	if !AdjacentOver(a, b, text, " -") {
		t.Fatal("hyphen-separated spans not adjacent")
	}
	if !AdjacentOver(b, a, text, " -") {
		t.Fatal("adjacency not symmetric")
	}

	c := span(16, 25, "Akkerhuis")
	d := span(27, 34, "Utrecht")
	if AdjacentOver(c, d, text, " -") {
		t.Fatal("comma-separated spans reported adjacent")
	}

	// Touching spans have an empty gap.
	if !AdjacentOver(span(0, 5, "Heide"), span(5, 6, "-"), text, " -") {
		t.Fatal("touching spans not adjacent")
	}

	// Overlapping spans are never adjacent.
	if AdjacentOver(span(0, 8, ""), span(6, 12, ""), text, " -") {
		t.Fatal("overlapping spans reported adjacent")
	}
}

func TestSetCollapsesDuplicates(t *testing.T) {
	a := Annotation{Span: span(0, 7, "Utrecht"), Tag: "locatie", Detector: "locatie", Priority: 2}
	s := NewSet(a, a, a)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}

	// Same key, lower priority number wins.
	b := a
	b.Priority = 1
	s.Add(b)
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
	if got := s.Sorted()[0].Priority; got != 1 {
		t.Fatalf("Priority = %d, want 1", got)
	}
}

func TestSetSortedOrder(t *testing.T) {
	s := NewSet(
		Annotation{Span: span(5, 9, "text"), Tag: "b"},
		Annotation{Span: span(0, 4, "abcd"), Tag: "z"},
		Annotation{Span: span(5, 9, "text"), Tag: "a"},
		Annotation{Span: span(5, 12, "text so"), Tag: "a"},
	)
	got := s.Sorted()
	if len(got) != 4 {
		t.Fatalf("Len = %d, want 4", len(got))
	}
	if got[0].Start != 0 {
		t.Fatalf("first annotation starts at %d, want 0", got[0].Start)
	}
	if got[1].Tag != "a" || got[2].Tag != "b" {
		t.Fatalf("tag tie-break wrong: %q, %q", got[1].Tag, got[2].Tag)
	}
	if got[3].End != 12 {
		t.Fatalf("longer span must sort after shorter at same start")
	}
}
