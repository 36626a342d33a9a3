package batch

import (
	"fmt"
	"strings"

	"veil/internal/detect"
)

// Column layout of an input record. The de-identified note text is appended
// as a tenth column on output.
const (
	colPatientHash = iota
	colNoteID
	colCategory
	colFirstName
	colInitials
	colFamilyName
	colFamilyNameCapitals
	colFamilyName2
	colNoteText

	numColumns = 9
)

// Record is one parsed tab-delimited input line.
type Record struct {
	PatientHash        string
	NoteID             string
	Category           string
	FirstName          string
	Initials           string
	FamilyName         string
	FamilyNameCapitals string
	FamilyName2        string
	NoteText           string

	columns []string // original columns, re-emitted verbatim on output
}

// ParseRecord splits a tab-delimited line into a Record.
func ParseRecord(line string) (Record, error) {
	cols := strings.Split(line, "\t")
	if len(cols) < numColumns {
		return Record{}, fmt.Errorf("record has %d columns, want %d", len(cols), numColumns)
	}
	return Record{
		PatientHash:        cols[colPatientHash],
		NoteID:             cols[colNoteID],
		Category:           cols[colCategory],
		FirstName:          cols[colFirstName],
		Initials:           cols[colInitials],
		FamilyName:         cols[colFamilyName],
		FamilyNameCapitals: cols[colFamilyNameCapitals],
		FamilyName2:        cols[colFamilyName2],
		NoteText:           cols[colNoteText],
		columns:            cols,
	}, nil
}

// Document converts the record into the pipeline input. Multiple first
// names are separated by whitespace in the source column.
func (r Record) Document() detect.Document {
	doc := detect.Document{Text: r.NoteText}
	if r.FirstName != "" || r.FamilyName != "" || r.Initials != "" {
		doc.Patient = &detect.Patient{
			FirstNames: strings.Fields(r.FirstName),
			Initials:   r.Initials,
			Surname:    strings.TrimSpace(r.FamilyName),
		}
	}
	return doc
}

// OutputLine renders the original columns plus the de-identified text as
// the appended column. Tabs and newlines inside the de-identified text are
// flattened to spaces to keep the record on one line.
func (r Record) OutputLine(deidentified string) string {
	flat := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(deidentified)
	return strings.Join(append(append([]string{}, r.columns...), flat), "\t")
}
