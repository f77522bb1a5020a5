package kb

import (
	"fmt"
	"strings"
)

// UnknownLabel is the display name prefix for files whose bib code is not
// in the lookup table.
const UnknownLabel = "OKÄND"

// ParsedFile is one source JPG whose name has been parsed successfully.
type ParsedFile struct {
	Path        string // full path to the source file
	Name        string // original filename
	Bib         string // bib code with the literal "bib" prefix stripped
	Date        string // normalized YYYY-MM-DD
	Publication string // publication name from the lookup table, "" on miss
	Unknown     bool   // true when the bib code had no lookup entry
	Sequence    int    // page ordering token, from the last digit group
	Groups      string // underscore-joined digit groups after the date
	Dup         string // duplicate-download suffix like " (1)", or ""
}

// DisplayName returns the publication name used for grouping and output
// naming. Unknown files carry their bib code so the operator can recover
// the pages.
func (p ParsedFile) DisplayName() string {
	if p.Unknown {
		return UnknownLabel + " " + p.Bib
	}
	return p.Publication
}

// RenamedName is the human-friendly name given to a preserved source image.
func (p ParsedFile) RenamedName() string {
	return sanitizeName(fmt.Sprintf("%s %s %s %s%s.jpg", p.Date, p.DisplayName(), p.Bib, p.Groups, p.Dup))
}

// SkippedFile records a source file excluded from the run with the reason.
type SkippedFile struct {
	Name   string
	Reason string
}

// Batch is the set of pages destined for one output PDF, keyed by date and
// publication display name. Pages are in output order.
type Batch struct {
	Date        string
	Publication string
	Pages       []ParsedFile
}

// PDFName returns the output filename for n written pages.
func (b *Batch) PDFName(n int) string {
	return sanitizeName(fmt.Sprintf("%s %s (%d sid).pdf", b.Date, b.Publication, n))
}

// BatchStatus classifies the outcome of one batch.
type BatchStatus string

const (
	BatchCreated     BatchStatus = "created"
	BatchOverwritten BatchStatus = "overwritten"
	BatchSkipped     BatchStatus = "skipped"
	BatchFailed      BatchStatus = "failed"
)

// BatchResult is the per-batch line of the run summary.
type BatchResult struct {
	Name   string
	Pages  int
	Status BatchStatus
	Reason string
}

// Summary is the result of one processing run.
type Summary struct {
	RunID          string
	TotalFiles     int
	Created        int
	Overwritten    int
	Skipped        int
	Failed         int
	Batches        []BatchResult
	SkippedFiles   []SkippedFile
	UnknownBibs    []string
	PerPublication map[string]int
	OutputDir      string
	Cancelled      bool
}

// sanitizeName replaces filesystem-unsafe characters while preserving
// parentheses and accented letters. Path separators and the Windows
// reserved set are all mapped to underscores, as are parent-directory
// sequences.
func sanitizeName(name string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", "..", "_",
		":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_",
	)
	return replacer.Replace(name)
}
