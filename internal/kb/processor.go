package kb

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// DefaultPageThreshold is the page count above which a batch gets per-page
// sub-progress and extra cancellation checks.
const DefaultPageThreshold = 10

// Processor runs the full KB pipeline: scan, parse, group, resolve
// conflicts and assemble one PDF per batch.
type Processor struct {
	Lookup    *Lookup
	InputDir  string
	Assembler Assembler
}

// Run executes one processing run on the session's worker goroutine. Per
// file and per batch failures are absorbed into the summary; only unusable
// input (no files, bad directories) returns an error.
func (p *Processor) Run(sess *run.Session) (*Summary, error) {
	logger := logging.WithRun(slog.Default(), sess.ID())
	logger.Info("starting KB processing",
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.Assembler.OutputDir))

	if p.Assembler.PageThreshold <= 0 {
		p.Assembler.PageThreshold = DefaultPageThreshold
	}
	if err := os.MkdirAll(p.Assembler.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	summary := &Summary{
		RunID:          sess.ID(),
		OutputDir:      p.Assembler.OutputDir,
		PerPublication: make(map[string]int),
	}

	sess.Report("Läser bib-koder...", 2)

	files, err := p.scanInputDir()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no JPG files found in %s", p.InputDir)
	}
	summary.TotalFiles = len(files)

	parsed, skipped, unknown := p.parseAll(sess, files)
	summary.SkippedFiles = skipped
	summary.UnknownBibs = unknown
	if sess.Cancelled() {
		summary.Cancelled = true
		return summary, nil
	}

	sess.Report("Grupperar filer för PDF-skapande...", 35)
	batches := GroupBatches(parsed)
	logger.Info("grouped files into batches",
		slog.Int("files", len(parsed)), slog.Int("batches", len(batches)))

	for i := range batches {
		if sess.Cancelled() {
			summary.Cancelled = true
			return summary, nil
		}
		pct := 35 + (i+1)*60/len(batches)
		sess.Report(fmt.Sprintf("Skapar PDF %d/%d (%d%%): %s",
			i+1, len(batches), (i+1)*100/len(batches), batches[i].Publication), pct)

		cancelled := p.processBatch(sess, logger, &batches[i], pct, summary)
		if cancelled {
			summary.Cancelled = true
			return summary, nil
		}
	}

	sess.Report("KB-bearbetning slutförd!", 100)
	logger.Info("KB processing completed",
		slog.Int("created", summary.Created),
		slog.Int("overwritten", summary.Overwritten),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failed", summary.Failed),
		slog.Int("unknown_bibs", len(summary.UnknownBibs)))
	return summary, nil
}

// scanInputDir lists the input directory's JPG files in name order.
func (p *Processor) scanInputDir() ([]string, error) {
	entries, err := os.ReadDir(p.InputDir)
	if err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg":
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// parseAll parses every discovered file. Each file either parses into a
// batch member or is recorded as skipped with a reason; nothing is dropped
// silently.
func (p *Processor) parseAll(sess *run.Session, files []string) ([]ParsedFile, []SkippedFile, []string) {
	var (
		parsed     []ParsedFile
		skipped    []SkippedFile
		unknownSet = make(map[string]struct{})
	)
	for i, name := range files {
		if sess.Cancelled() {
			break
		}
		pct := 5 + i*30/len(files)
		sess.Report(fmt.Sprintf("Tolkar filnamn %d/%d (%d%%): %s",
			i+1, len(files), (i+1)*100/len(files), name), pct)

		pf, err := ParseFilename(filepath.Join(p.InputDir, name), name, p.Lookup)
		if err != nil {
			slog.Warn("skipping file", logging.File(name), logging.Err(err))
			skipped = append(skipped, SkippedFile{Name: name, Reason: err.Error()})
			continue
		}
		if pf.Unknown {
			unknownSet[pf.Bib] = struct{}{}
		}
		parsed = append(parsed, pf)
	}

	unknown := make([]string, 0, len(unknownSet))
	for bib := range unknownSet {
		unknown = append(unknown, bib)
	}
	sort.Strings(unknown)
	return parsed, skipped, unknown
}

// processBatch resolves one batch end to end and records the outcome in
// the summary. The return value reports run cancellation.
func (p *Processor) processBatch(sess *run.Session, logger *slog.Logger, b *Batch, pct int, summary *Summary) bool {
	valid, cancelled := p.validatePages(sess, b, pct, summary)
	if cancelled {
		return true
	}
	if len(valid) == 0 {
		name := b.PDFName(len(b.Pages))
		logger.Error("no valid images in batch", logging.Batch(name))
		summary.Failed++
		summary.Batches = append(summary.Batches, BatchResult{
			Name: name, Status: BatchFailed, Reason: "no valid images",
		})
		return false
	}

	name := b.PDFName(len(valid))
	target := filepath.Join(p.Assembler.OutputDir, name)
	overwriting := false

	if _, err := os.Stat(target); err == nil {
		d, derr := sess.Decide(target)
		if derr != nil || d == run.DecisionCancel {
			return true
		}
		if d == run.DecisionSkip {
			logger.Info("skipped existing PDF", logging.Batch(name), logging.Status(logging.StatusSkipped))
			summary.Skipped++
			summary.Batches = append(summary.Batches, BatchResult{Name: name, Pages: len(valid), Status: BatchSkipped})
			return false
		}
		overwriting = true
	}

	err := p.Assembler.Assemble(sess, valid, target, func(page, total int) {
		sess.Report(fmt.Sprintf("Skapar stor PDF: %s (%d/%d sidor)", b.Publication, page, total), pct)
	})
	switch {
	case err == ErrCancelled:
		return true
	case err != nil:
		logger.Error("failed to create PDF", logging.Batch(name), logging.Err(err))
		summary.Failed++
		summary.Batches = append(summary.Batches, BatchResult{
			Name: name, Pages: len(valid), Status: BatchFailed, Reason: err.Error(),
		})
		return false
	}

	p.Assembler.Dispose(valid)

	status := BatchCreated
	if overwriting {
		status = BatchOverwritten
		summary.Overwritten++
	} else {
		summary.Created++
	}
	summary.PerPublication[b.Publication]++
	summary.Batches = append(summary.Batches, BatchResult{Name: name, Pages: len(valid), Status: status})
	logger.Info("created PDF", logging.Batch(name), slog.Int("pages", len(valid)),
		logging.Publication(b.Publication), logging.Status(logging.StatusSuccess))
	return false
}

// validatePages filters a batch down to its decodable pages, preserving
// order. Large batches report per-page validation progress.
func (p *Processor) validatePages(sess *run.Session, b *Batch, pct int, summary *Summary) ([]ParsedFile, bool) {
	large := len(b.Pages) > p.Assembler.PageThreshold
	var valid []ParsedFile
	for i, page := range b.Pages {
		if sess.Cancelled() {
			return nil, true
		}
		if large {
			sess.Report(fmt.Sprintf("Kontrollerar bilder för stor PDF: %s (%d/%d)",
				b.Publication, i+1, len(b.Pages)), pct)
		}
		if err := ValidateImage(page.Path); err != nil {
			slog.Error("invalid image in batch",
				logging.File(page.Name), logging.Publication(b.Publication), logging.Err(err))
			summary.SkippedFiles = append(summary.SkippedFiles, SkippedFile{Name: page.Name, Reason: err.Error()})
			continue
		}
		valid = append(valid, page)
	}
	return valid, false
}
