package kb

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
)

const (
	// LookupPattern matches the bib-code table files shipped alongside the
	// application, e.g. titles_bibids_2024-03-01.csv.
	LookupPattern = "titles_bibids_*.csv"

	// MaxLookupSize caps the lookup file at 10MB.
	MaxLookupSize = 10 * 1024 * 1024
)

// Lookup is an immutable snapshot of the bib-code to publication-name
// table, loaded once per run.
type Lookup struct {
	names map[string]string
	file  string
}

// Name resolves a bib code to its publication name, uppercased. The second
// return value is false on a lookup miss.
func (l *Lookup) Name(bib string) (string, bool) {
	name, ok := l.names[strings.TrimSpace(bib)]
	return name, ok
}

// Len returns the number of loaded bib codes.
func (l *Lookup) Len() int { return len(l.names) }

// File returns the path the table was loaded from.
func (l *Lookup) File() string { return l.file }

// FindLookupFile returns the most recent lookup CSV in dir, chosen by
// filename order since the files carry a date suffix.
func FindLookupFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, LookupPattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no lookup file matching %q in %s", LookupPattern, dir)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	if len(matches) > 1 {
		slog.Debug("multiple lookup files found, using most recent", logging.File(matches[0]))
	}
	return matches[0], nil
}

// LoadLookup reads a lookup CSV with rows of the form
// "publication name,bib code". Rows with the wrong column count or empty
// cells are skipped with a warning. Duplicate bib codes keep the
// last-loaded value. An unreadable or empty table is an error: the run
// cannot proceed without it.
func LoadLookup(path string) (*Lookup, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("lookup file: %w", err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("lookup file %s is empty", path)
	}
	if info.Size() > MaxLookupSize {
		return nil, fmt.Errorf("lookup file %s is too large (%d bytes)", path, info.Size())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lookup file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // validated per row for better diagnostics

	names := make(map[string]string)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading lookup file %s: %w", path, err)
	}

	for i, row := range rows {
		if len(row) != 2 {
			slog.Warn("skipping lookup row with wrong column count",
				slog.Int("row", i+1), slog.Int("columns", len(row)))
			continue
		}
		name := strings.TrimSpace(row[0])
		bib := strings.TrimSpace(row[1])
		if name == "" || bib == "" {
			slog.Warn("skipping lookup row with empty cell", slog.Int("row", i+1))
			continue
		}
		if _, ok := names[bib]; ok {
			// Last row wins on duplicate keys.
			slog.Warn("duplicate bib code in lookup table, keeping later row",
				slog.Int("row", i+1), slog.String("bib", bib))
		}
		names[bib] = name
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("lookup file %s contains no usable rows", path)
	}

	slog.Info("loaded lookup table", logging.File(path), slog.Int("bib_codes", len(names)))
	return &Lookup{names: names, file: path}, nil
}
