package kb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	digitsRe = regexp.MustCompile(`^\d+$`)
	dupRe    = regexp.MustCompile(`\s*\((\d+)\)$`)
)

// ParseFilename extracts bib code, date and page sequence from a source
// filename of the form
//
//	bib<code>_<date>_<group>..._<sequence>[ (n)].jpg
//
// The literal "bib" prefix is optional; the date is accepted as YYYYMMDD or
// YYYY-MM-DD and normalized to the dashed form. The trailing " (n)" suffix
// appears on duplicate downloads and is preserved for deterministic
// tie-breaking. A non-nil error describes why the file must be skipped;
// parsing never aborts the run.
func ParseFilename(path, name string, lookup *Lookup) (ParsedFile, error) {
	stem := name
	for _, ext := range []string{".jpeg", ".jpg", ".JPEG", ".JPG"} {
		if strings.HasSuffix(stem, ext) {
			stem = strings.TrimSuffix(stem, ext)
			break
		}
	}

	dup := ""
	if m := dupRe.FindStringSubmatch(stem); m != nil {
		dup = " (" + m[1] + ")"
		stem = strings.TrimRight(dupRe.ReplaceAllString(stem, ""), "_ ")
	}

	parts := strings.Split(stem, "_")
	if len(parts) < 3 {
		return ParsedFile{}, fmt.Errorf("unexpected name format: want bib_date_sequence, got %d parts", len(parts))
	}

	bib := strings.TrimPrefix(parts[0], "bib")
	if !digitsRe.MatchString(bib) {
		return ParsedFile{}, fmt.Errorf("invalid bib code %q", parts[0])
	}

	date, err := normalizeDate(parts[1])
	if err != nil {
		return ParsedFile{}, err
	}

	groups := parts[2:]
	seq, err := strconv.Atoi(groups[len(groups)-1])
	if err != nil {
		return ParsedFile{}, fmt.Errorf("invalid sequence number %q", groups[len(groups)-1])
	}

	p := ParsedFile{
		Path:     path,
		Name:     name,
		Bib:      bib,
		Date:     date,
		Sequence: seq,
		Groups:   strings.Join(groups, "_"),
		Dup:      dup,
	}

	if pub, ok := lookup.Name(bib); ok {
		p.Publication = strings.ToUpper(pub)
	} else {
		p.Unknown = true
	}
	return p, nil
}

// normalizeDate accepts YYYYMMDD and YYYY-MM-DD and returns YYYY-MM-DD.
func normalizeDate(raw string) (string, error) {
	layout := "20060102"
	if strings.Contains(raw, "-") {
		layout = "2006-01-02"
	}
	t, err := time.Parse(layout, raw)
	if err != nil {
		return "", fmt.Errorf("invalid date %q", raw)
	}
	return t.Format("2006-01-02"), nil
}
