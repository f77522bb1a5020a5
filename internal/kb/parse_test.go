package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookup() *Lookup {
	return &Lookup{
		names: map[string]string{
			"4345612": "Aftonbladet",
			"9999999": "Dagens Nyheter",
		},
		file: "titles_bibids_test.csv",
	}
}

func TestParseFilename(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name string
		file string
		want ParsedFile
	}{
		{
			name: "typical",
			file: "bib4345612_19850708_01_0001.jpg",
			want: ParsedFile{
				Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
				Sequence: 1, Groups: "01_0001",
			},
		},
		{
			name: "dashed date",
			file: "bib4345612_1985-07-08_01_0002.jpg",
			want: ParsedFile{
				Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
				Sequence: 2, Groups: "01_0002",
			},
		},
		{
			name: "missing bib prefix",
			file: "4345612_19850708_01_0003.jpg",
			want: ParsedFile{
				Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
				Sequence: 3, Groups: "01_0003",
			},
		},
		{
			name: "duplicate download suffix",
			file: "bib4345612_19850708_01_0001 (1).jpg",
			want: ParsedFile{
				Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
				Sequence: 1, Groups: "01_0001", Dup: " (1)",
			},
		},
		{
			name: "uppercase extension",
			file: "bib4345612_19850708_01_0004.JPG",
			want: ParsedFile{
				Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
				Sequence: 4, Groups: "01_0004",
			},
		},
		{
			name: "unknown bib code",
			file: "bib1234567_19850708_01_0001.jpg",
			want: ParsedFile{
				Bib: "1234567", Date: "1985-07-08", Unknown: true,
				Sequence: 1, Groups: "01_0001",
			},
		},
		{
			name: "extra middle groups",
			file: "bib9999999_20240301_12_34_0007.jpeg",
			want: ParsedFile{
				Bib: "9999999", Date: "2024-03-01", Publication: "DAGENS NYHETER",
				Sequence: 7, Groups: "12_34_0007",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseFilename("/in/"+tc.file, tc.file, lookup)
			require.NoError(t, err)

			assert.Equal(t, tc.want.Bib, got.Bib)
			assert.Equal(t, tc.want.Date, got.Date)
			assert.Equal(t, tc.want.Publication, got.Publication)
			assert.Equal(t, tc.want.Unknown, got.Unknown)
			assert.Equal(t, tc.want.Sequence, got.Sequence)
			assert.Equal(t, tc.want.Groups, got.Groups)
			assert.Equal(t, tc.want.Dup, got.Dup)
			assert.Equal(t, tc.file, got.Name)
			assert.Equal(t, "/in/"+tc.file, got.Path)
		})
	}
}

func TestParseFilename_Errors(t *testing.T) {
	lookup := testLookup()

	tests := []struct {
		name string
		file string
	}{
		{"too few parts", "bib4345612_19850708.jpg"},
		{"non-numeric bib", "bibABC_19850708_01_0001.jpg"},
		{"invalid date", "bib4345612_19850732_01_0001.jpg"},
		{"garbage date", "bib4345612_notadate_01_0001.jpg"},
		{"non-numeric sequence", "bib4345612_19850708_01_page.jpg"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFilename("/in/"+tc.file, tc.file, lookup)
			assert.Error(t, err)
		})
	}
}

func TestDisplayName(t *testing.T) {
	known := ParsedFile{Bib: "4345612", Publication: "AFTONBLADET"}
	assert.Equal(t, "AFTONBLADET", known.DisplayName())

	unknown := ParsedFile{Bib: "1234567", Unknown: true}
	assert.Equal(t, "OKÄND 1234567", unknown.DisplayName())
}

func TestRenamedName(t *testing.T) {
	p := ParsedFile{
		Bib: "4345612", Date: "1985-07-08", Publication: "AFTONBLADET",
		Groups: "01_0001", Dup: " (1)",
	}
	assert.Equal(t, "1985-07-08 AFTONBLADET 4345612 01_0001 (1).jpg", p.RenamedName())
}

func TestPDFName_Sanitized(t *testing.T) {
	b := Batch{Date: "1985-07-08", Publication: "A/B:C"}
	assert.Equal(t, "1985-07-08 A_B_C (4 sid).pdf", b.PDFName(4))
}
