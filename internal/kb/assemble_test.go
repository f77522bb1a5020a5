package kb

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// writeJPEG writes a small single-color JPEG so batches can be assembled
// for real in tests.
func writeJPEG(t *testing.T, dir, name string) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.White)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())
	return path
}

func jpegPages(t *testing.T, dir string, names ...string) []ParsedFile {
	t.Helper()
	pages := make([]ParsedFile, 0, len(names))
	for i, name := range names {
		path := writeJPEG(t, dir, name)
		pages = append(pages, ParsedFile{
			Path: path, Name: name, Bib: "4345612", Date: "1985-07-08",
			Publication: "AFTONBLADET", Sequence: i + 1, Groups: "01_000" + string(rune('1'+i)),
		})
	}
	return pages
}

func TestAssemble(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	pages := jpegPages(t, in, "a.jpg", "b.jpg", "c.jpg")

	a := &Assembler{OutputDir: out, PageThreshold: DefaultPageThreshold}
	sess := run.NewSession(context.Background(), nil, nil)
	target := filepath.Join(out, "1985-07-08 AFTONBLADET (3 sid).pdf")

	require.NoError(t, a.Assemble(sess, pages, target, nil))

	count, err := api.PageCountFile(target)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// No temp file left behind.
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(target), entries[0].Name())
}

func TestAssemble_CancelLeavesNoOutput(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	pages := jpegPages(t, in, "a.jpg")

	a := &Assembler{OutputDir: out, PageThreshold: DefaultPageThreshold}
	sess := run.NewSession(context.Background(), nil, nil)
	sess.Cancel()
	target := filepath.Join(out, "1985-07-08 AFTONBLADET (1 sid).pdf")

	err := a.Assemble(sess, pages, target, nil)
	assert.ErrorIs(t, err, run.ErrCancelled)

	entries, rerr := os.ReadDir(out)
	require.NoError(t, rerr)
	assert.Empty(t, entries)
}

func TestAssemble_PageProgressOnLargeBatch(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	pages := jpegPages(t, in, "a.jpg", "b.jpg", "c.jpg")

	a := &Assembler{OutputDir: out, PageThreshold: 2}
	sess := run.NewSession(context.Background(), nil, nil)
	target := filepath.Join(out, "merged.pdf")

	var reported []int
	err := a.Assemble(sess, pages, target, func(page, total int) {
		assert.Equal(t, 3, total)
		reported = append(reported, page)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, reported)
}

func TestDispose(t *testing.T) {
	t.Run("delete originals only", func(t *testing.T) {
		in := t.TempDir()
		out := t.TempDir()
		pages := jpegPages(t, in, "a.jpg", "b.jpg")

		a := &Assembler{OutputDir: out, DeleteOriginals: true}
		a.Dispose(pages)

		for _, p := range pages {
			assert.NoFileExists(t, p.Path)
		}
		assert.NoDirExists(t, filepath.Join(out, RenamedDirName))
	})

	t.Run("keep renamed and delete originals moves", func(t *testing.T) {
		in := t.TempDir()
		out := t.TempDir()
		pages := jpegPages(t, in, "bib4345612_19850708_01_0001.jpg")

		a := &Assembler{OutputDir: out, KeepRenamed: true, DeleteOriginals: true}
		a.Dispose(pages)

		assert.NoFileExists(t, pages[0].Path)
		assert.FileExists(t, filepath.Join(out, RenamedDirName, pages[0].RenamedName()))
	})

	t.Run("keep renamed only copies", func(t *testing.T) {
		in := t.TempDir()
		out := t.TempDir()
		pages := jpegPages(t, in, "bib4345612_19850708_01_0001.jpg")

		a := &Assembler{OutputDir: out, KeepRenamed: true}
		a.Dispose(pages)

		assert.FileExists(t, pages[0].Path)
		assert.FileExists(t, filepath.Join(out, RenamedDirName, pages[0].RenamedName()))
	})

	t.Run("neither flag leaves sources alone", func(t *testing.T) {
		in := t.TempDir()
		out := t.TempDir()
		pages := jpegPages(t, in, "a.jpg")

		a := &Assembler{OutputDir: out}
		a.Dispose(pages)

		assert.FileExists(t, pages[0].Path)
		assert.NoDirExists(t, filepath.Join(out, RenamedDirName))
	})
}

func TestValidateImage(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid jpeg", func(t *testing.T) {
		path := writeJPEG(t, dir, "ok.jpg")
		assert.NoError(t, ValidateImage(path))
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(dir, "fake.jpg")
		require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0o644))
		assert.Error(t, ValidateImage(path))
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, ValidateImage(filepath.Join(dir, "nope.jpg")))
	})
}
