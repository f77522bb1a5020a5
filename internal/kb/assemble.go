package kb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// ErrCancelled is returned when assembly stops because the run was
// cancelled. The partially-written output is removed before returning.
var ErrCancelled = run.ErrCancelled

// RenamedDirName is the directory under the output directory that receives
// the renamed source images when the operator keeps them.
const RenamedDirName = "Jpg-filer med fina namn"

// Assembler writes one batch at a time into a multi-page PDF and disposes
// of the source images afterwards.
type Assembler struct {
	OutputDir       string
	KeepRenamed     bool // move sources to RenamedDirName instead of discarding
	DeleteOriginals bool // remove sources from the input directory on success
	PageThreshold   int  // batches above this page count report per-page progress
}

// Assemble streams pages into target one image at a time. The PDF is built
// under a temporary name and renamed into place only after the last page,
// so a cancelled or failed batch never leaves a partial output file.
// pageProgress, if non-nil, is called after each appended page for batches
// larger than PageThreshold.
func (a *Assembler) Assemble(sess *run.Session, pages []ParsedFile, target string, pageProgress func(page, total int)) error {
	if len(pages) == 0 {
		return errors.New("no pages to assemble")
	}

	tmp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".part")
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing stale temp file: %w", err)
	}
	large := len(pages) > a.PageThreshold

	for i, p := range pages {
		if sess.Cancelled() {
			os.Remove(tmp)
			return ErrCancelled
		}
		// pdfcpu creates the file on the first call and appends afterwards,
		// so only one decoded image is in memory at a time.
		if err := api.ImportImagesFile([]string{p.Path}, tmp, nil, nil); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("appending page %d (%s): %w", i+1, p.Name, err)
		}
		if large && pageProgress != nil {
			pageProgress(i+1, len(pages))
		}
	}

	if sess.Cancelled() {
		os.Remove(tmp)
		return ErrCancelled
	}

	// Overwrite decisions were taken before assembly started.
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		os.Remove(tmp)
		return fmt.Errorf("replacing existing output: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalizing output: %w", err)
	}
	return nil
}

// Dispose removes or relocates the source images of a completed batch.
// Failures are logged as warnings and never fail the batch.
func (a *Assembler) Dispose(pages []ParsedFile) {
	var renamedDir string
	if a.KeepRenamed {
		renamedDir = filepath.Join(a.OutputDir, RenamedDirName)
		if err := os.MkdirAll(renamedDir, 0o755); err != nil {
			slog.Warn("could not create renamed-originals directory", logging.Err(err))
			renamedDir = ""
		}
	}

	for _, p := range pages {
		switch {
		case renamedDir != "" && a.DeleteOriginals:
			dest := filepath.Join(renamedDir, p.RenamedName())
			if err := moveFile(p.Path, dest); err != nil {
				slog.Warn("could not move source image", logging.File(p.Name), logging.Err(err))
			}
		case renamedDir != "":
			dest := filepath.Join(renamedDir, p.RenamedName())
			if err := copyFile(p.Path, dest); err != nil {
				slog.Warn("could not copy source image", logging.File(p.Name), logging.Err(err))
			}
		case a.DeleteOriginals:
			if err := os.Remove(p.Path); err != nil {
				slog.Warn("could not remove source image", logging.File(p.Name), logging.Err(err))
			}
		}
	}
}

// moveFile renames src to dest, falling back to copy-and-delete across
// filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
