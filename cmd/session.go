package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// newSession builds a session for a CLI run: Ctrl-C cancels the run
// cooperatively, conflicts are answered on the terminal and progress is
// written to stderr so stdout stays clean for the summary.
func newSession(ctx context.Context) (*run.Session, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)

	prompter := &run.TerminalPrompter{In: os.Stdin, Out: os.Stderr}
	progress := func(status string, percent int) {
		fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", percent, status)
	}
	return run.NewSession(ctx, prompter, progress), stop
}
