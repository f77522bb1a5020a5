package run

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// ErrCancelled signals that an operation stopped because the run was
// cancelled. It is a clean-exit path, not a failure.
var ErrCancelled = errors.New("run cancelled")

// Decision is the operator's answer to a file conflict prompt.
type Decision int

const (
	DecisionNone Decision = iota
	DecisionOverwrite
	DecisionOverwriteAll
	DecisionSkip
	DecisionSkipAll
	DecisionCancel
)

// String returns a human-readable name for the decision.
func (d Decision) String() string {
	switch d {
	case DecisionOverwrite:
		return "overwrite"
	case DecisionOverwriteAll:
		return "overwrite_all"
	case DecisionSkip:
		return "skip"
	case DecisionSkipAll:
		return "skip_all"
	case DecisionCancel:
		return "cancel"
	default:
		return "none"
	}
}

// Prompter asks the operator what to do about a conflicting target file.
// Ask blocks until the operator answers or ctx is done.
type Prompter interface {
	Ask(ctx context.Context, target string) (Decision, error)
}

// Progress receives status text and a completion percentage (0-100).
type Progress func(status string, percent int)

// Session is the state of one processing run. It carries the cancellation
// flag, the run-level conflict decision override and the set of remote
// attachment identifiers already fetched during this run.
type Session struct {
	id       string
	ctx      context.Context
	cancel   context.CancelFunc
	canceled atomic.Bool

	mu       sync.Mutex
	override Decision // DecisionNone, DecisionOverwriteAll or DecisionSkipAll
	seen     map[string]struct{}

	prompter Prompter
	progress Progress
}

// NewSession creates a session bound to ctx. Both prompter and progress may
// be nil; a nil prompter resolves every conflict as skip.
func NewSession(ctx context.Context, prompter Prompter, progress Progress) *Session {
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		id:       uuid.NewString(),
		ctx:      ctx,
		cancel:   cancel,
		seen:     make(map[string]struct{}),
		prompter: prompter,
		progress: progress,
	}
}

// ID returns the run identifier.
func (s *Session) ID() string { return s.id }

// Context returns the session context. It is done once the session is
// cancelled.
func (s *Session) Context() context.Context { return s.ctx }

// Cancel requests cancellation of the run. Safe to call from any goroutine
// and more than once.
func (s *Session) Cancel() {
	s.canceled.Store(true)
	s.cancel()
}

// Cancelled reports whether the run has been cancelled, either explicitly
// or through the parent context.
func (s *Session) Cancelled() bool {
	return s.canceled.Load() || s.ctx.Err() != nil
}

// Report forwards progress to the front-end, if any is attached.
func (s *Session) Report(status string, percent int) {
	if s.progress != nil {
		s.progress(status, percent)
	}
}

// Override returns the run-level conflict decision, DecisionNone when no
// "all" decision has been made yet.
func (s *Session) Override() Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.override
}

// Decide resolves a conflict for target, which is known to already exist.
// The run-level override is applied silently when set; otherwise the
// operator is prompted and an OverwriteAll/SkipAll answer becomes the
// override for the remainder of the run. The returned decision is always
// one of DecisionOverwrite, DecisionSkip or DecisionCancel.
func (s *Session) Decide(target string) (Decision, error) {
	if s.Cancelled() {
		return DecisionCancel, nil
	}

	switch s.Override() {
	case DecisionOverwriteAll:
		return DecisionOverwrite, nil
	case DecisionSkipAll:
		return DecisionSkip, nil
	}

	if s.prompter == nil {
		return DecisionSkip, nil
	}

	d, err := s.prompter.Ask(s.ctx, target)
	if err != nil {
		return DecisionCancel, err
	}

	switch d {
	case DecisionOverwrite:
		return DecisionOverwrite, nil
	case DecisionSkip:
		return DecisionSkip, nil
	case DecisionOverwriteAll:
		s.setOverride(DecisionOverwriteAll)
		return DecisionOverwrite, nil
	case DecisionSkipAll:
		s.setOverride(DecisionSkipAll)
		return DecisionSkip, nil
	default:
		s.Cancel()
		return DecisionCancel, nil
	}
}

func (s *Session) setOverride(d Decision) {
	s.mu.Lock()
	s.override = d
	s.mu.Unlock()
}

// MarkSeen records a remote attachment identifier and reports whether it
// had been fetched earlier in this run.
func (s *Session) MarkSeen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[id]; ok {
		return true
	}
	s.seen[id] = struct{}{}
	return false
}
