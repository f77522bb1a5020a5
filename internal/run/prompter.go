package run

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// PromptRequest is one pending conflict question for a front-end to answer.
type PromptRequest struct {
	Target string
	Reply  chan<- Decision
}

// ChannelPrompter delivers conflict prompts to a front-end over a channel.
// The worker goroutine blocks in Ask until the front-end sends a reply or
// the run is cancelled. This keeps the prompt ordering deterministic: at
// most one request is in flight at a time.
type ChannelPrompter struct {
	Requests chan PromptRequest
}

// NewChannelPrompter returns a prompter whose Requests channel a front-end
// should service for the lifetime of the run.
func NewChannelPrompter() *ChannelPrompter {
	return &ChannelPrompter{Requests: make(chan PromptRequest)}
}

// Ask posts the request and waits for the answer.
func (p *ChannelPrompter) Ask(ctx context.Context, target string) (Decision, error) {
	reply := make(chan Decision, 1)
	select {
	case p.Requests <- PromptRequest{Target: target, Reply: reply}:
	case <-ctx.Done():
		return DecisionCancel, ctx.Err()
	}
	select {
	case d := <-reply:
		return d, nil
	case <-ctx.Done():
		return DecisionCancel, ctx.Err()
	}
}

// TerminalPrompter asks on a terminal. Used by the CLI commands.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// Ask prints the conflict and reads one of o/O/s/S/a answers.
func (p *TerminalPrompter) Ask(ctx context.Context, target string) (Decision, error) {
	if ctx.Err() != nil {
		return DecisionCancel, ctx.Err()
	}
	fmt.Fprintf(p.Out, "File already exists: %s\n", target)
	fmt.Fprint(p.Out, "[o]verwrite, [O]verwrite all, [s]kip, [S]kip all, [a]bort? ")

	scanner := bufio.NewScanner(p.In)
	if !scanner.Scan() {
		return DecisionCancel, scanner.Err()
	}
	switch strings.TrimSpace(scanner.Text()) {
	case "o":
		return DecisionOverwrite, nil
	case "O":
		return DecisionOverwriteAll, nil
	case "s":
		return DecisionSkip, nil
	case "S":
		return DecisionSkipAll, nil
	default:
		return DecisionCancel, nil
	}
}
