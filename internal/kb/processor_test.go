package kb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// scriptedPrompter returns pre-baked conflict answers in order.
type scriptedPrompter struct {
	answers []run.Decision
	asked   int
}

func (p *scriptedPrompter) Ask(ctx context.Context, target string) (run.Decision, error) {
	if p.asked >= len(p.answers) {
		return run.DecisionSkip, nil
	}
	d := p.answers[p.asked]
	p.asked++
	return d, nil
}

func newTestProcessor(t *testing.T, in, out string) *Processor {
	t.Helper()
	return &Processor{
		Lookup:   testLookup(),
		InputDir: in,
		Assembler: Assembler{
			OutputDir:     out,
			PageThreshold: DefaultPageThreshold,
		},
	}
}

func TestProcessorRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")
	writeJPEG(t, in, "bib4345612_19850708_01_0007.jpg")
	writeJPEG(t, in, "bib4345612_19850708_01_0008.jpg")
	writeJPEG(t, in, "bib4345612_19850708_01_0009.jpg")
	writeJPEG(t, in, "bib9999999_19850709_01_0001.jpg")

	p := newTestProcessor(t, in, out)
	sess := run.NewSession(context.Background(), nil, nil)

	summary, err := p.Run(sess)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.TotalFiles)
	assert.Equal(t, 2, summary.Created)
	assert.Zero(t, summary.Failed)
	assert.False(t, summary.Cancelled)
	assert.Empty(t, summary.SkippedFiles)
	assert.Empty(t, summary.UnknownBibs)
	assert.Equal(t, map[string]int{"AFTONBLADET": 1, "DAGENS NYHETER": 1}, summary.PerPublication)

	assert.FileExists(t, filepath.Join(out, "1985-07-08 AFTONBLADET (4 sid).pdf"))
	assert.FileExists(t, filepath.Join(out, "1985-07-09 DAGENS NYHETER (1 sid).pdf"))
}

func TestProcessorRun_UnknownBib(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib1234567_19850708_01_0001.jpg")

	p := newTestProcessor(t, in, out)
	summary, err := p.Run(run.NewSession(context.Background(), nil, nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"1234567"}, summary.UnknownBibs)
	assert.Equal(t, 1, summary.Created)
	assert.FileExists(t, filepath.Join(out, "1985-07-08 OKÄND 1234567 (1 sid).pdf"))
}

func TestProcessorRun_UnparseableAndInvalidFiles(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")
	// Parses fine but is not a decodable image.
	require.NoError(t, os.WriteFile(
		filepath.Join(in, "bib4345612_19850708_01_0002.jpg"), []byte("garbage"), 0o644))
	// Does not parse at all.
	require.NoError(t, os.WriteFile(
		filepath.Join(in, "holiday-photo.jpg"), []byte("garbage"), 0o644))

	p := newTestProcessor(t, in, out)
	summary, err := p.Run(run.NewSession(context.Background(), nil, nil))
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFiles)
	assert.Equal(t, 1, summary.Created)

	// Every excluded file is accounted for with a reason.
	require.Len(t, summary.SkippedFiles, 2)
	names := []string{summary.SkippedFiles[0].Name, summary.SkippedFiles[1].Name}
	assert.Contains(t, names, "holiday-photo.jpg")
	assert.Contains(t, names, "bib4345612_19850708_01_0002.jpg")
	for _, sf := range summary.SkippedFiles {
		assert.NotEmpty(t, sf.Reason)
	}

	// The valid page still made it into the batch on its own.
	assert.FileExists(t, filepath.Join(out, "1985-07-08 AFTONBLADET (1 sid).pdf"))
}

func TestProcessorRun_EmptyInput(t *testing.T) {
	p := newTestProcessor(t, t.TempDir(), t.TempDir())
	_, err := p.Run(run.NewSession(context.Background(), nil, nil))
	assert.Error(t, err)
}

func TestProcessorRun_ConflictSkip(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")
	existing := filepath.Join(out, "1985-07-08 AFTONBLADET (1 sid).pdf")
	require.NoError(t, os.WriteFile(existing, []byte("previous run"), 0o644))

	p := newTestProcessor(t, in, out)
	prompter := &scriptedPrompter{answers: []run.Decision{run.DecisionSkip}}
	summary, err := p.Run(run.NewSession(context.Background(), prompter, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Skipped)
	assert.Zero(t, summary.Created)
	assert.Equal(t, 1, prompter.asked)

	// The existing file was not touched.
	data, rerr := os.ReadFile(existing)
	require.NoError(t, rerr)
	assert.Equal(t, "previous run", string(data))
}

func TestProcessorRun_ConflictOverwrite(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")
	existing := filepath.Join(out, "1985-07-08 AFTONBLADET (1 sid).pdf")
	require.NoError(t, os.WriteFile(existing, []byte("previous run"), 0o644))

	p := newTestProcessor(t, in, out)
	prompter := &scriptedPrompter{answers: []run.Decision{run.DecisionOverwrite}}
	summary, err := p.Run(run.NewSession(context.Background(), prompter, nil))
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Overwritten)
	assert.Zero(t, summary.Created)

	info, serr := os.Stat(existing)
	require.NoError(t, serr)
	assert.Greater(t, info.Size(), int64(len("previous run")))
}

func TestProcessorRun_CancelAnswerStopsRun(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()

	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")
	writeJPEG(t, in, "bib9999999_19850709_01_0001.jpg")
	require.NoError(t, os.WriteFile(
		filepath.Join(out, "1985-07-08 AFTONBLADET (1 sid).pdf"), []byte("x"), 0o644))

	p := newTestProcessor(t, in, out)
	prompter := &scriptedPrompter{answers: []run.Decision{run.DecisionCancel}}
	sess := run.NewSession(context.Background(), prompter, nil)

	summary, err := p.Run(sess)
	require.NoError(t, err)

	assert.True(t, summary.Cancelled)
	assert.True(t, sess.Cancelled())
	// The second batch never ran.
	assert.NoFileExists(t, filepath.Join(out, "1985-07-09 DAGENS NYHETER (1 sid).pdf"))
}

func TestProcessorRun_PreCancelled(t *testing.T) {
	in := t.TempDir()
	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")

	p := newTestProcessor(t, in, t.TempDir())
	sess := run.NewSession(context.Background(), nil, nil)
	sess.Cancel()

	summary, err := p.Run(sess)
	require.NoError(t, err)
	assert.True(t, summary.Cancelled)
	assert.Zero(t, summary.Created)
}

func TestProcessorRun_ReportsProgress(t *testing.T) {
	in := t.TempDir()
	writeJPEG(t, in, "bib4345612_19850708_01_0001.jpg")

	var statuses []string
	var percents []int
	progress := func(status string, percent int) {
		statuses = append(statuses, status)
		percents = append(percents, percent)
	}

	p := newTestProcessor(t, in, t.TempDir())
	_, err := p.Run(run.NewSession(context.Background(), nil, progress))
	require.NoError(t, err)

	require.NotEmpty(t, statuses)
	assert.Equal(t, "KB-bearbetning slutförd!", statuses[len(statuses)-1])
	assert.Equal(t, 100, percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
}
