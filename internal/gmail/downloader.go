package gmail

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

// MessageSource supplies matching messages and their JPG attachments.
// *Client implements it; tests substitute a fake.
type MessageSource interface {
	ForeachMessageID(ctx context.Context, query string, fn func(id string) error) error
	ListJPGAttachments(ctx context.Context, messageID string) ([]*AttachmentInfo, error)
	FetchAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error)
}

// DownloadSummary is the result of one download run.
type DownloadSummary struct {
	RunID      string
	Emails     int
	Processed  int
	Downloaded int
	Skipped    int
	TotalBytes int64
	Query      string
	OutputDir  string
	Cancelled  bool
}

// Downloader fetches JPG attachments from matching mails into a directory,
// resolving name conflicts through the session.
type Downloader struct {
	Source    MessageSource
	OutputDir string
}

// Run executes one download run. Attachments already fetched during this
// run (retried messages) are skipped silently via the session's seen-set;
// collisions with files on disk go through the conflict decision machine.
func (d *Downloader) Run(sess *run.Session, sender, startDate, endDate string) (*DownloadSummary, error) {
	logger := logging.WithRun(slog.Default(), sess.ID())

	if err := os.MkdirAll(d.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	query, err := BuildQuery(sender, startDate, endDate)
	if err != nil {
		return nil, err
	}
	logger.Info("starting download", slog.String("query", query), slog.String("output_dir", d.OutputDir))

	summary := &DownloadSummary{
		RunID:     sess.ID(),
		Query:     query,
		OutputDir: d.OutputDir,
	}

	sess.Report("Söker efter emails...", 0)
	var ids []string
	err = d.Source.ForeachMessageID(sess.Context(), query, func(id string) error {
		if sess.Cancelled() {
			return run.ErrCancelled
		}
		ids = append(ids, id)
		sess.Report(fmt.Sprintf("Hämtat %d emails...", len(ids)), 0)
		return nil
	})
	switch {
	case err == run.ErrCancelled || sess.Cancelled():
		summary.Cancelled = true
		return summary, nil
	case err != nil:
		return nil, err
	}
	summary.Emails = len(ids)
	logger.Info("search finished", slog.Int("emails", len(ids)))

	for i, id := range ids {
		if sess.Cancelled() {
			summary.Cancelled = true
			return summary, nil
		}
		sess.Report(fmt.Sprintf("Bearbetar email %d/%d", i+1, len(ids)), (i+1)*100/len(ids))

		downloaded, skipped, cancelled := d.processMessage(sess, logger, id)
		if cancelled {
			summary.Cancelled = true
			return summary, nil
		}
		summary.Downloaded += downloaded.count
		summary.TotalBytes += downloaded.bytes
		summary.Skipped += skipped
		if downloaded.count > 0 || skipped > 0 {
			summary.Processed++
		}
	}

	logger.Info("download completed",
		slog.Int("downloaded", summary.Downloaded),
		slog.Int("skipped", summary.Skipped),
		slog.String("total_size", FormatSize(summary.TotalBytes)))
	return summary, nil
}

type downloadedTally struct {
	count int
	bytes int64
}

// processMessage downloads every JPG attachment of one message.
func (d *Downloader) processMessage(sess *run.Session, logger *slog.Logger, messageID string) (downloadedTally, int, bool) {
	var tally downloadedTally
	skipped := 0

	attachments, err := d.Source.ListJPGAttachments(sess.Context(), messageID)
	if err != nil {
		if sess.Cancelled() {
			return tally, skipped, true
		}
		logger.Warn("failed to inspect message", slog.String("message_id", messageID), logging.Err(err))
		return tally, skipped, false
	}

	for _, att := range attachments {
		if sess.Cancelled() {
			return tally, skipped, true
		}

		// Re-fetch guard, scoped to this run only.
		if sess.MarkSeen(att.MessageID + "/" + att.AttachmentID) {
			continue
		}

		name := SanitizeFilename(att.Filename)
		target := filepath.Join(d.OutputDir, name)
		if _, err := os.Stat(target); err == nil {
			decision, derr := sess.Decide(target)
			if derr != nil || decision == run.DecisionCancel {
				return tally, skipped, true
			}
			if decision == run.DecisionSkip {
				skipped++
				logger.Info("skipped existing file", logging.File(name), logging.Status(logging.StatusSkipped))
				continue
			}
		}

		data, err := d.Source.FetchAttachment(sess.Context(), att.MessageID, att.AttachmentID)
		if err != nil {
			if sess.Cancelled() {
				return tally, skipped, true
			}
			logger.Warn("failed to download attachment", logging.File(name), logging.Err(err))
			continue
		}
		if sess.Cancelled() {
			return tally, skipped, true
		}

		if err := os.WriteFile(target, data, 0o644); err != nil {
			logger.Error("failed to save file", logging.File(name), logging.Err(err))
			continue
		}
		tally.count++
		tally.bytes += int64(len(data))
		logger.Info("downloaded attachment", logging.File(name),
			slog.String("size", FormatSize(int64(len(data)))))
	}
	return tally, skipped, false
}

// FormatSize renders a byte count for logs and summaries.
func FormatSize(n int64) string {
	switch {
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(n)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/1024/1024)
	}
}
