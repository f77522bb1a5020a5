package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Tripper99/DJs-KB-maskin/internal/config"
	"github.com/Tripper99/DJs-KB-maskin/internal/gmail"
	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

type downloadOptions struct {
	credentialsFile string
	account         string
	sender          string
	startDate       string
	endDate         string
	outputDir       string
}

// apply overlays the config defaults with whatever flags were set, and
// writes the effective values back so they become the next run's defaults.
func (o *downloadOptions) apply(cfg *config.Config) {
	if o.credentialsFile == "" {
		o.credentialsFile = cfg.Gmail.CredentialsFile
	}
	if o.account == "" {
		o.account = cfg.Gmail.Account
	}
	if o.sender == "" {
		o.sender = cfg.Gmail.Sender
	}
	if o.startDate == "" {
		o.startDate = cfg.Gmail.StartDate
	}
	if o.endDate == "" {
		o.endDate = cfg.Gmail.EndDate
	}
	if o.outputDir == "" {
		o.outputDir = cfg.Gmail.OutputDir
	}

	cfg.Gmail.CredentialsFile = o.credentialsFile
	cfg.Gmail.Account = o.account
	cfg.Gmail.Sender = o.sender
	cfg.Gmail.StartDate = o.startDate
	cfg.Gmail.EndDate = o.endDate
	cfg.Gmail.OutputDir = o.outputDir
}

func newDownloadCmd() *cobra.Command {
	var opts downloadOptions

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download JPG attachments from Gmail",
		Long: `Download searches the authorized Gmail account for mails from the
configured sender within a date range and saves every JPG attachment
into the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cfg)

			sess, stop := newSession(cmd.Context())
			defer stop()

			summary, err := runDownload(sess, &opts)
			if err != nil {
				return err
			}
			printDownloadSummary(summary)
			rememberConfig(cfg)
			return nil
		},
	}

	addDownloadFlags(cmd, &opts)
	return cmd
}

func addDownloadFlags(cmd *cobra.Command, opts *downloadOptions) {
	cmd.Flags().StringVar(&opts.credentialsFile, "credentials", "", "path to the OAuth client credentials JSON")
	cmd.Flags().StringVar(&opts.account, "account", "", "account label for the cached token")
	cmd.Flags().StringVar(&opts.sender, "sender", "", "sender address to search for")
	cmd.Flags().StringVar(&opts.startDate, "start", "", "earliest mail date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.endDate, "end", "", "latest mail date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "directory to save attachments into")
}

func runDownload(sess *run.Session, opts *downloadOptions) (*gmail.DownloadSummary, error) {
	client, err := gmail.NewClient(sess.Context(), opts.credentialsFile, opts.account)
	if err != nil {
		return nil, err
	}

	d := &gmail.Downloader{
		Source:    client,
		OutputDir: opts.outputDir,
	}
	return d.Run(sess, opts.sender, opts.startDate, opts.endDate)
}

func printDownloadSummary(s *gmail.DownloadSummary) {
	fmt.Println()
	if s.Cancelled {
		fmt.Println("Download cancelled.")
	} else {
		fmt.Println("Download finished.")
	}
	fmt.Printf("  Emails found:     %d\n", s.Emails)
	fmt.Printf("  Emails processed: %d\n", s.Processed)
	fmt.Printf("  Files downloaded: %d (%s)\n", s.Downloaded, gmail.FormatSize(s.TotalBytes))
	if s.Skipped > 0 {
		fmt.Printf("  Files skipped:    %d\n", s.Skipped)
	}
	fmt.Printf("  Saved to:         %s\n", s.OutputDir)
}

// rememberConfig persists the effective settings so the next invocation
// starts from them.
func rememberConfig(cfg *config.Config) {
	if err := config.Save(cfg); err != nil {
		slog.Warn("could not persist settings", logging.Err(err))
	}
}
