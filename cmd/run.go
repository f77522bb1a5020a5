package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Tripper99/DJs-KB-maskin/internal/config"
	"github.com/Tripper99/DJs-KB-maskin/internal/kb"
)

func newRunCmd() *cobra.Command {
	var (
		dlOpts downloadOptions
		pOpts  processOptions
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download attachments and merge them into PDFs in one go",
		Long: `Run chains download and process under one session: attachments are
fetched from Gmail into the download directory and the KB pipeline then
merges them into per-publication PDFs. When no separate input directory
is configured the pipeline reads the download directory directly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dlOpts.apply(cfg)
			pOpts.apply(cmd, cfg)
			chainDirs(&dlOpts, &pOpts, cfg)

			sess, stop := newSession(cmd.Context())
			defer stop()

			dlSummary, err := runDownload(sess, &dlOpts)
			if err != nil {
				return err
			}
			printDownloadSummary(dlSummary)
			if dlSummary.Cancelled {
				return nil
			}

			pSummary, err := runProcess(sess, &pOpts)
			if err != nil {
				return err
			}
			printProcessSummary(pSummary)
			rememberConfig(cfg)
			return nil
		},
	}

	cmd.Flags().StringVar(&dlOpts.credentialsFile, "credentials", "", "path to the OAuth client credentials JSON")
	cmd.Flags().StringVar(&dlOpts.account, "account", "", "account label for the cached token")
	cmd.Flags().StringVar(&dlOpts.sender, "sender", "", "sender address to search for")
	cmd.Flags().StringVar(&dlOpts.startDate, "start", "", "earliest mail date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dlOpts.endDate, "end", "", "latest mail date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dlOpts.outputDir, "download-dir", "", "directory to save attachments into")
	cmd.Flags().StringVar(&pOpts.outputDir, "pdf-dir", "", "directory for the generated PDFs (default: the download directory)")
	cmd.Flags().StringVar(&pOpts.lookupFile, "lookup", "", "bib-to-publication CSV file (default: newest titles_bibids_*.csv in the input directory)")
	cmd.Flags().BoolVar(&pOpts.keepRenamed, "keep-renamed", false, "keep renamed copies of the source images")
	cmd.Flags().BoolVar(&pOpts.deleteOriginals, "delete-originals", true, "delete source images after a successful merge")
	cmd.Flags().IntVar(&pOpts.pageThreshold, "page-threshold", kb.DefaultPageThreshold, "page count above which per-page progress is shown")
	return cmd
}

// chainDirs feeds the download directory into the pipeline when no input
// directory was given, so the two stages connect without extra flags.
func chainDirs(dl *downloadOptions, p *processOptions, cfg *config.Config) {
	if p.inputDir == "" {
		p.inputDir = dl.outputDir
		cfg.KB.InputDir = p.inputDir
	}
	if p.outputDir == "" {
		p.outputDir = dl.outputDir
		cfg.KB.OutputDir = p.outputDir
	}
}
