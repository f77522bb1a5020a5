package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tripper99/DJs-KB-maskin/internal/config"
	"github.com/Tripper99/DJs-KB-maskin/internal/kb"
	"github.com/Tripper99/DJs-KB-maskin/internal/run"
)

type processOptions struct {
	inputDir        string
	outputDir       string
	lookupFile      string
	keepRenamed     bool
	deleteOriginals bool
	pageThreshold   int
}

func (o *processOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	if o.inputDir == "" {
		o.inputDir = cfg.KB.InputDir
	}
	if o.outputDir == "" {
		o.outputDir = cfg.KB.OutputDir
	}
	if o.lookupFile == "" {
		o.lookupFile = cfg.KB.LookupFile
	}
	if !cmd.Flags().Changed("keep-renamed") {
		o.keepRenamed = cfg.KB.KeepRenamed
	}
	if !cmd.Flags().Changed("delete-originals") {
		o.deleteOriginals = cfg.KB.DeleteOriginals
	}
	if !cmd.Flags().Changed("page-threshold") {
		o.pageThreshold = cfg.KB.PageThreshold
	}

	cfg.KB.InputDir = o.inputDir
	cfg.KB.OutputDir = o.outputDir
	cfg.KB.LookupFile = o.lookupFile
	cfg.KB.KeepRenamed = o.keepRenamed
	cfg.KB.DeleteOriginals = o.deleteOriginals
	cfg.KB.PageThreshold = o.pageThreshold
}

func newProcessCmd() *cobra.Command {
	var opts processOptions

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Merge KB page scans into per-publication PDFs",
		Long: `Process scans a directory of KB page images, resolves each file's bib
code to a publication name through the CSV lookup table and merges every
date+publication group into one chronologically ordered PDF.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts.apply(cmd, cfg)

			sess, stop := newSession(cmd.Context())
			defer stop()

			summary, err := runProcess(sess, &opts)
			if err != nil {
				return err
			}
			printProcessSummary(summary)
			rememberConfig(cfg)
			return nil
		},
	}

	addProcessFlags(cmd, &opts)
	return cmd
}

func addProcessFlags(cmd *cobra.Command, opts *processOptions) {
	cmd.Flags().StringVarP(&opts.inputDir, "input", "i", "", "directory with the JPG page scans")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "directory for the generated PDFs")
	cmd.Flags().StringVar(&opts.lookupFile, "lookup", "", "bib-to-publication CSV file (default: newest titles_bibids_*.csv in the input directory)")
	cmd.Flags().BoolVar(&opts.keepRenamed, "keep-renamed", false, "keep renamed copies of the source images")
	cmd.Flags().BoolVar(&opts.deleteOriginals, "delete-originals", true, "delete source images after a successful merge")
	cmd.Flags().IntVar(&opts.pageThreshold, "page-threshold", kb.DefaultPageThreshold, "page count above which per-page progress is shown")
}

func runProcess(sess *run.Session, opts *processOptions) (*kb.Summary, error) {
	lookupFile := opts.lookupFile
	if lookupFile == "" {
		found, err := kb.FindLookupFile(opts.inputDir)
		if err != nil {
			return nil, err
		}
		lookupFile = found
	}
	lookup, err := kb.LoadLookup(lookupFile)
	if err != nil {
		return nil, err
	}

	p := &kb.Processor{
		Lookup:   lookup,
		InputDir: opts.inputDir,
		Assembler: kb.Assembler{
			OutputDir:       opts.outputDir,
			KeepRenamed:     opts.keepRenamed,
			DeleteOriginals: opts.deleteOriginals,
			PageThreshold:   opts.pageThreshold,
		},
	}
	return p.Run(sess)
}

func printProcessSummary(s *kb.Summary) {
	fmt.Println()
	if s.Cancelled {
		fmt.Println("Processing cancelled.")
	} else {
		fmt.Println("Processing finished.")
	}
	fmt.Printf("  Files scanned:  %d\n", s.TotalFiles)
	fmt.Printf("  PDFs created:   %d\n", s.Created)
	if s.Overwritten > 0 {
		fmt.Printf("  PDFs overwritten: %d\n", s.Overwritten)
	}
	if s.Skipped > 0 {
		fmt.Printf("  Batches skipped: %d\n", s.Skipped)
	}
	if s.Failed > 0 {
		fmt.Printf("  Batches failed: %d\n", s.Failed)
	}
	fmt.Printf("  Saved to:       %s\n", s.OutputDir)

	if len(s.PerPublication) > 0 {
		fmt.Println("\nPer publication:")
		pubs := make([]string, 0, len(s.PerPublication))
		for pub := range s.PerPublication {
			pubs = append(pubs, pub)
		}
		sort.Strings(pubs)
		for _, pub := range pubs {
			fmt.Printf("  %s: %d\n", pub, s.PerPublication[pub])
		}
	}

	if len(s.UnknownBibs) > 0 {
		fmt.Println("\nBib codes missing from the lookup table:")
		for _, bib := range s.UnknownBibs {
			fmt.Printf("  %s\n", bib)
		}
	}

	if len(s.SkippedFiles) > 0 {
		fmt.Println("\nSkipped files:")
		for _, sf := range s.SkippedFiles {
			fmt.Printf("  %s: %s\n", sf.Name, sf.Reason)
		}
	}
}
