package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Tripper99/DJs-KB-maskin/internal/config"
	"github.com/Tripper99/DJs-KB-maskin/internal/logging"
)

var (
	cfgFile  string
	logLevel string
)

// rootCmd represents the base command for the kbmaskin application
var rootCmd = &cobra.Command{
	Use:   "kbmaskin",
	Short: "Downloads KB newspaper scans from Gmail and merges them into PDFs",
	Long: `kbmaskin downloads JPG attachments from a Gmail account and merges
newspaper page scans into one PDF per date and publication.

Source files are named bib<code>_<date>_..._<sequence>.jpg; the bib code is
resolved to a publication name through a CSV lookup table.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(logLevel)
	},
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "kbmaskin version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: kbmaskin.yaml in . or ~/.kbmaskin)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newProcessCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}
