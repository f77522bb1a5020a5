package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tripper99/DJs-KB-maskin/internal/google"
)

func newAuthCmd() *cobra.Command {
	var (
		credentialsFile string
		account         string
	)

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize read-only Gmail access",
		Long: `Auth performs the one-time OAuth flow. It prints an authorization URL,
waits for the code Google shows after consent and caches the resulting
token so later runs need no browser.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if credentialsFile == "" {
				credentialsFile = cfg.Gmail.CredentialsFile
			}
			if account == "" {
				account = cfg.Gmail.Account
			}

			conf, err := google.ReadCredentials(credentialsFile)
			if err != nil {
				return err
			}

			if google.HasToken(account) {
				fmt.Fprintf(os.Stderr, "A cached token for account %q already exists; re-authorizing replaces it.\n", account)
			}

			fmt.Printf("Open the following URL in a browser and authorize access:\n\n%s\n\n", google.AuthURL(conf))
			fmt.Print("Paste the authorization code: ")

			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return fmt.Errorf("reading authorization code: %w", scanner.Err())
			}
			code := strings.TrimSpace(scanner.Text())
			if code == "" {
				return fmt.Errorf("no authorization code given")
			}

			if err := google.SaveToken(cmd.Context(), conf, account, code); err != nil {
				return err
			}
			fmt.Printf("Token for account %q saved.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&credentialsFile, "credentials", "", "path to the OAuth client credentials JSON")
	cmd.Flags().StringVar(&account, "account", "", "account label for the cached token")

	return cmd
}
