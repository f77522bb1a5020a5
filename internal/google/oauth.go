package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
)

const cacheDirName = "kbmaskin"

var accountSafeRe = regexp.MustCompile(`[^\w\-.]`)

// ReadCredentials loads an OAuth2 client configuration from a credentials
// JSON file, requesting read-only Gmail access.
func ReadCredentials(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("invalid credentials file %s: %w", path, err)
	}
	return conf, nil
}

// TokenFile returns the cached token path for an account.
func TokenFile(account string) (string, error) {
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	safe := accountSafeRe.ReplaceAllString(account, "_")
	return filepath.Join(cache, cacheDirName, "token_"+safe+".json"), nil
}

// HasToken checks whether a cached token exists for the account.
func HasToken(account string) bool {
	file, err := TokenFile(account)
	if err != nil {
		return false
	}
	_, err = os.Stat(file)
	return err == nil
}

// SaveToken exchanges an authorization code and caches the token for the
// account.
func SaveToken(ctx context.Context, conf *oauth2.Config, account, authCode string) error {
	tok, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	file, err := TokenFile(account)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(file), 0o700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// AuthURL returns the URL the operator must visit to authorize the app.
func AuthURL(conf *oauth2.Config) string {
	return conf.AuthCodeURL("state", oauth2.AccessTypeOffline)
}

// TokenSource returns a refreshing token source backed by the account's
// cached token. It validates the token before returning.
func TokenSource(ctx context.Context, conf *oauth2.Config, account string) (oauth2.TokenSource, error) {
	file, err := TokenFile(account)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("no cached Google OAuth token for account %s, run the auth command first", account)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", file, err)
	}

	ts := conf.TokenSource(ctx, &tok)
	if _, err := ts.Token(); err != nil {
		return nil, fmt.Errorf("cached token for account %s is invalid: %w", account, err)
	}
	return ts, nil
}

// HTTPClient returns an HTTP client authenticated for the account.
func HTTPClient(ctx context.Context, conf *oauth2.Config, account string) (*http.Client, error) {
	ts, err := TokenSource(ctx, conf, account)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}
