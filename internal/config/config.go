// Package config loads and persists operator settings through viper.
// Settings live in kbmaskin.yaml (working directory or ~/.kbmaskin) and
// can be overridden with KBMASKIN_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// GmailConfig holds the download-side settings.
type GmailConfig struct {
	Account         string `mapstructure:"account"`
	CredentialsFile string `mapstructure:"credentials_file"`
	Sender          string `mapstructure:"sender"`
	StartDate       string `mapstructure:"start_date"`
	EndDate         string `mapstructure:"end_date"`
	OutputDir       string `mapstructure:"output_dir"`
}

// KBConfig holds the JPG-to-PDF pipeline settings.
type KBConfig struct {
	InputDir        string `mapstructure:"input_dir"`
	OutputDir       string `mapstructure:"output_dir"`
	LookupFile      string `mapstructure:"lookup_file"`
	KeepRenamed     bool   `mapstructure:"keep_renamed"`
	DeleteOriginals bool   `mapstructure:"delete_originals"`
	PageThreshold   int    `mapstructure:"page_threshold"`
}

// Config is the full application configuration.
type Config struct {
	Gmail GmailConfig `mapstructure:"gmail"`
	KB    KBConfig    `mapstructure:"kb"`
}

func setDefaults() {
	home, _ := os.UserHomeDir()
	viper.SetDefault("gmail.account", "default")
	viper.SetDefault("gmail.sender", "noreply@kb.se")
	viper.SetDefault("gmail.output_dir", filepath.Join(home, "Downloads", "Gmail-nedladdningar"))
	viper.SetDefault("kb.keep_renamed", false)
	viper.SetDefault("kb.delete_originals", true)
	viper.SetDefault("kb.page_threshold", 10)
}

// Load reads the configuration. cfgFile, when non-empty, names an explicit
// config file; otherwise the default locations are searched. A missing
// config file is not an error: defaults apply.
func Load(cfgFile string) (*Config, error) {
	setDefaults()

	viper.SetEnvPrefix("KBMASKIN")
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kbmaskin")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.kbmaskin")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || os.IsNotExist(err)
		if !missing {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Save persists the current settings so the operator's selections survive
// restarts.
func Save(cfg *Config) error {
	viper.Set("gmail.account", cfg.Gmail.Account)
	viper.Set("gmail.credentials_file", cfg.Gmail.CredentialsFile)
	viper.Set("gmail.sender", cfg.Gmail.Sender)
	viper.Set("gmail.start_date", cfg.Gmail.StartDate)
	viper.Set("gmail.end_date", cfg.Gmail.EndDate)
	viper.Set("gmail.output_dir", cfg.Gmail.OutputDir)
	viper.Set("kb.input_dir", cfg.KB.InputDir)
	viper.Set("kb.output_dir", cfg.KB.OutputDir)
	viper.Set("kb.lookup_file", cfg.KB.LookupFile)
	viper.Set("kb.keep_renamed", cfg.KB.KeepRenamed)
	viper.Set("kb.delete_originals", cfg.KB.DeleteOriginals)
	viper.Set("kb.page_threshold", cfg.KB.PageThreshold)

	if err := viper.WriteConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return viper.WriteConfigAs("kbmaskin.yaml")
		}
		return err
	}
	return nil
}
