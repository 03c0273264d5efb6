// Package config loads trueflow's own subsystem configuration (review
// defaults, sync remote, identity overrides) via Viper, layering a
// repository-local .trueflow/config.yaml over a user-global
// ~/.trueflowconfig.yaml, the way the original config layered a repo
// config over a global one.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/trueflow-dev/trueflow/internal/reviewlog"
)

// Config is trueflow's own settings, distinct from the per-record review
// log: review filter settings, a sync remote, and any identity overrides.
// Only the identity section is applied by commands; the review and sync
// sections are loaded and printed by `trueflow config`.
type Config struct {
	Review   ReviewConfig   `mapstructure:"review"`
	Sync     SyncConfig     `mapstructure:"sync"`
	Identity IdentityConfig `mapstructure:"identity"`
}

// ReviewConfig holds the review section of the config file. The `review`
// and `feedback` commands do not read it; their filters come only from
// their command-line flags.
type ReviewConfig struct {
	ExcludeKinds    []string `mapstructure:"exclude_kinds"`
	OnlyDirty       bool     `mapstructure:"only_dirty"`
	IncludeApproved bool     `mapstructure:"include_approved"`
}

// SyncConfig holds the sync section of the config file. The `sync` command
// does not read it; it always syncs against the "origin" remote.
type SyncConfig struct {
	Remote string `mapstructure:"remote"`
}

// IdentityConfig optionally overrides the git-config-derived identity.
type IdentityConfig struct {
	Email      string `mapstructure:"email"`
	SigningKey string `mapstructure:"signing_key"`
	AutoSign   bool   `mapstructure:"auto_sign"`
}

// Default returns trueflow's built-in defaults.
func Default() *Config {
	return &Config{
		Sync: SyncConfig{Remote: "origin"},
	}
}

func globalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return home, nil
}

func repoConfigDir(root string) string {
	return filepath.Join(root, ".trueflow")
}

// Load reads config from (in increasing precedence) ~/.trueflowconfig.yaml,
// <root>/.trueflow/config.yaml, and TRUEFLOW_-prefixed environment
// variables.
func Load(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("sync.remote", "origin")

	if home, err := globalConfigDir(); err == nil {
		v.SetConfigName(".trueflowconfig")
		v.AddConfigPath(home)
		if err := v.MergeInConfig(); err != nil && !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("read global config: %w", err)
			}
		}
	}

	v.SetConfigName("config")
	v.AddConfigPath(repoConfigDir(root))
	if err := v.MergeInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("read repo config: %w", err)
		}
	}

	v.SetEnvPrefix("TRUEFLOW")
	v.AutomaticEnv()

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// SaveRepoConfig writes cfg to <root>/.trueflow/config.yaml.
func SaveRepoConfig(root string, cfg *Config) error {
	dir := repoConfigDir(root)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("review.exclude_kinds", cfg.Review.ExcludeKinds)
	v.Set("review.only_dirty", cfg.Review.OnlyDirty)
	v.Set("review.include_approved", cfg.Review.IncludeApproved)
	v.Set("sync.remote", cfg.Sync.Remote)
	v.Set("identity.email", cfg.Identity.Email)
	v.Set("identity.signing_key", cfg.Identity.SigningKey)
	v.Set("identity.auto_sign", cfg.Identity.AutoSign)
	return v.WriteConfigAs(filepath.Join(dir, "config.yaml"))
}

// ResolveIdentity determines the Identity a review record should carry:
// the config's explicit override if set, otherwise git's user.email
// (and, if present, user.signingkey), falling back to an anonymous
// identity when neither is available.
func ResolveIdentity(cfg *Config, gitEmail, gitSigningKey string) reviewlog.Identity {
	email := cfg.Identity.Email
	if email == "" {
		email = gitEmail
	}
	if email == "" {
		email = "unknown@localhost"
	}

	signingKey := cfg.Identity.SigningKey
	if signingKey == "" {
		signingKey = gitSigningKey
	}

	var signature *string
	if signingKey != "" {
		signature = &signingKey
	}
	return reviewlog.NewEmailIdentity(email, signature)
}
