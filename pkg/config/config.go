// Package config holds the assetmanifest configuration, loaded with viper
// from (highest precedence first) flags, environment variables prefixed
// ASSETMANIFEST, and an optional .assetmanifest.yaml in the working directory
// or $HOME.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config holds all configuration for assetmanifest.
type Config struct {
	Repo      RepoConfig      `mapstructure:"repo"`
	Manifests ManifestsConfig `mapstructure:"manifests"`
	Update    UpdateConfig    `mapstructure:"update"`
}

// RepoConfig identifies the GitHub repository whose releases carry the assets.
type RepoConfig struct {
	Owner string `mapstructure:"owner"`
	Name  string `mapstructure:"name"`
}

// ManifestsConfig locates the published documents.
type ManifestsConfig struct {
	Dicts         string `mapstructure:"dicts"`
	Layouts       string `mapstructure:"layouts"`
	DictsMetadata string `mapstructure:"dicts_metadata"`
}

// UpdateConfig tunes the update run.
type UpdateConfig struct {
	TagPattern string `mapstructure:"tag_pattern"`
	Workers    int    `mapstructure:"workers"`
}

var defaultConfig = Config{
	Manifests: ManifestsConfig{
		Dicts:         "docs/dicts-manifest.json",
		Layouts:       "docs/layouts-manifest.json",
		DictsMetadata: "docs/dicts-metadata.json",
	},
	Update: UpdateConfig{
		TagPattern: "",
		Workers:    4,
	},
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("manifests.dicts", defaultConfig.Manifests.Dicts)
	v.SetDefault("manifests.layouts", defaultConfig.Manifests.Layouts)
	v.SetDefault("manifests.dicts_metadata", defaultConfig.Manifests.DictsMetadata)
	v.SetDefault("update.tag_pattern", defaultConfig.Update.TagPattern)
	v.SetDefault("update.workers", defaultConfig.Update.Workers)

	v.SetConfigName(".assetmanifest")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home)
	}

	v.SetEnvPrefix("ASSETMANIFEST")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Update.Workers <= 0 {
		cfg.Update.Workers = defaultConfig.Update.Workers
	}
	return &cfg, nil
}

// Token returns the GitHub API token from the environment. Empty means
// unauthenticated requests.
func Token() string {
	return os.Getenv("GITHUB_TOKEN")
}
