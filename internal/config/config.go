// Package config loads the optional YAML configuration file of the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/profile-stats/internal/domain"
	"github.com/naka-gawa/profile-stats/internal/gateway"
	"github.com/naka-gawa/profile-stats/internal/render"
)

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = ".profile-stats.yaml"

// Config holds the settings that can be stored in the configuration file.
// Command-line flags override any value set here.
type Config struct {
	User   string       `yaml:"user"`
	Stats  StatsConfig  `yaml:"stats"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Readme ReadmeConfig `yaml:"readme"`
}

// StatsConfig tunes the language ranking.
type StatsConfig struct {
	LanguageLimit int  `yaml:"language_limit"`
	IncludeForks  bool `yaml:"include_forks"`
}

// FetchConfig tunes the requests made to GitHub. Timeout is written as a
// duration string such as "90s"; zero disables it.
type FetchConfig struct {
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ReadmeConfig locates the stats block in the file updated by the readme command.
type ReadmeConfig struct {
	Path        string `yaml:"path"`
	StartMarker string `yaml:"start_marker"`
	EndMarker   string `yaml:"end_marker"`
}

// DefaultConfig returns the settings used when no configuration file sets them.
func DefaultConfig() *Config {
	return &Config{
		Stats: StatsConfig{
			LanguageLimit: domain.DefaultLanguageLimit,
		},
		Fetch: FetchConfig{
			Concurrency: gateway.DefaultConcurrency,
			Timeout:     60 * time.Second,
		},
		Readme: ReadmeConfig{
			Path:        "README.md",
			StartMarker: render.DefaultStartMarker,
			EndMarker:   render.DefaultEndMarker,
		},
	}
}

// Load reads the configuration file at path on top of the defaults.
// A missing file at DefaultPath is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
