package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/company/gopm/internal/filemanager"
)

// Config represents the optional gopm.yml file in a project directory.
type Config struct {
	Version    int          `yaml:"version"`
	DeleteMode string       `yaml:"delete_mode,omitempty"`
	ScratchDir string       `yaml:"scratch_dir,omitempty"`
	Git        GitConfig    `yaml:"git"`
	Search     SearchConfig `yaml:"search"`
}

// Default returns the configuration used when no gopm.yml exists.
func Default() *Config {
	c := &Config{Version: 1}
	applyDefaults(c)
	return c
}

func applyDefaults(c *Config) {
	if c.DeleteMode == "" {
		c.DeleteMode = filemanager.ModeTrash
	}
	if c.Git.Binary == "" {
		c.Git.Binary = "git"
	}
	if c.Search.Providers == nil {
		c.Search.Providers = []string{ProviderGitHub}
	}
	if c.Search.GitHub.URL == "" {
		c.Search.GitHub.URL = DefaultGitHubURL
	}
	if c.Search.GitHub.Language == "" {
		c.Search.GitHub.Language = DefaultLanguage
	}
	if c.Search.GitHub.PerPage == 0 {
		c.Search.GitHub.PerPage = DefaultPerPage
	}
	if c.Search.GitLab.URL == "" {
		c.Search.GitLab.URL = DefaultGitLabURL
	}
	if c.Search.GitLab.PerPage == 0 {
		c.Search.GitLab.PerPage = DefaultPerPage
	}
}

// ConfigExists checks whether the config file exists in the given directory.
func ConfigExists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFile))
	return err == nil
}

// LoadConfig reads and parses the config file from the given directory. A
// missing file yields the defaults.
func LoadConfig(dir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if c.Version == 0 {
		c.Version = 1
	}
	applyDefaults(&c)

	if err := ValidateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// SaveConfig writes the config file to the given directory.
func SaveConfig(dir string, c *Config) error {
	applyDefaults(c)
	if err := ValidateConfig(c); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	path := filepath.Join(dir, ConfigFile)
	tmpPath := path + ".tmp"

	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving config: %w", err)
	}

	return nil
}

// ValidateConfig checks that a Config struct holds usable values.
func ValidateConfig(c *Config) error {
	if c.Version < 1 {
		return fmt.Errorf("invalid config version: %d", c.Version)
	}
	switch c.DeleteMode {
	case filemanager.ModeTrash, filemanager.ModeDelete:
	default:
		return fmt.Errorf("invalid delete_mode %q (want %q or %q)", c.DeleteMode, filemanager.ModeTrash, filemanager.ModeDelete)
	}
	seen := make(map[string]bool)
	for _, p := range c.Search.Providers {
		if p != ProviderGitHub && p != ProviderGitLab {
			return fmt.Errorf("unknown search provider %q", p)
		}
		if seen[p] {
			return fmt.Errorf("search provider %q listed twice", p)
		}
		seen[p] = true
	}
	for name, pc := range map[string]ProviderConfig{ProviderGitHub: c.Search.GitHub, ProviderGitLab: c.Search.GitLab} {
		if pc.PerPage < 1 || pc.PerPage > 100 {
			return fmt.Errorf("search.%s.per_page must be between 1 and 100, got %d", name, pc.PerPage)
		}
	}
	return nil
}
