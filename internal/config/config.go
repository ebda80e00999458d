// Package config handles the copub global configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ecmwf-copernicus/copernicus-publication/internal/registry"
)

// Config represents configuration stored in ~/.config/copub/config.yml.
type Config struct {
	RepositoryID string `yaml:"repository_id,omitempty"`
	APIURL       string `yaml:"api_url,omitempty"`
	FabricaURL   string `yaml:"fabrica_url,omitempty"`
	SiteURL      string `yaml:"site_url,omitempty"`
	Prefix       string `yaml:"prefix,omitempty"`
	DBPath       string `yaml:"db_path,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "copub"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// EnvPassword carries the DataCite account password. Passwords are
	// never written to the config file.
	EnvPassword = "DATACITE_PASSWORD"
	// EnvRepositoryID overrides the configured repository account.
	EnvRepositoryID = "DATACITE_REPOSITORY_ID"
)

// ErrRepositoryIDNotConfigured is returned when no repository account
// is configured.
var ErrRepositoryIDNotConfigured = errors.New("repository_id not configured")

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/copub/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load loads the configuration file and applies environment overrides.
// Returns a config with defaults (not an error) if the file doesn't exist.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg := &Config{}

	path := Path()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if id := os.Getenv(EnvRepositoryID); id != "" {
		cfg.RepositoryID = id
	}
	cfg.applyDefaults()

	configCache = cfg
	return cfg, nil
}

// applyDefaults fills unset fields with production DataCite endpoints
// and a database next to the config file.
func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = registry.APIURL
	}
	if c.FabricaURL == "" {
		c.FabricaURL = registry.FabricaURL
	}
	if c.DBPath == "" {
		if p := Path(); p != "" {
			c.DBPath = filepath.Join(filepath.Dir(p), "publications.db")
		}
	}
	c.DBPath = ExpandTilde(c.DBPath)
}

// Save writes the configuration file, creating its directory if needed.
func Save(cfg *Config) error {
	path := Path()
	if path == "" {
		return errors.New("cannot determine config path")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ResetCache()
	return nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	configCache = nil
}

// Password returns the DataCite account password from the environment.
func Password() string {
	return os.Getenv(EnvPassword)
}

// Validate checks that the config names a repository account.
func (c *Config) Validate() error {
	if c.RepositoryID == "" {
		return ErrRepositoryIDNotConfigured
	}
	return nil
}

// ExpandTilde expands a leading ~/ to the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// HelpfulConfigMessage returns a setup hint printed when no repository
// account is configured.
func HelpfulConfigMessage() string {
	configPath := Path()
	return fmt.Sprintf(`No DataCite repository account configured.

Tip: Create %s to set your account:
  mkdir -p %s
  echo 'repository_id: YOUR.ACCOUNT' > %s

The account password is read from the %s environment variable.`,
		configPath,
		filepath.Dir(configPath),
		configPath,
		EnvPassword)
}
