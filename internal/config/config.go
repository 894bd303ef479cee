package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// configFile is the YAML file name for CLI configuration
const configFile = "config.yaml"

// Config holds CLI configuration. Everything is optional; zero values fall
// back to built-in defaults at the point of use.
type Config struct {
	// BaseURL overrides the production API endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// Workspace is the default workspace ID used when credentials do not
	// carry one.
	Workspace string `yaml:"workspace,omitempty"`

	// CheckpointDir overrides where upload checkpoints are stored.
	CheckpointDir string `yaml:"checkpoint_dir,omitempty"`
}

// Load reads configuration using the following precedence:
//  1. Environment variables (POSTLINE_BASE_URL)
//  2. Project dotfile (.postline/config.yaml)
//  3. Home directory (~/.postline/config.yaml)
//
// Missing files are not an error; a zero Config is valid.
func Load() (*Config, error) {
	cfg := &Config{}

	for _, path := range []string{homePath(), projectPath()} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		// Later files win field by field: home first, project on top.
		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		cfg.merge(&fileCfg)
	}

	if v := os.Getenv("POSTLINE_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field formats without filling defaults.
func (c *Config) Validate() error {
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid base_url %q: must be an absolute URL", c.BaseURL)
		}
	}
	return nil
}

// Save writes the configuration to the home config file.
func (c *Config) Save() error {
	path := homePath()
	if path == "" {
		return fmt.Errorf("failed to determine home directory")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", path, err)
	}

	return nil
}

func (c *Config) merge(other *Config) {
	if other.BaseURL != "" {
		c.BaseURL = other.BaseURL
	}
	if other.Workspace != "" {
		c.Workspace = other.Workspace
	}
	if other.CheckpointDir != "" {
		c.CheckpointDir = other.CheckpointDir
	}
}

func homePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".postline", configFile)
}

func projectPath() string {
	return filepath.Join(".postline", configFile)
}
