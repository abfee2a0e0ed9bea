// Package config loads run configuration: a YAML file for stable site
// settings plus environment variables for credentials. Flags layered on
// top by the CLI override both.
package config

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/japanir/equitysync/internal/destination/wordpress"
	"github.com/japanir/equitysync/pkg/errors"
)

// Environment variables. Credentials never live in the YAML file.
const (
	EnvSiteURL  = "WP_SITE_URL"
	EnvUser     = "WP_USER"
	EnvPassword = "WP_PASSWORD"
)

// Config is the full run configuration.
type Config struct {
	Registry    RegistryConfig    `yaml:"registry"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Provider    ProviderConfig    `yaml:"provider"`
	Destination DestinationConfig `yaml:"destination"`
	Output      OutputConfig      `yaml:"output"`
}

// RegistryConfig locates the company registry.
type RegistryConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig tunes the fetch pipeline.
type FetchConfig struct {
	Workers         int           `yaml:"workers"`
	BatchSize       int           `yaml:"batch_size"`
	BatchDelay      time.Duration `yaml:"batch_delay"`
	MaxAttempts     int           `yaml:"max_attempts"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	RetryValidation bool          `yaml:"retry_validation"`
}

// ProviderConfig points at the market data provider.
type ProviderConfig struct {
	BaseURL string `yaml:"base_url"`
}

// DestinationConfig points at the content API. Username and password are
// populated from the environment, not the file.
type DestinationConfig struct {
	SiteURL  string `yaml:"site_url"`
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

// OutputConfig locates run outputs.
type OutputConfig struct {
	Dir           string `yaml:"dir"`
	FinancialsDir string `yaml:"financials_dir"`
	AnalystDir    string `yaml:"analyst_dir"`
	HistoryDir    string `yaml:"history_dir"`
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Registry: RegistryConfig{Path: "data/japan_companies_latest.csv"},
		Fetch:    FetchConfig{},
		Output: OutputConfig{
			Dir:           "output",
			FinancialsDir: "data/financials",
			AnalystDir:    "data/analyst_earnings",
			HistoryDir:    "data/stock_history",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv layers environment variables over the file values.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvSiteURL); v != "" {
		c.Destination.SiteURL = v
	}
	c.Destination.Username = os.Getenv(EnvUser)
	c.Destination.Password = os.Getenv(EnvPassword)
}

// Credentials returns the destination credential pair, or
// ErrCredentialsRequired when either half is missing.
func (c *Config) Credentials() (wordpress.Credentials, error) {
	if c.Destination.Username == "" || c.Destination.Password == "" {
		return wordpress.Credentials{}, errors.ErrCredentialsRequired
	}
	return wordpress.Credentials{
		Username: c.Destination.Username,
		Password: c.Destination.Password,
	}, nil
}
