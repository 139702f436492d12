// Package config loads monitord configuration from a YAML file layered
// over environment variables. A .env file, when present, is loaded first;
// ${VAR} references in the YAML expand against the environment, which is
// how secrets stay out of the config file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level monitord configuration.
type Config struct {
	LogLevel  string `yaml:"log_level"`  // debug | info | warn | error
	LogFormat string `yaml:"log_format"` // text | json

	DatabasePath string `yaml:"database_path"`

	Ebay       EbayConfig       `yaml:"ebay"`
	Competitor CompetitorConfig `yaml:"competitor"`
	Browser    BrowserConfig    `yaml:"browser"`
	Extract    ExtractConfig    `yaml:"extract"`
	Monitor    MonitorConfig    `yaml:"monitor"`
}

// EbayConfig holds the marketplace API credentials and endpoints.
type EbayConfig struct {
	AppID      string `yaml:"app_id"`
	CertID     string `yaml:"cert_id"`
	TokenURL   string `yaml:"token_url"`
	APIBaseURL string `yaml:"api_base_url"`
}

// CompetitorConfig points at the competitor-search API.
type CompetitorConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// BrowserConfig controls the headless Chrome instance.
type BrowserConfig struct {
	RemoteURL string `yaml:"remote_url"` // attach instead of launching
	PoolSize  int    `yaml:"pool_size"`
	Stealth   bool   `yaml:"stealth"`
}

// ExtractConfig controls page navigation and extraction limits.
type ExtractConfig struct {
	NavTimeout      time.Duration `yaml:"nav_timeout"`
	SettleDelay     time.Duration `yaml:"settle_delay"`
	MaxListingPages int           `yaml:"max_listing_pages"`
}

// MonitorConfig controls cycle pacing.
type MonitorConfig struct {
	MinSourceDelay    time.Duration `yaml:"min_source_delay"`
	InterProductDelay time.Duration `yaml:"inter_product_delay"`
}

func (c *Config) defaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/monitor.db"
	}
}

// envOverrides lets secrets come straight from the environment without
// any ${VAR} plumbing in the YAML.
func (c *Config) envOverrides() {
	if v := os.Getenv("EBAY_APP_ID"); v != "" {
		c.Ebay.AppID = v
	}
	if v := os.Getenv("EBAY_CERT_ID"); v != "" {
		c.Ebay.CertID = v
	}
	if v := os.Getenv("COMPETITOR_API_KEY"); v != "" {
		c.Competitor.APIKey = v
	}
}

// Load reads the YAML file at path. An empty path yields defaults plus
// environment overrides, so monitord runs with no config file at all.
func Load(path string) (*Config, error) {
	// Missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.envOverrides()
	cfg.defaults()
	return cfg, nil
}
