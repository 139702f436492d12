package monitor

import (
	"time"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/browser"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/sources"
)

// EbayConfig holds the marketplace API credentials and endpoints.
// Placeholder or absent credentials disable the API paths; extraction
// still works without them.
type EbayConfig struct {
	AppID      string
	CertID     string
	TokenURL   string // empty = production
	APIBaseURL string // empty = production
}

// CompetitorConfig points at the competitor-search API.
type CompetitorConfig struct {
	BaseURL string
	APIKey  string
}

// Config configures the monitoring service.
type Config struct {
	// Browser settings (headless instance, page pool).
	Browser browser.Config

	// Extract settings (navigation timeouts, settle delay, page caps).
	Extract extract.Config

	// StoreImport settings (inter-page delay, API page cap).
	StoreImport sources.StoreImportConfig

	Ebay       EbayConfig
	Competitor CompetitorConfig

	// MinSourceDelay is the rate limiter's minimum spacing between calls
	// to the same upstream key.
	MinSourceDelay time.Duration

	// InterProductDelay is the fixed pause between products within one
	// tenant's cycle, to avoid hammering upstream hosts.
	InterProductDelay time.Duration
}

func (c *Config) defaults() {
	if c.MinSourceDelay <= 0 {
		c.MinSourceDelay = 2 * time.Second
	}
	if c.InterProductDelay <= 0 {
		c.InterProductDelay = 3 * time.Second
	}
}

func defaultConfig() *Config {
	c := &Config{}
	c.defaults()
	return c
}
