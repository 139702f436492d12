// Package browser manages the shared headless Chrome instance used by the
// extraction engine: lazy launch (or remote attach), a bounded page pool,
// and explicit shutdown.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// PoolSize bounds how many pages may be open at once. Default: 1,
	// matching the sequential monitoring cycle; raise it to parallelize
	// extractions.
	PoolSize int

	// Stealth applies automation-evasion scripts to each page. Default off;
	// marketplace pages are aggressive about headless detection, so
	// production configs enable it.
	Stealth bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PoolSize <= 0 {
		c.PoolSize = 1
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns the Chrome process. The browser is launched lazily on the
// first Acquire and shared by all extractions until Close.
type Manager struct {
	cfg  Config
	sem  chan struct{}

	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Chrome is not started until first use.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{
		cfg: cfg,
		sem: make(chan struct{}, cfg.PoolSize),
	}
}

// Acquire checks out a fresh page from the bounded pool, launching Chrome
// if needed. The returned release func closes the page and frees the pool
// slot; callers must invoke it on every exit path.
func (m *Manager) Acquire(ctx context.Context) (*rod.Page, func(), error) {
	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	b, err := m.ensureBrowser()
	if err != nil {
		<-m.sem
		return nil, nil, err
	}

	var page *rod.Page
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		<-m.sem
		return nil, nil, fmt.Errorf("browser: create page: %w", err)
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := page.Close(); err != nil {
				m.cfg.Logger.Debug("browser: page close", "error", err)
			}
			<-m.sem
		})
	}
	return page, release, nil
}

// Close shuts down Chrome. The manager cannot be reused afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}

func (m *Manager) ensureBrowser() (*rod.Browser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, fmt.Errorf("browser: manager is closed")
	}
	if m.browser != nil {
		return m.browser, nil
	}

	wsURL := m.cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		m.cfg.Logger.Info("browser: launched local chrome", "url", wsURL)
	} else {
		m.cfg.Logger.Info("browser: connecting to remote", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	if err := b.IgnoreCertErrors(true); err != nil {
		m.cfg.Logger.Warn("browser: ignore cert errors failed", "error", err)
	}

	m.browser = b
	return b, nil
}
