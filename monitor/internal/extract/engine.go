package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/browser"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// Config configures the extraction engine.
type Config struct {
	// NavTimeout bounds one navigation plus its ready-wait. Default: 30s.
	NavTimeout time.Duration

	// SettleDelay is the fixed wait after navigation so client-side
	// rendering completes before the DOM is read. Default: 2s.
	SettleDelay time.Duration

	// MaxListingPages caps listing-set pagination. Default: 5.
	MaxListingPages int

	// PlatformBrand is the marketplace's own brand name; seller candidates
	// equal to it are rejected. Default: "eBay".
	PlatformBrand string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.NavTimeout <= 0 {
		c.NavTimeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 2 * time.Second
	}
	if c.MaxListingPages <= 0 {
		c.MaxListingPages = 5
	}
	if c.PlatformBrand == "" {
		c.PlatformBrand = "eBay"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine renders pages through the shared browser and runs the strategy
// chains over the result.
type Engine struct {
	pages *browser.Manager
	cfg   Config

	// fetchDoc produces the rendered DOM for a URL. Defaults to
	// renderedDoc; tests swap in fixture documents.
	fetchDoc func(ctx context.Context, pageURL string) (*goquery.Document, error)
}

// New creates an Engine backed by the given browser manager.
func New(pages *browser.Manager, cfg Config) *Engine {
	cfg.defaults()
	e := &Engine{pages: pages, cfg: cfg}
	e.fetchDoc = e.renderedDoc
	return e
}

// SellerIdentity resolves the seller behind pageURL, or ErrSellerUnresolved
// when every strategy comes up empty.
func (e *Engine) SellerIdentity(ctx context.Context, pageURL string) (string, error) {
	doc, err := e.fetchDoc(ctx, pageURL)
	if err != nil {
		return "", err
	}
	seller, strategy, ok := sellerFromDoc(doc, e.cfg.PlatformBrand)
	if !ok {
		return "", ErrSellerUnresolved
	}
	e.cfg.Logger.Debug("extract: seller resolved", "url", pageURL,
		"seller", seller, "strategy", strategy)
	return seller, nil
}

// ProductDetail extracts a normalized snapshot from a listing page.
func (e *Engine) ProductDetail(ctx context.Context, pageURL string) (*store.Snapshot, error) {
	doc, err := e.fetchDoc(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	snap, err := productFromDoc(doc)
	if err != nil {
		return nil, err
	}
	if seller, _, ok := sellerFromDoc(doc, e.cfg.PlatformBrand); ok {
		snap.SellerID = seller
	}
	return snap, nil
}

// ListingSet walks the paginated listing view under baseURL, deduplicating
// by item identifier across pages. maxPages <= 0 uses the configured cap.
// Pagination stops early once a page yields zero new items.
func (e *Engine) ListingSet(ctx context.Context, baseURL string, maxPages int) ([]ListingItem, error) {
	if maxPages <= 0 {
		maxPages = e.cfg.MaxListingPages
	}

	seen := make(map[string]bool)
	var all []ListingItem
	for page := 1; page <= maxPages; page++ {
		doc, err := e.fetchDoc(ctx, pageURLFor(baseURL, page))
		if err != nil {
			if page == 1 {
				return nil, err
			}
			e.cfg.Logger.Warn("extract: listing page failed, stopping pagination",
				"url", baseURL, "page", page, "error", err)
			break
		}

		added := 0
		for _, item := range listingsFromDoc(doc) {
			if seen[item.ItemID] {
				continue
			}
			seen[item.ItemID] = true
			all = append(all, item)
			added++
		}
		if added == 0 {
			break
		}
	}
	return all, nil
}

// renderedDoc navigates to pageURL in a pooled page and returns the
// rendered DOM as a goquery document. The page is released on every path.
func (e *Engine) renderedDoc(ctx context.Context, pageURL string) (*goquery.Document, error) {
	page, release, err := e.pages.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := e.navigate(ctx, page, pageURL); err != nil {
		return nil, err
	}

	// Let client-side rendering settle before reading the DOM.
	if err := resilience.Sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, err
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("extract: read DOM: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("extract: parse DOM: %w", err)
	}
	return doc, nil
}

// navigate tries the navigation with progressively more lenient readiness
// conditions: fast DOM-ready, then network idle, then the full load event.
func (e *Engine) navigate(ctx context.Context, page *rod.Page, pageURL string) error {
	waiters := []struct {
		name string
		wait func(ctx context.Context, p *rod.Page) error
	}{
		{"dom-ready", func(ctx context.Context, p *rod.Page) error {
			return waitReadyState(ctx, p, e.cfg.NavTimeout/3)
		}},
		{"network-idle", func(_ context.Context, p *rod.Page) error {
			return p.WaitIdle(e.cfg.NavTimeout / 3)
		}},
		{"load", func(_ context.Context, p *rod.Page) error { return p.WaitLoad() }},
	}

	var lastErr error
	for _, w := range waiters {
		navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavTimeout)
		p := page.Context(navCtx)
		if err := p.Navigate(pageURL); err != nil {
			cancel()
			lastErr = fmt.Errorf("extract: navigate %s: %w", pageURL, err)
			continue
		}
		err := w.wait(navCtx, p)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("extract: wait %s for %s: %w", w.name, pageURL, err)
		e.cfg.Logger.Debug("extract: readiness wait failed, relaxing",
			"url", pageURL, "condition", w.name, "error", err)
	}
	return lastErr
}

// waitReadyState polls document.readyState until it leaves "loading".
func waitReadyState(ctx context.Context, p *rod.Page, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		res, err := p.Eval(`() => document.readyState`)
		if err == nil {
			if s := res.Value.Str(); s == "interactive" || s == "complete" {
				return nil
			}
		}
		if err := resilience.Sleep(ctx, 100*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("document not ready after %v", timeout)
}

// pageURLFor appends or replaces the page-number query parameter.
func pageURLFor(baseURL string, page int) string {
	if page <= 1 {
		return baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	q := u.Query()
	q.Set("_pgn", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String()
}
