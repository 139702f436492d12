package sources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/ebay"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
)

// ErrStoreUnresolved is returned when no candidate page yielded a usable
// seller identity for a store URL.
var ErrStoreUnresolved = errors.New("sources: store seller identity unresolved")

// SellerSearch pages through a seller's listings via the search API.
// Satisfied by *ebay.SearchClient.
type SellerSearch interface {
	BySeller(ctx context.Context, seller string, page int) (*ebay.SearchPage, error)
}

// ImportedItem is one listing discovered during a store bulk-import,
// optionally merged with its supplier-catalog match.
type ImportedItem struct {
	ItemID   string
	URL      string
	Title    string
	Price    float64
	Image    string
	Seller   string
	Supplier *CatalogProduct
}

// StoreImportConfig configures the bulk-import adapter.
type StoreImportConfig struct {
	// PlatformBrand rejects seller candidates equal to the marketplace's
	// own name. Default: "eBay".
	PlatformBrand string

	// InterPageDelay between search-API pages, respecting the published
	// rate ceiling. Default: 1s.
	InterPageDelay time.Duration

	// MaxAPIPages bounds the search-API loop on very large stores.
	// Default: 40.
	MaxAPIPages int

	Logger *slog.Logger
}

func (c *StoreImportConfig) defaults() {
	if c.PlatformBrand == "" {
		c.PlatformBrand = "eBay"
	}
	if c.InterPageDelay <= 0 {
		c.InterPageDelay = time.Second
	}
	if c.MaxAPIPages <= 0 {
		c.MaxAPIPages = 40
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// StoreImport resolves a store URL to its seller identity and pulls the
// store's full listing set, primarily through the seller-filtered search
// API with the extraction engine as fallback. Resolved items are matched
// against the supplier catalog and merged where found.
type StoreImport struct {
	resolver SellerResolver
	listings ListingExtractor
	search   SellerSearch
	catalog  Catalog
	rules    []keywordRule
	cfg      StoreImportConfig
}

// NewStoreImport creates the bulk-import adapter. search and catalog may
// be nil; the adapter then skips the API path or the catalog merge.
func NewStoreImport(resolver SellerResolver, listings ListingExtractor, search SellerSearch, catalog Catalog, cfg StoreImportConfig) *StoreImport {
	cfg.defaults()
	return &StoreImport{
		resolver: resolver,
		listings: listings,
		search:   search,
		catalog:  catalog,
		rules:    defaultKeywordRules,
		cfg:      cfg,
	}
}

// SetCatalog installs the supplier-catalog collaborator used for the
// keyword merge. Call before Import; a nil catalog disables the merge.
func (si *StoreImport) SetCatalog(c Catalog) {
	si.catalog = c
}

// storeSlugRe pulls the store name out of /str/ and /usr/ store URLs.
var storeSlugRe = regexp.MustCompile(`/(?:str|usr)/([^/?#]+)`)

// StoreSlug returns the store-name path segment of a store URL.
func StoreSlug(storeURL string) (string, error) {
	m := storeSlugRe.FindStringSubmatch(storeURL)
	if m == nil {
		return "", fmt.Errorf("sources: no store name in %s", storeURL)
	}
	return m[1], nil
}

// ResolveSeller resolves the true seller identity behind storeURL. The
// storefront is tried first, then its category view, then a product page
// sampled from the storefront's listings. A candidate equal to the URL
// slug or the platform brand is not an identity and is rejected.
func (si *StoreImport) ResolveSeller(ctx context.Context, storeURL string) (string, error) {
	slug, err := StoreSlug(storeURL)
	if err != nil {
		return "", err
	}

	// Product-page sampling renders the full listing view, so it is only
	// paid once the cheaper candidates have failed.
	candidates := []func() string{
		func() string { return storeURL },
		func() string { return categoryViewURL(storeURL) },
		func() string { return si.sampleProductURL(ctx, storeURL) },
	}

	for _, next := range candidates {
		pageURL := next()
		if pageURL == "" {
			continue
		}
		seller, err := si.resolver.SellerIdentity(ctx, pageURL)
		if err != nil {
			if !errors.Is(err, extract.ErrSellerUnresolved) {
				si.cfg.Logger.Warn("sources: seller candidate page failed",
					"url", pageURL, "error", err)
			}
			if cerr := ctx.Err(); cerr != nil {
				return "", cerr
			}
			continue
		}
		if strings.EqualFold(seller, slug) || strings.EqualFold(seller, si.cfg.PlatformBrand) {
			si.cfg.Logger.Debug("sources: seller candidate rejected",
				"url", pageURL, "candidate", seller)
			continue
		}
		return seller, nil
	}
	return "", ErrStoreUnresolved
}

// Import pulls the store's listing set under storeURL. Items come from
// the seller-filtered search API when the seller resolved and the API
// yields anything; otherwise from the rendered listing pages.
func (si *StoreImport) Import(ctx context.Context, storeURL string) ([]ImportedItem, error) {
	seller, err := si.ResolveSeller(ctx, storeURL)
	if err != nil && !errors.Is(err, ErrStoreUnresolved) {
		return nil, err
	}

	var items []ImportedItem
	if seller != "" && si.search != nil {
		items, err = si.importViaSearch(ctx, seller)
		if err != nil {
			si.cfg.Logger.Warn("sources: seller search import failed, falling back to extraction",
				"seller", seller, "error", err)
		}
	}
	if len(items) == 0 {
		items, err = si.importViaExtraction(ctx, storeURL, seller)
		if err != nil {
			return nil, err
		}
	}

	si.mergeCatalog(ctx, items)
	return items, nil
}

func (si *StoreImport) importViaSearch(ctx context.Context, seller string) ([]ImportedItem, error) {
	var out []ImportedItem
	for page := 0; page < si.cfg.MaxAPIPages; page++ {
		if page > 0 {
			if err := resilience.Sleep(ctx, si.cfg.InterPageDelay); err != nil {
				return out, err
			}
		}
		result, err := si.search.BySeller(ctx, seller, page)
		if err != nil {
			return out, err
		}
		for _, item := range result.Items {
			imported := ImportedItem{
				ItemID: item.ItemID,
				URL:    item.ItemWebURL,
				Title:  item.Title,
				Image:  item.Image.ImageURL,
				Seller: seller,
			}
			if price, perr := strconv.ParseFloat(item.Price.Value, 64); perr == nil {
				imported.Price = price
			}
			out = append(out, imported)
		}
		if !result.HasMore {
			break
		}
	}
	si.cfg.Logger.Info("sources: store imported via search API",
		"seller", seller, "items", len(out))
	return out, nil
}

func (si *StoreImport) importViaExtraction(ctx context.Context, storeURL, seller string) ([]ImportedItem, error) {
	listings, err := si.listings.ListingSet(ctx, storeURL, 0)
	if err != nil {
		return nil, err
	}
	out := make([]ImportedItem, 0, len(listings))
	for _, l := range listings {
		out = append(out, ImportedItem{
			ItemID: l.ItemID,
			URL:    l.URL,
			Title:  l.Title,
			Price:  l.Price,
			Image:  l.Image,
			Seller: seller,
		})
	}
	si.cfg.Logger.Info("sources: store imported via listing extraction",
		"url", storeURL, "items", len(out))
	return out, nil
}

// mergeCatalog matches each item's title against the supplier catalog and
// folds the match in. Catalog misses and errors leave the item untouched.
func (si *StoreImport) mergeCatalog(ctx context.Context, items []ImportedItem) {
	if si.catalog == nil {
		return
	}
	for i := range items {
		term := searchTermFor(items[i].Title, si.rules)
		if term == "" {
			continue
		}
		match, err := si.catalog.Find(ctx, term)
		if err != nil {
			si.cfg.Logger.Warn("sources: catalog lookup failed",
				"term", term, "error", err)
			continue
		}
		items[i].Supplier = match
	}
}

// sampleProductURL renders the storefront's first listing page and returns
// the first item URL, for seller resolution when the storefront itself
// carries no identity markers.
func (si *StoreImport) sampleProductURL(ctx context.Context, storeURL string) string {
	listings, err := si.listings.ListingSet(ctx, storeURL, 1)
	if err != nil || len(listings) == 0 {
		return ""
	}
	return listings[0].URL
}

// categoryViewURL is the storefront's category sub-page, which on some
// layouts carries seller markers the landing page lacks.
func categoryViewURL(storeURL string) string {
	if strings.Contains(storeURL, "?") {
		return storeURL + "&_tab=shop"
	}
	return storeURL + "?_tab=shop"
}
