package sources

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// supplierProfile is the field-selector tuning for one named supplier.
// Detection is by URL substring, so one profile covers every page shape
// the supplier serves under its domain.
type supplierProfile struct {
	name      string
	urlMarker string
	title     string
	price     string
	image     string
}

// supplierProfiles lists the named suppliers in detection order. Requests
// to anything else go through the generic profile.
var supplierProfiles = []supplierProfile{
	{
		name:      "aliexpress",
		urlMarker: "aliexpress.",
		title:     `h1[data-pl="product-title"], .product-title-text, h1`,
		price:     `.product-price-current .product-price-value, .product-price-value, .uniform-banner-box-price`,
		image:     `.image-view-magnifier-wrap img, .magnifier-image`,
	},
	{
		name:      "alibaba",
		urlMarker: "alibaba.",
		title:     `h1.module-pdp-title, .product-title h1, h1`,
		price:     `.price-item .price, .module-pdp-price .price, .ma-ref-price`,
		image:     `.main-image img, .detail-gallery-turn img`,
	},
	{
		name:      "cjdropshipping",
		urlMarker: "cjdropshipping.",
		title:     `.productTitle, h1.product-name, h1`,
		price:     `.productPrice, .product-price, .sellPrice`,
		image:     `.productImg img, .swiper-slide img`,
	},
	{
		name:      "dhgate",
		urlMarker: "dhgate.",
		title:     `h1.product-name, .product-info h1, h1`,
		price:     `.price-now, .product-price .price, .wholesale-price`,
		image:     `.product-img img, .masterMap img`,
	},
}

// genericProfile is the catch-all for unrecognized supplier hosts. Less
// precise than a named profile but keeps unlinked suppliers monitorable.
var genericProfile = supplierProfile{
	name:  "generic",
	title: `h1, [itemprop="name"], .product-title, .product-name, title`,
	price: `[itemprop="price"], .price, .product-price, .current-price, .price-now`,
	image: `[itemprop="image"], .product-image img, .main-image img, img`,
}

// minSupplierTitleLen rejects pages that parsed but yielded junk.
const minSupplierTitleLen = 3

// Supplier fetches linked supplier product pages: plain HTML over HTTP,
// parsed with per-supplier selector profiles. Requests are rate-limited
// per detected supplier name and retried on failure.
type Supplier struct {
	client  *resty.Client
	limiter *resilience.Limiter
	logger  *slog.Logger
}

// NewSupplier creates the supplier adapter.
func NewSupplier(limiter *resilience.Limiter, logger *slog.Logger) *Supplier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supplier{
		client: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36"),
		limiter: limiter,
		logger:  logger,
	}
}

// Fetch returns the supplier's current snapshot for productURL. The
// limiter key is the detected supplier name, so one slow supplier never
// delays another.
func (s *Supplier) Fetch(ctx context.Context, productURL string) (*store.Snapshot, error) {
	profile := detectSupplier(productURL)
	if err := s.limiter.Wait(ctx, "supplier:"+profile.name); err != nil {
		return nil, err
	}

	var snap *store.Snapshot
	err := resilience.Retry(ctx, func(ctx context.Context) error {
		var fetchErr error
		snap, fetchErr = s.fetchOnce(ctx, productURL, profile)
		return fetchErr
	}, retryAttempts, retryBaseDelay)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Supplier) fetchOnce(ctx context.Context, productURL string, profile supplierProfile) (*store.Snapshot, error) {
	resp, err := s.client.R().SetContext(ctx).Get(productURL)
	if err != nil {
		return nil, fmt.Errorf("sources: supplier fetch %s: %w", productURL, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sources: supplier fetch %s: http %d", productURL, resp.StatusCode())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("sources: supplier parse %s: %w", productURL, err)
	}

	snap := parseSupplierDoc(doc, profile)
	if len(snap.Title) < minSupplierTitleLen {
		return nil, fmt.Errorf("%w: %q via %s profile", ErrSupplierTitleInvalid, snap.Title, profile.name)
	}
	s.logger.Debug("sources: supplier fetched", "url", productURL,
		"supplier", profile.name, "price", snap.Price, "stock", snap.Stock)
	return snap, nil
}

// detectSupplier matches the URL against the named profiles, falling back
// to the generic one.
func detectSupplier(productURL string) supplierProfile {
	lower := strings.ToLower(productURL)
	for _, p := range supplierProfiles {
		if strings.Contains(lower, p.urlMarker) {
			return p
		}
	}
	return genericProfile
}

// parseSupplierDoc applies a profile's selectors over the page. Absent
// fields stay empty, never defaulted.
func parseSupplierDoc(doc *goquery.Document, profile supplierProfile) *store.Snapshot {
	snap := &store.Snapshot{}

	snap.Title = strings.TrimSpace(doc.Find(profile.title).First().Text())

	priceEl := doc.Find(profile.price).First()
	text := priceEl.AttrOr("content", "")
	if text == "" {
		text = priceEl.Text()
	}
	snap.Price = extract.ParsePrice(text)

	if src := doc.Find(profile.image).First().AttrOr("src", ""); src != "" {
		snap.Images = []string{src}
	}
	snap.Stock = extract.ClassifyStock(doc.Text())
	return snap
}
