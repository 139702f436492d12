package sources

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/ebay"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// ItemLookup fetches one marketplace item by its legacy identifier.
// Satisfied by *ebay.BrowseClient.
type ItemLookup interface {
	ItemByLegacyID(ctx context.Context, itemID string) (*ebay.Item, error)
}

// Marketplace fetches a monitored item's own listing. The primary path is
// page extraction against the item URL; any failure there falls back to
// the item-lookup API, wrapped in the retry executor.
type Marketplace struct {
	engine  ProductExtractor
	lookup  ItemLookup
	limiter *resilience.Limiter
	logger  *slog.Logger
}

// NewMarketplace creates the marketplace adapter. lookup may be nil when
// API credentials are not configured; the adapter then has no fallback.
func NewMarketplace(engine ProductExtractor, lookup ItemLookup, limiter *resilience.Limiter, logger *slog.Logger) *Marketplace {
	if logger == nil {
		logger = slog.Default()
	}
	return &Marketplace{engine: engine, lookup: lookup, limiter: limiter, logger: logger}
}

// Fetch returns the current snapshot for itemURL, or ErrNoProductData
// when no path yielded a plausible one. Absent fields stay absent: the
// adapter never substitutes placeholder images or prices.
func (m *Marketplace) Fetch(ctx context.Context, itemURL string) (*store.Snapshot, error) {
	if err := m.limiter.Wait(ctx, "marketplace"); err != nil {
		return nil, err
	}

	snap, extractErr := m.engine.ProductDetail(ctx, itemURL)
	if extractErr == nil {
		return snap, nil
	}
	m.logger.Warn("sources: marketplace extraction failed, trying API",
		"url", itemURL, "error", extractErr)

	if m.lookup == nil {
		return nil, ErrNoProductData
	}

	itemID, err := ebay.ParseItemID(itemURL)
	if err != nil {
		return nil, ErrNoProductData
	}

	var item *ebay.Item
	err = resilience.Retry(ctx, func(ctx context.Context) error {
		var lookupErr error
		item, lookupErr = m.lookup.ItemByLegacyID(ctx, itemID)
		return lookupErr
	}, retryAttempts, retryBaseDelay)
	if err != nil {
		m.logger.Warn("sources: marketplace API fallback failed",
			"item_id", itemID, "error", err)
		return nil, ErrNoProductData
	}

	snap = snapshotFromItem(item)
	if snap.Title == "" || snap.Price == 0 {
		return nil, ErrNoProductData
	}
	return snap, nil
}

// snapshotFromItem normalizes an API item into the snapshot shape the
// change detector consumes.
func snapshotFromItem(item *ebay.Item) *store.Snapshot {
	snap := &store.Snapshot{
		Title:       item.Title,
		SellerID:    item.Seller.Username,
		Description: item.ShortDescription,
		Stock:       store.StockUnknown,
	}
	if price, err := strconv.ParseFloat(item.Price.Value, 64); err == nil {
		snap.Price = price
	}
	if item.Image.ImageURL != "" {
		snap.Images = []string{item.Image.ImageURL}
	}
	for _, avail := range item.EstimatedAvailabilities {
		switch strings.ToUpper(avail.EstimatedAvailabilityStatus) {
		case "IN_STOCK":
			snap.Stock = store.StockInStock
			if q := avail.EstimatedAvailableQuantity; q > 0 && q <= 3 {
				snap.Stock = store.StockLow
			}
		case "OUT_OF_STOCK":
			snap.Stock = store.StockOutOfStock
		case "LIMITED_STOCK":
			snap.Stock = store.StockLow
		}
	}
	return snap
}
