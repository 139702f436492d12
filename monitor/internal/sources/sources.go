// Package sources holds the per-source fetch adapters. Each adapter
// composes the rate limiter, the retry executor and the extraction engine
// into one Fetch call, with scrape-to-API or API-to-scrape fallback
// ordering depending on the source shape.
package sources

import (
	"context"
	"errors"
	"time"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/extract"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// ErrNoProductData is returned when neither extraction nor the API
// fallback produced a snapshot with a title and a price.
var ErrNoProductData = errors.New("sources: no product data from any path")

// ErrSupplierTitleInvalid is returned when a supplier page parsed but the
// title it yielded is too short to be real.
var ErrSupplierTitleInvalid = errors.New("sources: supplier title invalid")

// Retry policy shared by the adapters. Attempts and base delay match the
// reference throughput: three tries, one-second base doubling each retry.
const (
	retryAttempts  = 3
	retryBaseDelay = time.Second
)

// ProductExtractor renders a listing page and extracts a product snapshot.
// Satisfied by *extract.Engine.
type ProductExtractor interface {
	ProductDetail(ctx context.Context, pageURL string) (*store.Snapshot, error)
}

// SellerResolver resolves the seller identity behind a page.
// Satisfied by *extract.Engine.
type SellerResolver interface {
	SellerIdentity(ctx context.Context, pageURL string) (string, error)
}

// ListingExtractor walks a paginated listing view.
// Satisfied by *extract.Engine.
type ListingExtractor interface {
	ListingSet(ctx context.Context, baseURL string, maxPages int) ([]extract.ListingItem, error)
}
