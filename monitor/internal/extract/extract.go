// Package extract is the multi-strategy data-extraction engine. Pages are
// rendered in a headless browser, then ordered heuristic strategies run
// over the rendered DOM to pull out seller identity, product detail, or a
// paginated listing set. Each strategy list is declarative: entries are
// tried in priority order and the first plausible result wins.
package extract

import "errors"

// ErrExtractionFailed is returned when a rendered page yields no plausible
// result (empty title, zero price).
var ErrExtractionFailed = errors.New("extract: page yielded no plausible product data")

// ErrSellerUnresolved is returned when every seller-identity strategy
// comes up empty. Callers may retry against a different page (a listing,
// a category sub-page) before giving up.
var ErrSellerUnresolved = errors.New("extract: seller identity unresolved")
