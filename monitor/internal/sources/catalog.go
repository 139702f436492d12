package sources

import (
	"context"
	"strings"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// CatalogProduct is one supplier-catalog match for an imported item.
type CatalogProduct struct {
	SupplierURL string
	Price       float64
	Stock       store.StockState
}

// Catalog is the external supplier-catalog collaborator. Find returns
// (nil, nil) when the term matches nothing; that is absence, not failure.
type Catalog interface {
	Find(ctx context.Context, searchTerm string) (*CatalogProduct, error)
}

// keywordRule maps title keywords to the catalog search term that covers
// them. Rules are checked in order; the first keyword hit wins.
type keywordRule struct {
	keywords []string
	term     string
}

// defaultKeywordRules cover the product families the linked suppliers
// actually stock. Unmatched titles fall back to their first three words.
var defaultKeywordRules = []keywordRule{
	{[]string{"noodle", "ramen", "udon"}, "instant noodles"},
	{[]string{"sauce", "paste", "marinade"}, "cooking sauce"},
	{[]string{"tea", "matcha"}, "loose leaf tea"},
	{[]string{"snack", "chips", "crisps"}, "snack assortment"},
	{[]string{"rice", "grain"}, "rice"},
	{[]string{"spice", "seasoning", "pepper"}, "spice mix"},
}

// searchTermFor maps an item title to a catalog search term: the first
// keyword rule whose keyword appears in the title, else the title's first
// three words.
func searchTermFor(title string, rules []keywordRule) string {
	lower := strings.ToLower(title)
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.term
			}
		}
	}
	words := strings.Fields(lower)
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}
