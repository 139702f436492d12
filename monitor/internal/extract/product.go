package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// maxImages caps the gallery image collection per snapshot.
const maxImages = 10

// titleSelectors in priority order; the document title is the last resort.
var titleSelectors = []string{
	`h1.x-item-title__mainTitle span`,
	`h1[data-testid="x-item-title"]`,
	`.x-item-title__mainTitle`,
	`h1[itemprop="name"]`,
	`h1`,
}

// priceSelectors in priority order. The first match's text (or content
// attribute) is parsed.
var priceSelectors = []string{
	`.x-price-primary .ux-textspans`,
	`[data-testid="x-price-primary"]`,
	`.x-price-primary`,
	`span[itemprop="price"]`,
	`meta[itemprop="price"]`,
	`.display-price`,
}

// productFromDoc extracts a product-detail snapshot from a rendered
// listing page. A result with an empty title or zero price is implausible
// and fails with ErrExtractionFailed.
func productFromDoc(doc *goquery.Document) (*store.Snapshot, error) {
	snap := &store.Snapshot{
		Title:       extractTitle(doc),
		Price:       extractPrice(doc),
		Images:      collectImages(doc),
		Description: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
		Variations:  extractVariations(doc),
	}
	snap.Stock = ClassifyStock(doc.Text())

	if snap.Title == "" || snap.Price == 0 {
		return nil, ErrExtractionFailed
	}
	return snap, nil
}

func extractTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	// Fall back to the document title, dropping the platform suffix.
	title := strings.TrimSpace(doc.Find("title").First().Text())
	title, _, _ = strings.Cut(title, " | eBay")
	return strings.TrimSpace(title)
}

func extractPrice(doc *goquery.Document) float64 {
	for _, sel := range priceSelectors {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			continue
		}
		text := el.AttrOr("content", "")
		if text == "" {
			text = el.Text()
		}
		if price := ParsePrice(text); price > 0 {
			return price
		}
	}
	return 0
}

var nonNumericRe = regexp.MustCompile(`[^0-9.]`)

// ParsePrice strips non-numeric characters and parses what remains.
// "US $1,234.56" → 1234.56. Returns 0 on anything unparseable.
func ParsePrice(text string) float64 {
	cleaned := nonNumericRe.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	// Ranged prices ("9.99 to 19.99") collapse badly; keep the first number.
	if i := strings.Index(cleaned, "."); i >= 0 {
		if j := strings.Index(cleaned[i+1:], "."); j >= 0 {
			cleaned = cleaned[:i+1+j]
		}
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return price
}

var lowStockRe = regexp.MustCompile(`only\s+\d+\s+(?:left|available|remaining)`)

// ClassifyStock infers availability from page text by keyword scan.
func ClassifyStock(pageText string) store.StockState {
	text := strings.ToLower(pageText)
	if strings.Contains(text, "out of stock") || strings.Contains(text, "sold out") {
		return store.StockOutOfStock
	}
	if lowStockRe.MatchString(text) || strings.Contains(text, "limited quantity") {
		return store.StockLow
	}
	return store.StockInStock
}

// gallerySelectors locate full-size gallery images.
var gallerySelectors = []string{
	`.ux-image-carousel-item img`,
	`.ux-image-grid-item img`,
	`div.ux-image-carousel img`,
	`img[src*="ebayimg.com"]`,
}

// thumbMarkers identify thumbnail-sized image variants to drop.
var thumbMarkers = []string{"s-l64", "s-l96", "s-l140", "thumb"}

func collectImages(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sel := range gallerySelectors {
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			src := s.AttrOr("data-zoom-src", "")
			if src == "" {
				src = s.AttrOr("src", "")
			}
			if src == "" || seen[src] || isThumbnail(src) {
				return true
			}
			seen[src] = true
			out = append(out, src)
			return len(out) < maxImages
		})
		if len(out) >= maxImages {
			break
		}
	}
	return out
}

func isThumbnail(src string) bool {
	lower := strings.ToLower(src)
	for _, marker := range thumbMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// extractVariations collects option sets best-effort; missing variations
// are simply absent, never fabricated.
func extractVariations(doc *goquery.Document) []store.Variation {
	var out []store.Variation
	doc.Find(`.x-msku select, select[name^="attr"]`).Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.AttrOr("aria-label", sel.AttrOr("name", "")))
		var options []string
		sel.Find("option").Each(func(_ int, opt *goquery.Selection) {
			text := strings.TrimSpace(opt.Text())
			if text == "" || strings.HasPrefix(strings.ToLower(text), "select") {
				return
			}
			options = append(options, text)
		})
		if name != "" && len(options) > 0 {
			out = append(out, store.Variation{Name: name, Options: options})
		}
	})
	return out
}
