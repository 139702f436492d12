package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/ebay"
)

// ListingItem is one card discovered in a paginated listing view.
type ListingItem struct {
	ItemID string
	URL    string
	Title  string
	Price  float64
	Image  string
}

// cardContainers are the ancestors that bound one listing card, so the
// card's own price/image are read instead of a neighbour's.
const cardContainers = `li.s-item, .s-item, .str-item-card, li.str-items__item, li`

// listingsFromDoc extracts distinct listing cards from one rendered page.
// Anchors matching the item-link pattern anchor the cards; title, price
// and image are best-effort per card.
func listingsFromDoc(doc *goquery.Document) []ListingItem {
	seen := make(map[string]bool)
	var out []ListingItem

	doc.Find(`a[href*="/itm/"]`).Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		itemID, err := ebay.ParseItemID(href)
		if err != nil || seen[itemID] {
			return
		}
		seen[itemID] = true

		item := ListingItem{ItemID: itemID, URL: href}

		card := a.Closest(cardContainers)
		if card.Length() == 0 {
			card = a
		}

		item.Title = strings.TrimSpace(card.Find(".s-item__title, .str-item-card__title, h3").First().Text())
		if item.Title == "" {
			item.Title = strings.TrimSpace(a.Text())
		}
		item.Price = ParsePrice(card.Find(".s-item__price, .str-item-card__price, .price").First().Text())
		item.Image = card.Find("img").First().AttrOr("src", "")

		out = append(out, item)
	})
	return out
}
