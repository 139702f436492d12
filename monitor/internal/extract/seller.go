package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sellerStrategy is one heuristic in the seller-identity chain. Strategies
// return raw candidates; acceptance is decided centrally so every strategy
// shares the same plausibility rules.
type sellerStrategy struct {
	name    string
	extract func(doc *goquery.Document) []string
}

// sellerStrategies in priority order. The first accepted candidate wins.
var sellerStrategies = []sellerStrategy{
	{"embedded-data", sellersFromEmbeddedData},
	{"social-meta", sellersFromSocialMeta},
	{"dom-markers", sellersFromDOMMarkers},
	{"inline-scripts", sellersFromInlineScripts},
	{"profile-links", sellersFromProfileLinks},
}

// sellerFromDoc runs the strategy chain, returning the accepted seller and
// the strategy that produced it.
func sellerFromDoc(doc *goquery.Document, brand string) (seller, strategy string, ok bool) {
	for _, s := range sellerStrategies {
		for _, cand := range s.extract(doc) {
			if acceptSeller(cand, brand) {
				return strings.TrimSpace(cand), s.name, true
			}
		}
	}
	return "", "", false
}

// acceptSeller rejects implausible candidates: the platform's own brand,
// over-long strings, and anything that looks like a leaked URL.
func acceptSeller(cand, brand string) bool {
	cand = strings.TrimSpace(cand)
	if cand == "" {
		return false
	}
	if strings.EqualFold(cand, brand) {
		return false
	}
	if len(cand) > 50 {
		return false
	}
	if strings.Contains(strings.ToLower(cand), "http") {
		return false
	}
	return true
}

// sellerKeyPaths are the structured-data fields that carry a seller name.
var sellerKeyPaths = [][2]string{
	{"seller", "username"},
	{"seller", "name"},
	{"author", "name"},
	{"brand", "name"},
}

// sellersFromEmbeddedData scans JSON-LD blocks for seller-shaped fields.
func sellersFromEmbeddedData(doc *goquery.Document) []string {
	var out []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		out = append(out, walkForSellers(data)...)
	})
	return out
}

func walkForSellers(v any) []string {
	var out []string
	switch node := v.(type) {
	case map[string]any:
		for _, kp := range sellerKeyPaths {
			if inner, ok := node[kp[0]].(map[string]any); ok {
				if name, ok := inner[kp[1]].(string); ok {
					out = append(out, name)
				}
			}
		}
		for _, child := range node {
			out = append(out, walkForSellers(child)...)
		}
	case []any:
		for _, child := range node {
			out = append(out, walkForSellers(child)...)
		}
	}
	return out
}

// sellersFromSocialMeta takes the og:title content's leading token; store
// pages title themselves "<store name> | eBay Stores".
func sellersFromSocialMeta(doc *goquery.Document) []string {
	content := doc.Find(`meta[property="og:title"]`).AttrOr("content", "")
	if content == "" {
		return nil
	}
	token, _, _ := strings.Cut(content, "|")
	return []string{strings.TrimSpace(token)}
}

// sellerMarkerSelectors are the known DOM locations of seller display
// elements, across the layout variants observed in the wild.
var sellerMarkerSelectors = []string{
	`.str-seller-card__store-name`,
	`[data-testid="str-title"] h1`,
	`.x-sellercard-atf__info__about-seller a span`,
	`.ux-seller-section__item--seller a span`,
	`.mbg-nw`,
	`#mbgLink span`,
}

func sellersFromDOMMarkers(doc *goquery.Document) []string {
	var out []string
	for _, sel := range sellerMarkerSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// sellerScriptRe finds sellerName/sellerId/username key-value pairs inside
// inline script bodies.
var sellerScriptRe = regexp.MustCompile(`"(?:sellerName|sellerId|username)"\s*:\s*"([^"]{1,60})"`)

func sellersFromInlineScripts(doc *goquery.Document) []string {
	var out []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		for _, m := range sellerScriptRe.FindAllStringSubmatch(s.Text(), 5) {
			out = append(out, m[1])
		}
	})
	return out
}

// profileLinkRe pulls the identity segment out of /usr/ and /str/ links.
var profileLinkRe = regexp.MustCompile(`/(?:usr|str)/([^/?#]+)`)

func sellersFromProfileLinks(doc *goquery.Document) []string {
	var out []string
	doc.Find(`a[href*="/usr/"], a[href*="/str/"]`).Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if m := profileLinkRe.FindStringSubmatch(href); m != nil {
			out = append(out, m[1])
		}
	})
	return out
}
