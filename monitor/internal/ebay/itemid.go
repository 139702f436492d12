package ebay

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrNoItemID is returned when none of the accepted URL shapes yields an
// item identifier.
var ErrNoItemID = errors.New("ebay: no item id in URL")

// itemPathRe matches /itm/<id> and /itm/<slug>/<id>.
var itemPathRe = regexp.MustCompile(`/itm/(?:[^/]+/)?(\d{9,15})(?:[/?]|$)`)

// ParseItemID extracts the numeric item identifier from a listing URL.
// Three shapes are accepted:
//
//	https://www.ebay.com/itm/123456789012
//	https://www.ebay.com/itm/some-product-slug/123456789012
//	https://www.ebay.com/...?item=123456789012
func ParseItemID(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrNoItemID
	}

	if m := itemPathRe.FindStringSubmatch(u.Path + "/"); m != nil {
		return m[1], nil
	}

	if id := u.Query().Get("item"); id != "" && isDigits(id) {
		return id, nil
	}

	return "", ErrNoItemID
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
