// Package ebay holds the marketplace API clients: the item-search fallback
// (app-id keyed), the seller-filtered search used by store imports, and the
// OAuth2 client-credentials token cache both share.
package ebay

import "errors"

// ErrCredentialsNotConfigured is returned when the app id or cert id are
// absent or still placeholder values.
var ErrCredentialsNotConfigured = errors.New("ebay: API credentials not configured")

// Credentials for the client-credentials flow and app-id keyed endpoints.
type Credentials struct {
	AppID  string
	CertID string
}

// placeholders are values that appear in sample configs; treat them as
// unconfigured so a half-filled deployment fails loudly instead of
// burning rate limit on 401s.
var placeholders = map[string]bool{
	"":             true,
	"your-app-id":  true,
	"your-cert-id": true,
	"changeme":     true,
}

// Configured reports whether both credential halves carry real values.
func (c Credentials) Configured() bool {
	return !placeholders[c.AppID] && !placeholders[c.CertID]
}
