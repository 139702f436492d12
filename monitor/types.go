// Package monitor tracks third-party marketplace listings for change.
//
// A per-tenant scheduler drives repeated fetch cycles: resilient source
// adapters pull the current state of each monitored item from its
// marketplace listing, its linked supplier page and a competitor-search
// API, an extraction engine reads JS-rendered pages through a headless
// browser, and deterministic change detection compares each snapshot to
// the prior persisted state and emits alerts.
package monitor

import (
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/sources"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// Re-export store types for the public API.
type (
	Source            = store.Source
	StockState        = store.StockState
	MonitoredItem     = store.MonitoredItem
	Snapshot          = store.Snapshot
	Variation         = store.Variation
	PriceHistoryEntry = store.PriceHistoryEntry
	AlertType         = store.AlertType
	Severity          = store.Severity
	Alert             = store.Alert
	TenantSettings    = store.TenantSettings
	CompetitorSummary = store.CompetitorSummary
	ImportedItem      = sources.ImportedItem
	CatalogProduct    = sources.CatalogProduct

	// Catalog answers keyword lookups against a supplier product feed.
	Catalog = sources.Catalog
)

const (
	SourceMarketplace = store.SourceMarketplace
	SourceSupplier    = store.SourceSupplier
	SourceCompetitor  = store.SourceCompetitor

	StockInStock    = store.StockInStock
	StockOutOfStock = store.StockOutOfStock
	StockLow        = store.StockLow
	StockUnknown    = store.StockUnknown

	AlertPriceIncrease       = store.AlertPriceIncrease
	AlertPriceDecrease       = store.AlertPriceDecrease
	AlertOutOfStock          = store.AlertOutOfStock
	AlertBackInStock         = store.AlertBackInStock
	AlertCompetitorPrice     = store.AlertCompetitorPrice
	AlertSupplierUnavailable = store.AlertSupplierUnavailable

	SeverityLow      = store.SeverityLow
	SeverityMedium   = store.SeverityMedium
	SeverityHigh     = store.SeverityHigh
	SeverityCritical = store.SeverityCritical
)

// DefaultSettings returns the settings applied to a tenant that has never
// saved preferences.
func DefaultSettings(tenantID string) *TenantSettings {
	return store.DefaultSettings(tenantID)
}
