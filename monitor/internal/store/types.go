package store

// Source identifies the origin of a snapshot or history entry.
type Source string

const (
	SourceMarketplace Source = "marketplace"
	SourceSupplier    Source = "supplier"
	SourceCompetitor  Source = "competitor"
)

// StockState is the normalized availability of a listing.
type StockState string

const (
	StockInStock    StockState = "in_stock"
	StockOutOfStock StockState = "out_of_stock"
	StockLow        StockState = "low_stock"
	StockUnknown    StockState = "unknown"
)

// MonitoredItem is one marketplace listing tracked for a tenant.
// Exactly one item exists per (tenant, marketplace item id).
type MonitoredItem struct {
	ID              string     `json:"id"`
	TenantID        string     `json:"tenant_id"`
	MarketplaceID   string     `json:"marketplace_id"`
	URL             string     `json:"url"`
	Title           string     `json:"title"`
	CurrentPrice    float64    `json:"current_price"`
	StockState      StockState `json:"stock_state"`
	SupplierURL     string     `json:"supplier_url,omitempty"`
	SupplierPrice   float64    `json:"supplier_price,omitempty"`
	SupplierStock   StockState `json:"supplier_stock,omitempty"`
	CompetitorPrice float64    `json:"competitor_price,omitempty"`
	CompetitorCount int        `json:"competitor_count,omitempty"`
	LastCheckedAt   int64      `json:"last_checked_at"` // unix ms, 0 = never
	Active          bool       `json:"active"`
	CreatedAt       int64      `json:"created_at"`
	UpdatedAt       int64      `json:"updated_at"`
}

// Snapshot is the ephemeral result of one fetch. It is never persisted
// as-is: change detection folds it into the MonitoredItem and an
// append-only history entry, then it is discarded.
type Snapshot struct {
	Title       string      `json:"title"`
	Price       float64     `json:"price"`
	Stock       StockState  `json:"stock"`
	Images      []string    `json:"images,omitempty"`
	SellerID    string      `json:"seller_id,omitempty"`
	Description string      `json:"description,omitempty"`
	Variations  []Variation `json:"variations,omitempty"`
}

// Variation is one option set on a listing (e.g. Color → [Red, Blue]).
type Variation struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

// PriceHistoryEntry is an immutable per-fetch record. One entry is
// appended per source per successful fetch, whether or not an alert fired.
type PriceHistoryEntry struct {
	ID        string     `json:"id"`
	ItemID    string     `json:"item_id"`
	Source    Source     `json:"source"`
	Price     float64    `json:"price"`
	Stock     StockState `json:"stock"`
	CheckedAt int64      `json:"checked_at"` // unix ms
}

// AlertType classifies what change an alert reports.
type AlertType string

const (
	AlertPriceIncrease       AlertType = "price_increase"
	AlertPriceDecrease       AlertType = "price_decrease"
	AlertOutOfStock          AlertType = "out_of_stock"
	AlertBackInStock         AlertType = "back_in_stock"
	AlertCompetitorPrice     AlertType = "competitor_price"
	AlertSupplierUnavailable AlertType = "supplier_unavailable"
)

// Severity grades an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Alert is created exactly when a change-detection rule fires. Immutable
// afterwards except for the externally-owned read flag.
type Alert struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	ItemID    string    `json:"item_id"`
	Type      AlertType `json:"type"`
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	Read      bool      `json:"read"`
	CreatedAt int64     `json:"created_at"` // unix ms
}

// TenantSettings holds one tenant's monitoring and alerting preferences.
type TenantSettings struct {
	TenantID             string             `json:"tenant_id"`
	FrequencyMinutes     int                `json:"frequency_minutes"`
	PriceThresholdPct    float64            `json:"price_threshold_pct"`     // 0–100
	CompetitorMarginPct  float64            `json:"competitor_margin_pct"`   // 0–100
	CompetitorEnabled    bool               `json:"competitor_enabled"`
	AlertsEnabled        map[AlertType]bool `json:"alerts_enabled,omitempty"` // absent type = enabled
	NotifyEmail          string             `json:"notify_email,omitempty"`
	NotifyWebhookURL     string             `json:"notify_webhook_url,omitempty"`
	CreatedAt            int64              `json:"created_at"`
	UpdatedAt            int64              `json:"updated_at"`
}

// AlertEnabled reports whether alerts of type t should be emitted for this
// tenant. Types absent from the map are enabled; a disabled type suppresses
// emission entirely, not just notification.
func (s *TenantSettings) AlertEnabled(t AlertType) bool {
	if s == nil || s.AlertsEnabled == nil {
		return true
	}
	enabled, ok := s.AlertsEnabled[t]
	if !ok {
		return true
	}
	return enabled
}

// DefaultSettings returns the settings applied to a tenant that has never
// saved preferences.
func DefaultSettings(tenantID string) *TenantSettings {
	return &TenantSettings{
		TenantID:            tenantID,
		FrequencyMinutes:    60,
		PriceThresholdPct:   5,
		CompetitorMarginPct: 3,
		CompetitorEnabled:   true,
	}
}

// CompetitorSummary is the cheapest competing offer found for an item.
type CompetitorSummary struct {
	Query       string  `json:"query"`
	LowestPrice float64 `json:"lowest_price"`
	OfferCount  int     `json:"offer_count"`
}
