package monitor

import (
	"testing"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

func testItem() *store.MonitoredItem {
	return &store.MonitoredItem{
		ID:            "item-1",
		TenantID:      "tenant-1",
		MarketplaceID: "123456789012",
		Title:         "Widget",
		CurrentPrice:  100,
		StockState:    store.StockInStock,
		SupplierPrice: 50,
		SupplierStock: store.StockInStock,
	}
}

func snapAt(price float64, stock store.StockState) *store.Snapshot {
	return &store.Snapshot{Title: "Widget", Price: price, Stock: stock}
}

// WHAT: price movement below the tenant threshold is noise, at the
// threshold it alerts at medium, and past the escalation point at high.
func TestDetectPriceThresholds(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")

	cases := []struct {
		newPrice float64
		wantType store.AlertType
		wantSev  store.Severity
		wantNone bool
	}{
		{104, "", "", true},
		{106, store.AlertPriceIncrease, store.SeverityMedium, false},
		{116, store.AlertPriceIncrease, store.SeverityHigh, false},
		{95, store.AlertPriceDecrease, store.SeverityMedium, false},
		{85, store.AlertPriceDecrease, store.SeverityHigh, false},
	}
	for _, tc := range cases {
		alerts := d.Compare(testItem(), store.SourceMarketplace, snapAt(tc.newPrice, store.StockInStock), settings)
		if tc.wantNone {
			if len(alerts) != 0 {
				t.Errorf("price %v: got %d alerts, want none", tc.newPrice, len(alerts))
			}
			continue
		}
		if len(alerts) != 1 {
			t.Errorf("price %v: got %d alerts, want 1", tc.newPrice, len(alerts))
			continue
		}
		if alerts[0].Type != tc.wantType || alerts[0].Severity != tc.wantSev {
			t.Errorf("price %v: got %s/%s, want %s/%s",
				tc.newPrice, alerts[0].Type, alerts[0].Severity, tc.wantType, tc.wantSev)
		}
	}
}

// WHAT: a transition into out-of-stock alerts high for the marketplace
// source and critical for the supplier source.
func TestDetectStockTransitionSeverity(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")

	alerts := d.Compare(testItem(), store.SourceMarketplace, snapAt(100, store.StockOutOfStock), settings)
	if len(alerts) != 1 || alerts[0].Type != store.AlertOutOfStock || alerts[0].Severity != store.SeverityHigh {
		t.Fatalf("marketplace alerts = %+v, want one out_of_stock/high", alerts)
	}

	alerts = d.Compare(testItem(), store.SourceSupplier, snapAt(50, store.StockOutOfStock), settings)
	if len(alerts) != 1 || alerts[0].Type != store.AlertOutOfStock || alerts[0].Severity != store.SeverityCritical {
		t.Fatalf("supplier alerts = %+v, want one out_of_stock/critical", alerts)
	}
}

// WHAT: leaving out-of-stock emits back_in_stock at medium; an unknown
// new state is not a transition either way.
func TestDetectBackInStock(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")

	item := testItem()
	item.StockState = store.StockOutOfStock
	alerts := d.Compare(item, store.SourceMarketplace, snapAt(100, store.StockInStock), settings)
	if len(alerts) != 1 || alerts[0].Type != store.AlertBackInStock || alerts[0].Severity != store.SeverityMedium {
		t.Fatalf("alerts = %+v, want one back_in_stock/medium", alerts)
	}

	alerts = d.Compare(item, store.SourceMarketplace, snapAt(100, store.StockUnknown), settings)
	if len(alerts) != 0 {
		t.Fatalf("unknown stock produced %d alerts, want 0", len(alerts))
	}
}

// WHAT: a tenant-disabled alert type suppresses emission entirely.
func TestDetectTypeGating(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")
	settings.AlertsEnabled = map[store.AlertType]bool{store.AlertPriceIncrease: false}

	alerts := d.Compare(testItem(), store.SourceMarketplace, snapAt(116, store.StockInStock), settings)
	if len(alerts) != 0 {
		t.Fatalf("disabled type produced %d alerts", len(alerts))
	}

	// The decrease type stays enabled.
	alerts = d.Compare(testItem(), store.SourceMarketplace, snapAt(85, store.StockInStock), settings)
	if len(alerts) != 1 || alerts[0].Type != store.AlertPriceDecrease {
		t.Fatalf("alerts = %+v, want one price_decrease", alerts)
	}
}

func TestDetectCompetitor(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")

	cases := []struct {
		lowest   float64
		wantSev  store.Severity
		wantNone bool
	}{
		{98, "", true},             // under the 3% margin
		{96, store.SeverityMedium, false},
		{85, store.SeverityHigh, false},
		{110, "", true},            // competitor is dearer
	}
	for _, tc := range cases {
		summary := &store.CompetitorSummary{Query: "widget", LowestPrice: tc.lowest, OfferCount: 4}
		alerts := d.CompareCompetitor(testItem(), summary, settings)
		if tc.wantNone {
			if len(alerts) != 0 {
				t.Errorf("lowest %v: got %d alerts, want none", tc.lowest, len(alerts))
			}
			continue
		}
		if len(alerts) != 1 || alerts[0].Type != store.AlertCompetitorPrice || alerts[0].Severity != tc.wantSev {
			t.Errorf("lowest %v: alerts = %+v, want competitor_price/%s", tc.lowest, alerts, tc.wantSev)
		}
	}

	settings.CompetitorEnabled = false
	summary := &store.CompetitorSummary{Query: "widget", LowestPrice: 85, OfferCount: 4}
	if alerts := d.CompareCompetitor(testItem(), summary, settings); len(alerts) != 0 {
		t.Fatalf("competitor disabled but got %d alerts", len(alerts))
	}
}

// WHAT: supplier unavailability alerts once — only while the persisted
// supplier state is something other than unknown.
func TestDetectSupplierUnavailable(t *testing.T) {
	d := NewDetector(nil)
	settings := store.DefaultSettings("tenant-1")

	item := testItem()
	alerts := d.SupplierUnavailable(item, settings)
	if len(alerts) != 1 || alerts[0].Type != store.AlertSupplierUnavailable || alerts[0].Severity != store.SeverityHigh {
		t.Fatalf("alerts = %+v, want one supplier_unavailable/high", alerts)
	}

	item.SupplierStock = store.StockUnknown
	if alerts := d.SupplierUnavailable(item, settings); len(alerts) != 0 {
		t.Fatalf("already-unknown supplier produced %d alerts", len(alerts))
	}
}
