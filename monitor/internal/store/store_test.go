package store

import (
	"context"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Taha-Siraj/ebay-backend/dbopen"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	db := dbopen.OpenMemory(t)
	if err := ApplySchema(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return NewStore(db)
}

func testItem(tenant, marketplaceID string) *MonitoredItem {
	return &MonitoredItem{
		ID:            "itm-" + marketplaceID,
		TenantID:      tenant,
		MarketplaceID: marketplaceID,
		URL:           "https://www.ebay.com/itm/" + marketplaceID,
		Title:         "Test listing",
		CurrentPrice:  19.99,
		StockState:    StockInStock,
		SupplierStock: StockUnknown,
		Active:        true,
	}
}

func TestUpsertItem_UniquePerTenantAndMarketplaceID(t *testing.T) {
	// WHAT: upsert twice with the same (tenant, marketplace id) results in
	// one row with the newer values.
	// WHY: exactly one MonitoredItem may exist per (tenant, marketplace id).
	s := openStore(t)
	ctx := context.Background()

	item := testItem("tenant-a", "123456789012")
	if err := s.UpsertItem(ctx, item); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	item.CurrentPrice = 24.99
	item.StockState = StockLow
	if err := s.UpsertItem(ctx, item); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.FindItem(ctx, "tenant-a", "123456789012")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil {
		t.Fatal("item not found")
	}
	if got.CurrentPrice != 24.99 {
		t.Errorf("price not updated: %v", got.CurrentPrice)
	}
	if got.StockState != StockLow {
		t.Errorf("stock not updated: %v", got.StockState)
	}

	items, err := s.ItemsForTenant(ctx, "tenant-a")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestFindItem_AbsentReturnsNil(t *testing.T) {
	s := openStore(t)
	got, err := s.FindItem(context.Background(), "tenant-a", "nope")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}

func TestAppendHistory_PerSource(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	for i, src := range []Source{SourceMarketplace, SourceSupplier, SourceMarketplace} {
		e := &PriceHistoryEntry{
			ID:        "h" + string(rune('a'+i)),
			ItemID:    "itm-1",
			Source:    src,
			Price:     10 + float64(i),
			Stock:     StockInStock,
			CheckedAt: now + int64(i),
		}
		if err := s.AppendHistory(ctx, e); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	entries, err := s.HistoryForItem(ctx, "itm-1", SourceMarketplace, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 marketplace entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].CheckedAt < entries[1].CheckedAt {
		t.Error("entries not ordered newest first")
	}
}

func TestTenantSettings_DefaultsWhenAbsent(t *testing.T) {
	// WHAT: a tenant with no settings row gets defaults (60 min, 5%, 3%).
	s := openStore(t)
	st, err := s.TenantSettings(context.Background(), "fresh-tenant")
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if st.FrequencyMinutes != 60 || st.PriceThresholdPct != 5 || st.CompetitorMarginPct != 3 {
		t.Fatalf("unexpected defaults: %+v", st)
	}
	if !st.AlertEnabled(AlertPriceIncrease) {
		t.Error("alert types should default to enabled")
	}
}

func TestTenantSettings_RoundTripAlertFlags(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	in := DefaultSettings("tenant-b")
	in.FrequencyMinutes = 30
	in.AlertsEnabled = map[AlertType]bool{AlertCompetitorPrice: false}
	if err := s.SaveTenantSettings(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, err := s.TenantSettings(ctx, "tenant-b")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if out.FrequencyMinutes != 30 {
		t.Errorf("frequency: %d", out.FrequencyMinutes)
	}
	if out.AlertEnabled(AlertCompetitorPrice) {
		t.Error("competitor_price should be disabled")
	}
	if !out.AlertEnabled(AlertOutOfStock) {
		t.Error("unlisted types should stay enabled")
	}
}

func TestCreateAlert_AndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	a := &Alert{
		ID:        "alr-1",
		TenantID:  "tenant-a",
		ItemID:    "itm-1",
		Type:      AlertPriceDecrease,
		OldValue:  "20.00",
		NewValue:  "15.00",
		Message:   "price dropped",
		Severity:  SeverityMedium,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := s.CreateAlert(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	alerts, err := s.AlertsForTenant(ctx, "tenant-a", 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].Read {
		t.Error("new alert should be unread")
	}

	if err := s.MarkAlertRead(ctx, "alr-1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	alerts, _ = s.AlertsForTenant(ctx, "tenant-a", 10)
	if !alerts[0].Read {
		t.Error("alert should be read")
	}
}

func TestListTenants_UnionOfItemsAndSettings(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	if err := s.UpsertItem(ctx, testItem("tenant-a", "1")); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveTenantSettings(ctx, DefaultSettings("tenant-b")); err != nil {
		t.Fatal(err)
	}

	tenants, err := s.ListTenants(ctx)
	if err != nil {
		t.Fatalf("list tenants: %v", err)
	}
	if len(tenants) != 2 {
		t.Fatalf("expected 2 tenants, got %v", tenants)
	}
}
