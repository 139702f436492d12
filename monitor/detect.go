package monitor

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Taha-Siraj/ebay-backend/idgen"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// severityEscalationPct is the change percentage above which a price or
// competitor alert escalates from medium to high.
const severityEscalationPct = 10

// Detector compares a fresh snapshot against an item's prior persisted
// state and decides which alerts fire. Each emitted alert is gated by the
// tenant's per-type enable flag; a disabled type suppresses emission
// entirely, not just notification.
type Detector struct {
	logger *slog.Logger
	newID  func() string
	now    func() time.Time
}

// NewDetector creates a Detector.
func NewDetector(logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{logger: logger, newID: idgen.Default, now: time.Now}
}

// Compare evaluates snap for one source (marketplace or supplier) against
// the item's prior state. The item is not mutated here; the cycle folds
// the snapshot in after alerts are recorded.
func (d *Detector) Compare(item *store.MonitoredItem, source store.Source, snap *store.Snapshot, settings *store.TenantSettings) []*store.Alert {
	var alerts []*store.Alert

	oldPrice, oldStock := priorState(item, source)

	if oldPrice > 0 && snap.Price > 0 {
		pct := (snap.Price - oldPrice) / oldPrice * 100
		if math.Abs(pct) >= settings.PriceThresholdPct {
			typ := store.AlertPriceIncrease
			if pct < 0 {
				typ = store.AlertPriceDecrease
			}
			sev := store.SeverityMedium
			if math.Abs(pct) > severityEscalationPct {
				sev = store.SeverityHigh
			}
			if settings.AlertEnabled(typ) {
				alerts = append(alerts, d.newAlert(item, typ, sev,
					fmt.Sprintf("%.2f", oldPrice), fmt.Sprintf("%.2f", snap.Price),
					fmt.Sprintf("%s price went from %.2f to %.2f (%+.1f%%)", source, oldPrice, snap.Price, pct)))
			}
		}
	}

	if snap.Stock != store.StockUnknown {
		switch {
		case oldStock != store.StockOutOfStock && snap.Stock == store.StockOutOfStock:
			sev := store.SeverityHigh
			if source == store.SourceSupplier {
				sev = store.SeverityCritical
			}
			if settings.AlertEnabled(store.AlertOutOfStock) {
				alerts = append(alerts, d.newAlert(item, store.AlertOutOfStock, sev,
					string(oldStock), string(snap.Stock),
					fmt.Sprintf("%s listing went out of stock", source)))
			}
		case oldStock == store.StockOutOfStock && snap.Stock != store.StockOutOfStock:
			if settings.AlertEnabled(store.AlertBackInStock) {
				alerts = append(alerts, d.newAlert(item, store.AlertBackInStock, store.SeverityMedium,
					string(oldStock), string(snap.Stock),
					fmt.Sprintf("%s listing is back in stock", source)))
			}
		}
	}

	return alerts
}

// CompareCompetitor evaluates the cheapest competing offer against the
// item's own marketplace price.
func (d *Detector) CompareCompetitor(item *store.MonitoredItem, summary *store.CompetitorSummary, settings *store.TenantSettings) []*store.Alert {
	if !settings.CompetitorEnabled || !settings.AlertEnabled(store.AlertCompetitorPrice) {
		return nil
	}
	if item.CurrentPrice <= 0 || summary.LowestPrice <= 0 || summary.LowestPrice >= item.CurrentPrice {
		return nil
	}
	diffPct := (item.CurrentPrice - summary.LowestPrice) / item.CurrentPrice * 100
	if diffPct < settings.CompetitorMarginPct {
		return nil
	}
	sev := store.SeverityMedium
	if diffPct > severityEscalationPct {
		sev = store.SeverityHigh
	}
	return []*store.Alert{d.newAlert(item, store.AlertCompetitorPrice, sev,
		fmt.Sprintf("%.2f", item.CurrentPrice), fmt.Sprintf("%.2f", summary.LowestPrice),
		fmt.Sprintf("competitor undercuts by %.1f%% (%.2f vs %.2f, %d offers)",
			diffPct, summary.LowestPrice, item.CurrentPrice, summary.OfferCount))}
}

// SupplierUnavailable fires when a supplier fetch failed outright and the
// supplier state was not already unknown. The caller marks the supplier
// state unknown afterwards, so the alert fires once per outage.
func (d *Detector) SupplierUnavailable(item *store.MonitoredItem, settings *store.TenantSettings) []*store.Alert {
	if item.SupplierStock == store.StockUnknown || item.SupplierStock == "" {
		return nil
	}
	if !settings.AlertEnabled(store.AlertSupplierUnavailable) {
		return nil
	}
	return []*store.Alert{d.newAlert(item, store.AlertSupplierUnavailable, store.SeverityHigh,
		string(item.SupplierStock), string(store.StockUnknown),
		"supplier page is unavailable")}
}

func (d *Detector) newAlert(item *store.MonitoredItem, typ store.AlertType, sev store.Severity, oldVal, newVal, msg string) *store.Alert {
	return &store.Alert{
		ID:        d.newID(),
		TenantID:  item.TenantID,
		ItemID:    item.ID,
		Type:      typ,
		OldValue:  oldVal,
		NewValue:  newVal,
		Message:   msg,
		Severity:  sev,
		CreatedAt: d.now().UnixMilli(),
	}
}

// priorState returns the item's persisted price and stock for one source.
func priorState(item *store.MonitoredItem, source store.Source) (float64, store.StockState) {
	if source == store.SourceSupplier {
		return item.SupplierPrice, item.SupplierStock
	}
	return item.CurrentPrice, item.StockState
}

// applySnapshot folds a successful fetch into the item. Absent snapshot
// fields leave the prior value in place rather than zeroing it.
func applySnapshot(item *store.MonitoredItem, source store.Source, snap *store.Snapshot) {
	switch source {
	case store.SourceSupplier:
		if snap.Price > 0 {
			item.SupplierPrice = snap.Price
		}
		if snap.Stock != store.StockUnknown {
			item.SupplierStock = snap.Stock
		}
	default:
		if snap.Title != "" {
			item.Title = snap.Title
		}
		if snap.Price > 0 {
			item.CurrentPrice = snap.Price
		}
		if snap.Stock != store.StockUnknown {
			item.StockState = snap.Stock
		}
	}
}

// applyCompetitor folds the competitor summary into the item.
func applyCompetitor(item *store.MonitoredItem, summary *store.CompetitorSummary) {
	item.CompetitorPrice = summary.LowestPrice
	item.CompetitorCount = summary.OfferCount
}
