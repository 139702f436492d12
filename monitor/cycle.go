package monitor

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Taha-Siraj/ebay-backend/monitor/internal/resilience"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
	"github.com/Taha-Siraj/ebay-backend/urlsafe"
)

// RunCycle runs one full monitoring pass for the tenant: every active
// product whose time since last check has reached the tenant's frequency
// is fetched from each of its sources in turn (marketplace, supplier,
// competitor), compared against its prior state, and updated. Products
// are processed sequentially with a fixed delay between them; a failing
// product or source is logged and skipped, never aborting the cycle.
func (s *Service) RunCycle(ctx context.Context, tenantID string) error {
	settings, err := s.store.TenantSettings(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("monitor: load settings: %w", err)
	}
	items, err := s.store.ItemsForTenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("monitor: load items: %w", err)
	}

	logger := s.logger.With("tenant_id", tenantID)
	checked := 0
	for _, item := range items {
		if !item.Active || !s.due(item, settings) {
			continue
		}
		if checked > 0 {
			if err := resilience.Sleep(ctx, s.config.InterProductDelay); err != nil {
				return err
			}
		}
		s.checkProduct(ctx, item, settings, logger)
		checked++
	}
	logger.Info("monitor: cycle done", "items", len(items), "checked", checked)
	return nil
}

// due reports whether the item's last check is at least the tenant's
// frequency ago. A never-checked item is always due.
func (s *Service) due(item *store.MonitoredItem, settings *store.TenantSettings) bool {
	if item.LastCheckedAt == 0 {
		return true
	}
	elapsed := s.now().UnixMilli() - item.LastCheckedAt
	return elapsed >= int64(settings.FrequencyMinutes)*60_000
}

// checkProduct runs the three sources for one item and persists the
// outcome. Each source failure is contained to that source.
func (s *Service) checkProduct(ctx context.Context, item *store.MonitoredItem, settings *store.TenantSettings, logger *slog.Logger) {
	s.checkMarketplace(ctx, item, settings, logger)
	if item.SupplierURL != "" {
		s.checkSupplier(ctx, item, settings, logger)
	}
	if settings.CompetitorEnabled && item.Title != "" && s.competitor != nil {
		s.checkCompetitor(ctx, item, settings, logger)
	}

	now := s.now().UnixMilli()
	item.LastCheckedAt = now
	item.UpdatedAt = now
	if err := s.store.UpsertItem(ctx, item); err != nil {
		logger.Error("monitor: persist item failed", "item_id", item.ID, "error", err)
	}
}

func (s *Service) checkMarketplace(ctx context.Context, item *store.MonitoredItem, settings *store.TenantSettings, logger *slog.Logger) {
	if err := urlsafe.Validate(item.URL); err != nil {
		logger.Warn("monitor: item URL rejected", "item_id", item.ID, "error", err)
		return
	}
	snap, err := s.marketplace.Fetch(ctx, item.URL)
	if err != nil {
		logger.Warn("monitor: marketplace fetch failed",
			"item_id", item.ID, "url", item.URL, "error", err)
		return
	}
	s.recordAlerts(ctx, item, settings, s.detector.Compare(item, store.SourceMarketplace, snap, settings), logger)
	applySnapshot(item, store.SourceMarketplace, snap)
	s.appendHistory(ctx, item, store.SourceMarketplace, snap.Price, snap.Stock, logger)
}

func (s *Service) checkSupplier(ctx context.Context, item *store.MonitoredItem, settings *store.TenantSettings, logger *slog.Logger) {
	if err := urlsafe.Validate(item.SupplierURL); err != nil {
		logger.Warn("monitor: supplier URL rejected", "item_id", item.ID, "error", err)
		return
	}
	snap, err := s.supplier.Fetch(ctx, item.SupplierURL)
	if err != nil {
		logger.Warn("monitor: supplier fetch failed",
			"item_id", item.ID, "url", item.SupplierURL, "error", err)
		s.recordAlerts(ctx, item, settings, s.detector.SupplierUnavailable(item, settings), logger)
		item.SupplierStock = store.StockUnknown
		return
	}
	s.recordAlerts(ctx, item, settings, s.detector.Compare(item, store.SourceSupplier, snap, settings), logger)
	applySnapshot(item, store.SourceSupplier, snap)
	s.appendHistory(ctx, item, store.SourceSupplier, snap.Price, snap.Stock, logger)
}

func (s *Service) checkCompetitor(ctx context.Context, item *store.MonitoredItem, settings *store.TenantSettings, logger *slog.Logger) {
	summary, err := s.competitor.Fetch(ctx, item.Title)
	if err != nil {
		logger.Warn("monitor: competitor fetch failed",
			"item_id", item.ID, "error", err)
		return
	}
	s.recordAlerts(ctx, item, settings, s.detector.CompareCompetitor(item, summary, settings), logger)
	applyCompetitor(item, summary)
	s.appendHistory(ctx, item, store.SourceCompetitor, summary.LowestPrice, store.StockUnknown, logger)
}

// appendHistory records one immutable entry for a successful fetch,
// whether or not any alert fired.
func (s *Service) appendHistory(ctx context.Context, item *store.MonitoredItem, source store.Source, price float64, stock store.StockState, logger *slog.Logger) {
	entry := &store.PriceHistoryEntry{
		ID:        s.newID(),
		ItemID:    item.ID,
		Source:    source,
		Price:     price,
		Stock:     stock,
		CheckedAt: s.now().UnixMilli(),
	}
	if err := s.store.AppendHistory(ctx, entry); err != nil {
		logger.Error("monitor: append history failed",
			"item_id", item.ID, "source", source, "error", err)
	}
}

// recordAlerts persists and dispatches the alerts from one comparison.
// Notification failure is logged, never fatal.
func (s *Service) recordAlerts(ctx context.Context, item *store.MonitoredItem, settings *store.TenantSettings, alerts []*store.Alert, logger *slog.Logger) {
	for _, alert := range alerts {
		if err := s.store.CreateAlert(ctx, alert); err != nil {
			logger.Error("monitor: create alert failed",
				"item_id", item.ID, "type", alert.Type, "error", err)
			continue
		}
		logger.Info("monitor: alert",
			"item_id", item.ID, "type", alert.Type, "severity", alert.Severity,
			"message", alert.Message)
		s.notify(ctx, settings, alert, item, logger)
	}
}

func (s *Service) notify(ctx context.Context, settings *store.TenantSettings, alert *store.Alert, item *store.MonitoredItem, logger *slog.Logger) {
	if s.notifier == nil {
		return
	}
	if settings.NotifyEmail != "" {
		if err := s.notifier.SendAlertEmail(ctx, settings.NotifyEmail, alert, item); err != nil {
			logger.Warn("monitor: alert email failed", "error", err)
		}
	}
	if settings.NotifyWebhookURL != "" {
		if err := s.notifier.SendAlertWebhook(ctx, settings.NotifyWebhookURL, alert, item); err != nil {
			logger.Warn("monitor: alert webhook failed", "error", err)
		}
	}
}

// ImportStore pulls the full listing set behind a store URL and creates
// (or refreshes) one monitored item per listing for the tenant. Items
// merged with a supplier-catalog match get their supplier link filled in.
func (s *Service) ImportStore(ctx context.Context, tenantID, storeURL string) ([]*MonitoredItem, error) {
	if err := urlsafe.Validate(storeURL); err != nil {
		return nil, fmt.Errorf("monitor: import store: %w", err)
	}
	imported, err := s.importer.Import(ctx, storeURL)
	if err != nil {
		return nil, fmt.Errorf("monitor: import store: %w", err)
	}

	now := s.now().UnixMilli()
	out := make([]*MonitoredItem, 0, len(imported))
	for _, imp := range imported {
		if imp.ItemID == "" {
			continue
		}
		item, err := s.store.FindItem(ctx, tenantID, imp.ItemID)
		if err != nil {
			s.logger.Warn("monitor: import lookup failed",
				"tenant_id", tenantID, "marketplace_id", imp.ItemID, "error", err)
			continue
		}
		if item == nil {
			item = &store.MonitoredItem{
				ID:            s.newID(),
				TenantID:      tenantID,
				MarketplaceID: imp.ItemID,
				StockState:    store.StockUnknown,
				SupplierStock: store.StockUnknown,
				Active:        true,
				CreatedAt:     now,
			}
		}
		item.URL = imp.URL
		if imp.Title != "" {
			item.Title = imp.Title
		}
		if imp.Price > 0 {
			item.CurrentPrice = imp.Price
		}
		if imp.Supplier != nil {
			item.SupplierURL = imp.Supplier.SupplierURL
			item.SupplierPrice = imp.Supplier.Price
			if imp.Supplier.Stock != "" {
				item.SupplierStock = imp.Supplier.Stock
			}
		}
		item.UpdatedAt = now
		if err := s.store.UpsertItem(ctx, item); err != nil {
			s.logger.Error("monitor: import persist failed",
				"tenant_id", tenantID, "marketplace_id", imp.ItemID, "error", err)
			continue
		}
		out = append(out, item)
	}
	s.logger.Info("monitor: store imported",
		"tenant_id", tenantID, "url", storeURL, "items", len(out))
	return out, nil
}
