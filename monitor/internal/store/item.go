package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

const itemColumns = `id, tenant_id, marketplace_id, url, title, current_price,
	stock_state, supplier_url, supplier_price, supplier_stock,
	competitor_price, competitor_count, last_checked_at, active,
	created_at, updated_at`

// FindItem returns the item for (tenant, marketplace id), or nil if absent.
func (s *Store) FindItem(ctx context.Context, tenantID, marketplaceID string) (*MonitoredItem, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM monitored_items
		 WHERE tenant_id = ? AND marketplace_id = ?`, tenantID, marketplaceID)
	return scanItem(row)
}

// ItemsForTenant returns all of a tenant's items, active first.
func (s *Store) ItemsForTenant(ctx context.Context, tenantID string) ([]*MonitoredItem, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM monitored_items
		 WHERE tenant_id = ? ORDER BY active DESC, created_at`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MonitoredItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// UpsertItem inserts or replaces an item keyed by (tenant, marketplace id).
func (s *Store) UpsertItem(ctx context.Context, item *MonitoredItem) error {
	now := time.Now().UnixMilli()
	if item.CreatedAt == 0 {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO monitored_items (`+itemColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (tenant_id, marketplace_id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			current_price = excluded.current_price,
			stock_state = excluded.stock_state,
			supplier_url = excluded.supplier_url,
			supplier_price = excluded.supplier_price,
			supplier_stock = excluded.supplier_stock,
			competitor_price = excluded.competitor_price,
			competitor_count = excluded.competitor_count,
			last_checked_at = excluded.last_checked_at,
			active = excluded.active,
			updated_at = excluded.updated_at`,
		item.ID, item.TenantID, item.MarketplaceID, item.URL, item.Title,
		item.CurrentPrice, string(item.StockState), item.SupplierURL,
		item.SupplierPrice, string(item.SupplierStock), item.CompetitorPrice,
		item.CompetitorCount, item.LastCheckedAt, boolToInt(item.Active),
		item.CreatedAt, item.UpdatedAt)
	return err
}

// ListTenants returns the distinct tenant IDs that own at least one item
// or a settings row.
func (s *Store) ListTenants(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT tenant_id FROM tenant_settings
		UNION
		SELECT DISTINCT tenant_id FROM monitored_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		tenants = append(tenants, id)
	}
	return tenants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*MonitoredItem, error) {
	var item MonitoredItem
	var stock, supplierStock string
	var active int
	err := row.Scan(&item.ID, &item.TenantID, &item.MarketplaceID, &item.URL,
		&item.Title, &item.CurrentPrice, &stock, &item.SupplierURL,
		&item.SupplierPrice, &supplierStock, &item.CompetitorPrice,
		&item.CompetitorCount, &item.LastCheckedAt, &active,
		&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	item.StockState = StockState(stock)
	item.SupplierStock = StockState(supplierStock)
	item.Active = active != 0
	return &item, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
