package store

import "database/sql"

// schemaDDL is the full monitor schema. All timestamps are unix
// milliseconds. JSON columns hold small denormalized blobs (alert flags,
// variation option sets) that are never queried relationally.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS tenant_settings (
    tenant_id             TEXT PRIMARY KEY,
    frequency_minutes     INTEGER NOT NULL DEFAULT 60,
    price_threshold_pct   REAL NOT NULL DEFAULT 5,
    competitor_margin_pct REAL NOT NULL DEFAULT 3,
    competitor_enabled    INTEGER NOT NULL DEFAULT 1,
    alerts_enabled        TEXT NOT NULL DEFAULT '{}',
    notify_email          TEXT NOT NULL DEFAULT '',
    notify_webhook_url    TEXT NOT NULL DEFAULT '',
    created_at            INTEGER NOT NULL,
    updated_at            INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS monitored_items (
    id               TEXT PRIMARY KEY,
    tenant_id        TEXT NOT NULL,
    marketplace_id   TEXT NOT NULL,
    url              TEXT NOT NULL,
    title            TEXT NOT NULL DEFAULT '',
    current_price    REAL NOT NULL DEFAULT 0,
    stock_state      TEXT NOT NULL DEFAULT 'unknown',
    supplier_url     TEXT NOT NULL DEFAULT '',
    supplier_price   REAL NOT NULL DEFAULT 0,
    supplier_stock   TEXT NOT NULL DEFAULT 'unknown',
    competitor_price REAL NOT NULL DEFAULT 0,
    competitor_count INTEGER NOT NULL DEFAULT 0,
    last_checked_at  INTEGER NOT NULL DEFAULT 0,
    active           INTEGER NOT NULL DEFAULT 1,
    created_at       INTEGER NOT NULL,
    updated_at       INTEGER NOT NULL,
    UNIQUE (tenant_id, marketplace_id)
);

CREATE INDEX IF NOT EXISTS idx_items_tenant ON monitored_items(tenant_id, active);

CREATE TABLE IF NOT EXISTS price_history (
    id         TEXT PRIMARY KEY,
    item_id    TEXT NOT NULL,
    source     TEXT NOT NULL,
    price      REAL NOT NULL,
    stock      TEXT NOT NULL,
    checked_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_history_item ON price_history(item_id, source, checked_at);

CREATE TABLE IF NOT EXISTS alerts (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    item_id    TEXT NOT NULL,
    type       TEXT NOT NULL,
    old_value  TEXT NOT NULL DEFAULT '',
    new_value  TEXT NOT NULL DEFAULT '',
    message    TEXT NOT NULL DEFAULT '',
    severity   TEXT NOT NULL,
    read       INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_alerts_tenant ON alerts(tenant_id, created_at);
`

// ApplySchema applies the monitor schema to a database. Idempotent.
func ApplySchema(db *sql.DB) error {
	_, err := db.Exec(schemaDDL)
	return err
}
