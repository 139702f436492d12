package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// TenantSettings returns the tenant's settings, or defaults if the tenant
// has never saved any.
func (s *Store) TenantSettings(ctx context.Context, tenantID string) (*TenantSettings, error) {
	row := s.DB.QueryRowContext(ctx, `
		SELECT tenant_id, frequency_minutes, price_threshold_pct,
			competitor_margin_pct, competitor_enabled, alerts_enabled,
			notify_email, notify_webhook_url, created_at, updated_at
		FROM tenant_settings WHERE tenant_id = ?`, tenantID)

	var st TenantSettings
	var competitorEnabled int
	var alertsJSON string
	err := row.Scan(&st.TenantID, &st.FrequencyMinutes, &st.PriceThresholdPct,
		&st.CompetitorMarginPct, &competitorEnabled, &alertsJSON,
		&st.NotifyEmail, &st.NotifyWebhookURL, &st.CreatedAt, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(tenantID), nil
	}
	if err != nil {
		return nil, err
	}
	st.CompetitorEnabled = competitorEnabled != 0
	if alertsJSON != "" && alertsJSON != "{}" {
		if err := json.Unmarshal([]byte(alertsJSON), &st.AlertsEnabled); err != nil {
			return nil, err
		}
	}
	return &st, nil
}

// SaveTenantSettings inserts or replaces a tenant's settings row.
func (s *Store) SaveTenantSettings(ctx context.Context, st *TenantSettings) error {
	now := time.Now().UnixMilli()
	if st.CreatedAt == 0 {
		st.CreatedAt = now
	}
	st.UpdatedAt = now

	alertsJSON := "{}"
	if len(st.AlertsEnabled) > 0 {
		b, err := json.Marshal(st.AlertsEnabled)
		if err != nil {
			return err
		}
		alertsJSON = string(b)
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO tenant_settings (tenant_id, frequency_minutes,
			price_threshold_pct, competitor_margin_pct, competitor_enabled,
			alerts_enabled, notify_email, notify_webhook_url,
			created_at, updated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT (tenant_id) DO UPDATE SET
			frequency_minutes = excluded.frequency_minutes,
			price_threshold_pct = excluded.price_threshold_pct,
			competitor_margin_pct = excluded.competitor_margin_pct,
			competitor_enabled = excluded.competitor_enabled,
			alerts_enabled = excluded.alerts_enabled,
			notify_email = excluded.notify_email,
			notify_webhook_url = excluded.notify_webhook_url,
			updated_at = excluded.updated_at`,
		st.TenantID, st.FrequencyMinutes, st.PriceThresholdPct,
		st.CompetitorMarginPct, boolToInt(st.CompetitorEnabled), alertsJSON,
		st.NotifyEmail, st.NotifyWebhookURL, st.CreatedAt, st.UpdatedAt)
	return err
}
