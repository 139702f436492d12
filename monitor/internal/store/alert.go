package store

import "context"

// CreateAlert persists an alert record.
func (s *Store) CreateAlert(ctx context.Context, a *Alert) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO alerts (id, tenant_id, item_id, type, old_value, new_value,
			message, severity, read, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.TenantID, a.ItemID, string(a.Type), a.OldValue, a.NewValue,
		a.Message, string(a.Severity), boolToInt(a.Read), a.CreatedAt)
	return err
}

// AlertsForTenant returns the newest alerts for a tenant.
func (s *Store) AlertsForTenant(ctx context.Context, tenantID string, limit int) ([]*Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, tenant_id, item_id, type, old_value, new_value,
			message, severity, read, created_at
		FROM alerts WHERE tenant_id = ?
		ORDER BY created_at DESC LIMIT ?`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*Alert
	for rows.Next() {
		var a Alert
		var typ, sev string
		var read int
		if err := rows.Scan(&a.ID, &a.TenantID, &a.ItemID, &typ, &a.OldValue,
			&a.NewValue, &a.Message, &sev, &read, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Type = AlertType(typ)
		a.Severity = Severity(sev)
		a.Read = read != 0
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// MarkAlertRead flips the externally-owned read flag.
func (s *Store) MarkAlertRead(ctx context.Context, alertID string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE alerts SET read = 1 WHERE id = ?`, alertID)
	return err
}
