package store

import "context"

// AppendHistory records one immutable price observation.
func (s *Store) AppendHistory(ctx context.Context, e *PriceHistoryEntry) error {
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO price_history (id, item_id, source, price, stock, checked_at)
		VALUES (?,?,?,?,?,?)`,
		e.ID, e.ItemID, string(e.Source), e.Price, string(e.Stock), e.CheckedAt)
	return err
}

// HistoryForItem returns the newest entries for an item and source.
func (s *Store) HistoryForItem(ctx context.Context, itemID string, source Source, limit int) ([]*PriceHistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx, `
		SELECT id, item_id, source, price, stock, checked_at
		FROM price_history
		WHERE item_id = ? AND source = ?
		ORDER BY checked_at DESC LIMIT ?`, itemID, string(source), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*PriceHistoryEntry
	for rows.Next() {
		var e PriceHistoryEntry
		var src, stock string
		if err := rows.Scan(&e.ID, &e.ItemID, &src, &e.Price, &stock, &e.CheckedAt); err != nil {
			return nil, err
		}
		e.Source = Source(src)
		e.Stock = StockState(stock)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
