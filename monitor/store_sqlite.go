package monitor

import (
	"github.com/Taha-Siraj/ebay-backend/dbopen"
	"github.com/Taha-Siraj/ebay-backend/monitor/internal/store"
)

// SQLiteStore is the bundled SQLite implementation of the Store port. It
// also carries the settings, history and alert queries the surrounding
// CRUD layer needs.
type SQLiteStore = store.Store

// OpenSQLiteStore opens the bundled SQLite store at path, creating parent
// directories and the schema as needed. The caller must blank-import a
// driver registering as "sqlite" (modernc.org/sqlite) and close the
// store's DB when done.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll())
	if err != nil {
		return nil, err
	}
	if err := store.ApplySchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return store.NewStore(db), nil
}
