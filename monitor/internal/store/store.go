// Package store provides the data access layer for the monitor.
//
// The monitoring core depends on the monitor.Store interface; this package
// is the SQLite reference implementation of that port plus the shared data
// types. The Store receives an already-opened *sql.DB.
package store

import "database/sql"

// Store wraps a database for monitor operations.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
