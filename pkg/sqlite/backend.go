// Package sqlite provides the public factory for the SQLite landing page
// store while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/landing/internal/sqlite"
	"github.com/mesh-intelligence/landing/pkg/types"
)

// NewBackend creates a new SQLite store. The store is not attached; call
// Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend()
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".landing-db",
//	})
//	defer store.Detach()
func NewBackend() types.Store {
	return sqlite.NewBackend()
}
