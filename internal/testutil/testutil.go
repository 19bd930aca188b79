// Package testutil provides shared test helpers for setting up stores.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/daystack/daystack/internal/store"
)

// TestSQLite creates a temporary SQLite store that is automatically cleaned up.
func TestSQLite(t *testing.T) *store.SQLite {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "daystack-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// TestGateway creates a gateway over a temporary SQLite primary and a memory
// fallback, online at construction.
func TestGateway(t *testing.T) *store.Gateway {
	t.Helper()
	return store.NewGateway(t.Context(), TestSQLite(t), store.NewMemory())
}
