package testsupport

import (
	"testing"

	"vrcache/internal/catalog"
	"vrcache/internal/config"
	"vrcache/internal/logging"
)

// MustOpenCatalog opens the catalog store for tests.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.CatalogPath(), logging.NewNop())
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	return store
}

// NewRecord returns a valid world record for tests.
func NewRecord(id, name string) catalog.WorldRecord {
	return catalog.WorldRecord{
		ID:          id,
		Name:        name,
		Author:      "Test Author",
		Description: "Test world",
	}
}
