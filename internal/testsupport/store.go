package testsupport

import (
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/store"
)

// MustOpenStore opens the SQLite store for the provided config and registers
// cleanup on test completion.
func MustOpenStore(t *testing.T, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
