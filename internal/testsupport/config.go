package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// NewConfig returns a validated configuration rooted in a per-test temp
// directory with dummy API credentials.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	root := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.ClipsDir = filepath.Join(root, "clips")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.YouTube.APIKey = "test-youtube-key"
	cfg.Gemini.APIKey = "test-gemini-key"
	cfg.Publishing.DelaySeconds = 0

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate test config: %v", err)
	}
	return &cfg
}
