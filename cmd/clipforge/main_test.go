package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	toml "github.com/pelletier/go-toml/v2"

	"clipforge/internal/config"
	"clipforge/internal/services"
	"clipforge/internal/store"
)

func writeCLIConfig(t *testing.T) (string, *config.Config) {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ClipsDir = filepath.Join(base, "clips")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.YouTube.APIKey = "yt-test-key"
	cfg.Gemini.APIKey = "gm-test-key"

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path, &cfg
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestConfigValidateCommand(t *testing.T) {
	configPath, _ := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, configPath)
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	configPath, _ := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "(set)")
	if strings.Contains(out, "yt-test-key") || strings.Contains(out, "gm-test-key") {
		t.Fatalf("api keys leaked into output:\n%s", out)
	}
}

func TestConfigInitCommand(t *testing.T) {
	configPath, _ := writeCLIConfig(t)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, configPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, _, err := runCLI(t, configPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestStatusCommand(t *testing.T) {
	configPath, cfg := writeCLIConfig(t)

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	inserted, err := st.InsertVideo(context.Background(), &store.Video{
		ID: "vid-1", Title: "Big Play", Niche: "fortnite", Status: store.StatusDiscovered,
	})
	if err != nil || !inserted {
		t.Fatalf("seed video: inserted=%v err=%v", inserted, err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "discovered")
	requireContains(t, out, "Clips: 0 total, 0 published")
}

func TestStatusCommandJSON(t *testing.T) {
	configPath, _ := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "status", "--json")
	if err != nil {
		t.Fatalf("status --json: %v", err)
	}

	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out)
	}
	if _, ok := report["videos"]; !ok {
		t.Fatalf("expected videos section in JSON, got %v", report)
	}
}

func TestPublishCandidatesEmptyStore(t *testing.T) {
	configPath, _ := writeCLIConfig(t)

	out, _, err := runCLI(t, configPath, "publish", "--candidates")
	if err != nil {
		t.Fatalf("publish --candidates: %v", err)
	}
	requireContains(t, out, "No clips eligible for publishing")
}

func TestRenderTableAlignsScores(t *testing.T) {
	out := renderTable(
		[]tableColumn{textColumn("Clip"), scoreColumn("Virality")},
		[][]string{
			{"clip-1", "93.0"},
			{"clip-2", "7.5"},
		},
	)
	requireContains(t, out, "Clip")
	requireContains(t, out, "Virality")
	// Numeric columns right-align, so the shorter score is padded on the left.
	requireContains(t, out, "     7.5")
	if renderTable(nil, nil) != "" {
		t.Fatal("expected empty output without columns")
	}
}

func TestRenderHealthReport(t *testing.T) {
	var buf bytes.Buffer
	failed := renderHealthReport(&buf, []services.Health{
		services.Healthy("store"),
		services.Unhealthy("youtube_api", "missing api key"),
	})
	if failed != 1 {
		t.Fatalf("expected 1 failing check, got %d", failed)
	}
	out := buf.String()
	requireContains(t, out, "== Health ==")
	requireContains(t, out, "store:")
	requireContains(t, out, "[OK]")
	requireContains(t, out, "[ERROR] missing api key")
	// A buffer is not a terminal, so no escape codes appear.
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected color codes in non-terminal output:\n%s", out)
	}
}
