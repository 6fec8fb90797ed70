package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func baseConfig(t *testing.T) Config {
	t.Helper()
	cfg := Default()
	cfg.YouTube.APIKey = "yt-test-key"
	cfg.Gemini.APIKey = "gemini-test-key"
	root := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(root, "data")
	cfg.Paths.ClipsDir = filepath.Join(root, "clips")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return cfg
}

func TestDefaultsValidate(t *testing.T) {
	cfg := baseConfig(t)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults with keys to validate, got %v", err)
	}
	if cfg.Processing.MaxVideosToAnalyze != 100 {
		t.Fatalf("expected max_videos_to_analyze 100, got %d", cfg.Processing.MaxVideosToAnalyze)
	}
	if cfg.Processing.MaxVideosToProcess != 2 {
		t.Fatalf("expected max_videos_to_process 2, got %d", cfg.Processing.MaxVideosToProcess)
	}
}

func TestValidateRequiresYouTubeKey(t *testing.T) {
	cfg := baseConfig(t)
	cfg.YouTube.APIKey = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing youtube key")
	}
	if !strings.Contains(err.Error(), "youtube.api_key") {
		t.Fatalf("expected youtube.api_key mention, got %v", err)
	}
}

func TestValidateRequiresGeminiKey(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Gemini.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing gemini key")
	}
}

func TestValidateRejectsUnknownPlatform(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Publishing.Platforms = []string{"myspace"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown platform")
	}
	if !strings.Contains(err.Error(), "myspace") {
		t.Fatalf("expected platform name in error, got %v", err)
	}
}

func TestValidateRejectsUnknownStrictness(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Processing.QAStrictness = "brutal"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown strictness")
	}
}

func TestNormalizeDeduplicatesNiches(t *testing.T) {
	cfg := Default()
	cfg.Discovery.Niches = []string{"Fortnite", "fortnite", " horror ", ""}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := cfg.Discovery.Niches
	if len(got) != 2 || got[0] != "fortnite" || got[1] != "horror" {
		t.Fatalf("unexpected niches %v", got)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[youtube]
api_key = "file-key"

[gemini]
api_key = "gem-key"

[processing]
max_clips_per_video = 5
min_virality_score = 80.0

[publishing]
delay_seconds = 0
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != path {
		t.Fatalf("expected resolved path %q, got %q", path, resolved)
	}
	if cfg.Processing.MaxClipsPerVideo != 5 {
		t.Fatalf("expected max_clips_per_video 5, got %d", cfg.Processing.MaxClipsPerVideo)
	}
	if cfg.Processing.MinViralityScore != 80.0 {
		t.Fatalf("expected min_virality_score 80, got %v", cfg.Processing.MinViralityScore)
	}
	if cfg.Publishing.DelaySeconds != 0 {
		t.Fatalf("expected delay_seconds 0, got %d", cfg.Publishing.DelaySeconds)
	}
	if cfg.YouTube.BaseURL == "" {
		t.Fatal("expected default youtube base url to survive override load")
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	t.Setenv("YOUTUBE_API_KEY", "env-yt")
	t.Setenv("GEMINI_API_KEY", "env-gem")

	missing := filepath.Join(t.TempDir(), "nope.toml")
	cfg, _, exists, err := Load(missing)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing path")
	}
	if cfg.YouTube.APIKey != "env-yt" {
		t.Fatalf("expected env fallback for youtube key, got %q", cfg.YouTube.APIKey)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[youtube]") {
		t.Fatal("expected sample to contain a [youtube] section")
	}
}
