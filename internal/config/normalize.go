package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeYouTube()
	c.normalizeGemini()
	c.normalizeDiscovery()
	c.normalizeProcessing()
	c.normalizePublishing()
	c.normalizeNotifications()
	c.normalizeSchedule()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.ClipsDir, err = expandPath(c.Paths.ClipsDir); err != nil {
		return fmt.Errorf("paths.clips_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeYouTube() {
	c.YouTube.APIKey = strings.TrimSpace(c.YouTube.APIKey)
	if c.YouTube.APIKey == "" {
		if value, ok := os.LookupEnv("YOUTUBE_API_KEY"); ok {
			c.YouTube.APIKey = strings.TrimSpace(value)
		}
	}
	c.YouTube.BaseURL = strings.TrimSpace(c.YouTube.BaseURL)
	if c.YouTube.BaseURL == "" {
		c.YouTube.BaseURL = defaultYouTubeBaseURL
	}
	if c.YouTube.RequestTimeout <= 0 {
		c.YouTube.RequestTimeout = defaultYouTubeTimeout
	}
}

func (c *Config) normalizeGemini() {
	c.Gemini.APIKey = strings.TrimSpace(c.Gemini.APIKey)
	if c.Gemini.APIKey == "" {
		if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok {
			c.Gemini.APIKey = strings.TrimSpace(value)
		}
	}
	c.Gemini.BaseURL = strings.TrimSpace(c.Gemini.BaseURL)
	if c.Gemini.BaseURL == "" {
		c.Gemini.BaseURL = defaultGeminiBaseURL
	}
	c.Gemini.Model = strings.TrimSpace(c.Gemini.Model)
	if c.Gemini.Model == "" {
		c.Gemini.Model = defaultGeminiModel
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		c.Gemini.TimeoutSeconds = defaultGeminiTimeoutSeconds
	}
}

func (c *Config) normalizeDiscovery() {
	c.Discovery.Niches = normalizeList(c.Discovery.Niches, defaultNiches())
	if c.Discovery.ResultsPerNiche <= 0 {
		c.Discovery.ResultsPerNiche = defaultResultsPerNiche
	}
	if c.Discovery.MinViews < 0 {
		c.Discovery.MinViews = 0
	}
	if c.Discovery.PublishedWithin <= 0 {
		c.Discovery.PublishedWithin = defaultPublishedWithinDays
	}
}

func (c *Config) normalizeProcessing() {
	if c.Processing.MaxVideosToAnalyze <= 0 {
		c.Processing.MaxVideosToAnalyze = defaultMaxVideosToAnalyze
	}
	if c.Processing.MaxVideosToProcess <= 0 {
		c.Processing.MaxVideosToProcess = defaultMaxVideosToProcess
	}
	if c.Processing.MaxClipsPerVideo <= 0 {
		c.Processing.MaxClipsPerVideo = defaultMaxClipsPerVideo
	}
	c.Processing.QAStrictness = strings.ToLower(strings.TrimSpace(c.Processing.QAStrictness))
	if c.Processing.QAStrictness == "" {
		c.Processing.QAStrictness = defaultQAStrictness
	}
	if c.Processing.DownloadTimeout <= 0 {
		c.Processing.DownloadTimeout = defaultDownloadTimeout
	}
	if c.Processing.ExtractTimeout <= 0 {
		c.Processing.ExtractTimeout = defaultExtractTimeout
	}
}

func (c *Config) normalizePublishing() {
	c.Publishing.Platforms = normalizeList(c.Publishing.Platforms, defaultPlatforms())
	if c.Publishing.DelaySeconds < 0 {
		c.Publishing.DelaySeconds = 0
	}
	if c.Publishing.MaxDailyPublishes <= 0 {
		c.Publishing.MaxDailyPublishes = defaultMaxDailyPublishes
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("CLIPFORGE_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeSchedule() {
	c.Schedule.Cron = strings.TrimSpace(c.Schedule.Cron)
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = defaultScheduleCron
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func normalizeList(values []string, fallback []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		normalized := strings.ToLower(strings.TrimSpace(value))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
