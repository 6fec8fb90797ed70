package config

import (
	"errors"
	"fmt"
	"strings"
)

var knownPlatforms = map[string]struct{}{
	"youtube_shorts":  {},
	"tiktok":          {},
	"instagram_reels": {},
}

var knownStrictness = map[string]struct{}{
	"strict":   {},
	"moderate": {},
	"lenient":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateYouTube(); err != nil {
		return err
	}
	if err := c.validateGemini(); err != nil {
		return err
	}
	if err := c.validateDiscovery(); err != nil {
		return err
	}
	if err := c.validateProcessing(); err != nil {
		return err
	}
	if err := c.validatePublishing(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if c.YouTube.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipforge/config.toml"
		}
		return fmt.Errorf("youtube.api_key is required. Set YOUTUBE_API_KEY env var or edit %s (create with 'clipforge config init')", defaultPath)
	}
	if c.YouTube.RequestTimeout <= 0 {
		return errors.New("youtube.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateGemini() error {
	if c.Gemini.APIKey == "" {
		return errors.New("gemini.api_key is required. Set GEMINI_API_KEY env var or add it to the config file")
	}
	if c.Gemini.TimeoutSeconds <= 0 {
		return errors.New("gemini.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateDiscovery() error {
	if len(c.Discovery.Niches) == 0 {
		return errors.New("discovery.niches must include at least one niche")
	}
	if c.Discovery.ResultsPerNiche <= 0 {
		return errors.New("discovery.results_per_niche must be positive")
	}
	return nil
}

func (c *Config) validateProcessing() error {
	if c.Processing.MaxClipsPerVideo <= 0 {
		return errors.New("processing.max_clips_per_video must be positive")
	}
	if c.Processing.MinViralityScore < 0 || c.Processing.MinViralityScore > 100 {
		return errors.New("processing.min_virality_score must be between 0 and 100")
	}
	if _, ok := knownStrictness[c.Processing.QAStrictness]; !ok {
		return fmt.Errorf("processing.qa_strictness must be one of strict, moderate, lenient (got %q)", c.Processing.QAStrictness)
	}
	if err := ensurePositiveMap(map[string]int{
		"processing.max_videos_to_analyze": c.Processing.MaxVideosToAnalyze,
		"processing.max_videos_to_process": c.Processing.MaxVideosToProcess,
		"processing.download_timeout":      c.Processing.DownloadTimeout,
		"processing.extract_timeout":       c.Processing.ExtractTimeout,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePublishing() error {
	if len(c.Publishing.Platforms) == 0 {
		return errors.New("publishing.platforms must include at least one platform")
	}
	for _, platform := range c.Publishing.Platforms {
		if _, ok := knownPlatforms[platform]; !ok {
			return fmt.Errorf("publishing.platforms contains unknown platform %q (known: %s)", platform, strings.Join(platformNames(), ", "))
		}
	}
	if c.Publishing.MinViralityScore < 0 || c.Publishing.MinViralityScore > 100 {
		return errors.New("publishing.min_virality_score must be between 0 and 100")
	}
	if c.Publishing.MinSafetyScore < 0 || c.Publishing.MinSafetyScore > 100 {
		return errors.New("publishing.min_safety_score must be between 0 and 100")
	}
	if c.Publishing.DelaySeconds < 0 {
		return errors.New("publishing.delay_seconds must be >= 0")
	}
	if c.Publishing.MaxDailyPublishes < 1 {
		return errors.New("publishing.max_daily_publishes must be >= 1")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	return nil
}

func platformNames() []string {
	names := make([]string, 0, len(knownPlatforms))
	for name := range knownPlatforms {
		names = append(names, name)
	}
	return names
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
