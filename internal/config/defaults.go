package config

const (
	defaultDataDir              = "~/.local/share/clipforge"
	defaultClipsDir             = "~/.local/share/clipforge/clips"
	defaultLogDir               = "~/.local/share/clipforge/logs"
	defaultYouTubeBaseURL       = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeout       = 30
	defaultGeminiBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel          = "gemini-2.0-flash"
	defaultGeminiTimeoutSeconds = 120
	defaultResultsPerNiche      = 10
	defaultMinViews             = 10000
	defaultPublishedWithinDays  = 7
	defaultMaxVideosToAnalyze   = 100
	defaultMaxVideosToProcess   = 2
	defaultMaxClipsPerVideo     = 3
	defaultMinViralityScore     = 70.0
	defaultQAStrictness         = "moderate"
	defaultDownloadTimeout      = 600
	defaultExtractTimeout       = 300
	defaultPublishDelaySeconds  = 30
	defaultPublishMinVirality   = 70.0
	defaultPublishMinSafety     = 70.0
	defaultMaxDailyPublishes    = 5
	defaultNotifyRequestTimeout = 10
	defaultScheduleCron         = "0 */6 * * *"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

func defaultNiches() []string {
	return []string{"fortnite", "minecraft", "valorant"}
}

func defaultPlatforms() []string {
	return []string{"youtube_shorts", "tiktok", "instagram_reels"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			ClipsDir: defaultClipsDir,
			LogDir:   defaultLogDir,
		},
		YouTube: YouTube{
			BaseURL:        defaultYouTubeBaseURL,
			RequestTimeout: defaultYouTubeTimeout,
		},
		Gemini: Gemini{
			BaseURL:        defaultGeminiBaseURL,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeoutSeconds,
		},
		Discovery: Discovery{
			Niches:          defaultNiches(),
			ResultsPerNiche: defaultResultsPerNiche,
			MinViews:        defaultMinViews,
			PublishedWithin: defaultPublishedWithinDays,
		},
		Processing: Processing{
			MaxVideosToAnalyze: defaultMaxVideosToAnalyze,
			MaxVideosToProcess: defaultMaxVideosToProcess,
			MaxClipsPerVideo:   defaultMaxClipsPerVideo,
			MinViralityScore:   defaultMinViralityScore,
			QAStrictness:       defaultQAStrictness,
			DownloadTimeout:    defaultDownloadTimeout,
			ExtractTimeout:     defaultExtractTimeout,
		},
		Publishing: Publishing{
			Platforms:         defaultPlatforms(),
			DelaySeconds:      defaultPublishDelaySeconds,
			MinViralityScore:  defaultPublishMinVirality,
			MinSafetyScore:    defaultPublishMinSafety,
			MaxDailyPublishes: defaultMaxDailyPublishes,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Discovery:      true,
			Pipeline:       true,
			Publish:        true,
			Errors:         true,
		},
		Schedule: Schedule{
			Cron: defaultScheduleCron,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
