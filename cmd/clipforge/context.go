package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/pipeline"
	"clipforge/internal/services/gemini"
	"clipforge/internal/services/renderer"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) openStore() (*store.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(cfg)
}

func (c *commandContext) buildLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewForDir(cfg.Paths.LogDir, cfg.Logging.Level, cfg.Logging.Format)
}

func (c *commandContext) notifier() (notifications.Service, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return notifications.NewService(cfg), nil
}

func (c *commandContext) youtubeClient() (*youtube.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := make([]youtube.Option, 0, 2)
	if cfg.YouTube.BaseURL != "" {
		opts = append(opts, youtube.WithBaseURL(cfg.YouTube.BaseURL))
	}
	if cfg.YouTube.RequestTimeout > 0 {
		opts = append(opts, youtube.WithTimeout(time.Duration(cfg.YouTube.RequestTimeout)*time.Second))
	}
	return youtube.NewClient(cfg.YouTube.APIKey, opts...)
}

func (c *commandContext) geminiClient() (*gemini.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	opts := make([]gemini.Option, 0, 3)
	if cfg.Gemini.BaseURL != "" {
		opts = append(opts, gemini.WithBaseURL(cfg.Gemini.BaseURL))
	}
	if cfg.Gemini.Model != "" {
		opts = append(opts, gemini.WithModel(cfg.Gemini.Model))
	}
	if cfg.Gemini.TimeoutSeconds > 0 {
		opts = append(opts, gemini.WithTimeout(time.Duration(cfg.Gemini.TimeoutSeconds)*time.Second))
	}
	return gemini.NewClient(cfg.Gemini.APIKey, opts...)
}

func (c *commandContext) newRenderer() (*renderer.Renderer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return renderer.New(renderer.Options{
		YtdlpBinary:     cfg.YtdlpBinary(),
		FFmpegBinary:    cfg.FFmpegBinary(),
		DownloadDir:     filepath.Join(cfg.Paths.DataDir, "downloads"),
		ClipsDir:        cfg.Paths.ClipsDir,
		DownloadTimeout: time.Duration(cfg.Processing.DownloadTimeout) * time.Second,
		ExtractTimeout:  time.Duration(cfg.Processing.ExtractTimeout) * time.Second,
	}), nil
}

func (c *commandContext) newOrchestrator(st *store.Store, logger *slog.Logger) (*pipeline.Orchestrator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	yt, err := c.youtubeClient()
	if err != nil {
		return nil, err
	}
	analyzer, err := c.geminiClient()
	if err != nil {
		return nil, err
	}
	rend, err := c.newRenderer()
	if err != nil {
		return nil, err
	}
	notifier, err := c.notifier()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Options{
		Config:      cfg,
		Store:       st,
		Transcripts: yt,
		Analyzer:    analyzer,
		Renderer:    rend,
		Notifier:    notifier,
		Logger:      logger,
	}), nil
}

// withLock runs fn while holding the exclusive run lock so scheduled and
// manual invocations cannot mutate the store concurrently.
func (c *commandContext) withLock(fn func() error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another clipforge run holds the lock at %s", cfg.LockPath())
	}
	defer func() { _ = lock.Unlock() }()
	return fn()
}
