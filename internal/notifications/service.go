package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipforge/internal/config"
)

const userAgent = "ClipForge-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyDiscoveryCompleted(ctx context.Context, niches []string, discovered int) error
	NotifyAnalysisCompleted(ctx context.Context, videoID string, moments int, virality float64) error
	NotifyClipsReady(ctx context.Context, videoID string, clips int) error
	NotifyPipelineCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyPublishCompleted(ctx context.Context, clipID, platform, url string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) NotifyDiscoveryCompleted(ctx context.Context, niches []string, discovered int) error {
	if !n.settings.Discovery {
		return nil
	}
	data := payload{
		title:   "ClipForge - Discovery Complete",
		message: fmt.Sprintf("🔍 Discovered %d new videos across %s", discovered, strings.Join(niches, ", ")),
		tags:    []string{"clipforge", "discovery", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAnalysisCompleted(ctx context.Context, videoID string, moments int, virality float64) error {
	if !n.settings.Pipeline {
		return nil
	}
	data := payload{
		title:   "ClipForge - Analyzed",
		message: fmt.Sprintf("🎬 Analyzed %s: %d viral moments (virality %.1f)", videoID, moments, virality),
		tags:    []string{"clipforge", "analyze", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipsReady(ctx context.Context, videoID string, clips int) error {
	if !n.settings.Pipeline {
		return nil
	}
	data := payload{
		title:    "ClipForge - Clips Ready",
		message:  fmt.Sprintf("✂️ %d clips ready from %s", clips, videoID),
		tags:     []string{"clipforge", "clips", "ready"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPipelineCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.settings.Pipeline {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "ClipForge - Pipeline Complete"
		message = fmt.Sprintf("Pipeline complete: %d videos processed in %s", processed, durationText)
	} else {
		title = "ClipForge - Pipeline Complete (with errors)"
		message = fmt.Sprintf("Pipeline complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"clipforge", "pipeline", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPublishCompleted(ctx context.Context, clipID, platform, url string) error {
	if !n.settings.Publish {
		return nil
	}
	message := fmt.Sprintf("🚀 Published clip %s to %s", clipID, platform)
	if url = strings.TrimSpace(url); url != "" {
		message = fmt.Sprintf("%s\n%s", message, url)
	}
	data := payload{
		title:    "ClipForge - Published",
		message:  message,
		tags:     []string{"clipforge", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.settings.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("❌ Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "ClipForge - Error",
		message:  builder.String(),
		tags:     []string{"clipforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ClipForge - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"clipforge", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDiscoveryCompleted(context.Context, []string, int) error       { return nil }
func (noopService) NotifyAnalysisCompleted(context.Context, string, int, float64) error { return nil }
func (noopService) NotifyClipsReady(context.Context, string, int) error                 { return nil }
func (noopService) NotifyPipelineCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyPublishCompleted(context.Context, string, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                     { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
