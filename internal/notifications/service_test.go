package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/notifications"
)

type captured struct {
	title    string
	message  string
	tags     string
	priority string
}

func newCaptureServer(t *testing.T, sink *[]captured) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*sink = append(*sink, captured{
			title:    r.Header.Get("Title"),
			message:  string(body),
			tags:     r.Header.Get("Tags"),
			priority: r.Header.Get("Priority"),
		})
	}))
}

func notifyConfig(topic string) *config.Config {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = topic
	cfg.Notifications.Discovery = true
	cfg.Notifications.Pipeline = true
	cfg.Notifications.Publish = true
	cfg.Notifications.Errors = true
	return &cfg
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyClipsReady(context.Background(), "vid-1", 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsMessages(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)
	defer server.Close()

	svc := notifications.NewService(notifyConfig(server.URL))
	ctx := context.Background()

	if err := svc.NotifyDiscoveryCompleted(ctx, []string{"fortnite", "minecraft"}, 12); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyClipsReady(ctx, "vid-1", 3); err != nil {
		t.Fatal(err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "publish"); err != nil {
		t.Fatal(err)
	}

	if len(sink) != 3 {
		t.Fatalf("expected 3 notifications, got %d", len(sink))
	}
	if sink[0].title != "ClipForge - Discovery Complete" {
		t.Fatalf("unexpected title %q", sink[0].title)
	}
	if sink[0].message != "🔍 Discovered 12 new videos across fortnite, minecraft" {
		t.Fatalf("unexpected message %q", sink[0].message)
	}
	if sink[1].priority != "high" {
		t.Fatalf("expected high priority for clips ready, got %q", sink[1].priority)
	}
	if sink[2].message != "❌ Error with publish: boom" {
		t.Fatalf("unexpected error message %q", sink[2].message)
	}
	if sink[2].tags != "clipforge,error,alert" {
		t.Fatalf("unexpected tags %q", sink[2].tags)
	}
}

func TestCategoryTogglesSuppressEvents(t *testing.T) {
	var sink []captured
	server := newCaptureServer(t, &sink)
	defer server.Close()

	cfg := notifyConfig(server.URL)
	cfg.Notifications.Publish = false
	svc := notifications.NewService(cfg)

	if err := svc.NotifyPublishCompleted(context.Background(), "clip-1", "tiktok", ""); err != nil {
		t.Fatal(err)
	}
	if len(sink) != 0 {
		t.Fatalf("expected suppressed publish notification, got %d", len(sink))
	}
}

func TestNtfyServerErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic rejected", http.StatusForbidden)
	}))
	defer server.Close()

	svc := notifications.NewService(notifyConfig(server.URL))
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error from rejected notification")
	}
}
