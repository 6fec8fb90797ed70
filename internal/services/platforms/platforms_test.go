package platforms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/seo"
	"clipforge/internal/services"
)

func writeClipFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("fake video data"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testClip(path string) Clip {
	return Clip{
		FilePath: path,
		Metadata: seo.Metadata{
			Title:       "INSANE MOMENT! no way he hit that 🔥",
			Description: "no way he hit that",
			Hashtags:    []string{"#gaming", "#fortnite"},
			Platform:    "youtube_shorts",
			Niche:       "fortnite",
		},
	}
}

func TestForPlatformUnknown(t *testing.T) {
	if _, err := ForPlatform("vine", Credentials{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestConstructorsRequireCredentials(t *testing.T) {
	if _, err := NewYouTubeShorts(""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewTikTok(" "); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := NewInstagram("token", ""); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error for missing account id, got %v", err)
	}
}

func TestPublishMissingFile(t *testing.T) {
	pub, err := NewYouTubeShorts("token")
	if err != nil {
		t.Fatal(err)
	}
	clip := testClip(filepath.Join(t.TempDir(), "missing.mp4"))
	if _, err := pub.Publish(context.Background(), clip); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestYouTubeShortsPublish(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer yt-token" {
			t.Fatalf("unexpected auth header %q", got)
		}
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/related") {
			t.Fatalf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		w.Write([]byte(`{"id":"yt-video-1"}`))
	}))
	defer server.Close()

	pub, err := NewYouTubeShorts("yt-token", WithYouTubeUploadURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	result, err := pub.Publish(context.Background(), testClip(writeClipFile(t)))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if result.RemoteID != "yt-video-1" || result.URL != "https://youtube.com/shorts/yt-video-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Platform != "youtube_shorts" {
		t.Fatalf("unexpected platform %q", result.Platform)
	}
}

func TestTikTokPublishFlow(t *testing.T) {
	var uploadedBytes int
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/video/upload/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"upload_url":"` + server.URL + `/upload-target"}}`))
	})
	mux.HandleFunc("/upload-target", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Fatalf("expected PUT upload, got %s", r.Method)
		}
		body := make([]byte, 64)
		n, _ := r.Body.Read(body)
		uploadedBytes = n
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/video/publish/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"video_id":"tt-video-1"}}`))
	})

	pub, err := NewTikTok("tt-token", WithTikTokBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	result, err := pub.Publish(context.Background(), testClip(writeClipFile(t)))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if result.RemoteID != "tt-video-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if uploadedBytes == 0 {
		t.Fatal("expected file bytes to be uploaded")
	}
}

func TestInstagramPublishFlow(t *testing.T) {
	var steps []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		steps = append(steps, r.URL.Path)
		if got := r.URL.Query().Get("access_token"); got != "ig-token" {
			t.Fatalf("missing access token, got %q", got)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/media"):
			if r.URL.Query().Get("media_type") != "REELS" {
				t.Fatalf("expected REELS media type")
			}
			w.Write([]byte(`{"id":"container-1"}`))
		case strings.HasSuffix(r.URL.Path, "/media_publish"):
			if r.URL.Query().Get("creation_id") != "container-1" {
				t.Fatalf("expected creation id container-1")
			}
			w.Write([]byte(`{"id":"reel-1"}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	pub, err := NewInstagram("ig-token", "acct-9", WithInstagramBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	result, err := pub.Publish(context.Background(), testClip(writeClipFile(t)))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if result.RemoteID != "reel-1" || result.URL != "https://instagram.com/reel/reel-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(steps) != 2 || steps[0] != "/acct-9/media" || steps[1] != "/acct-9/media_publish" {
		t.Fatalf("unexpected call order: %v", steps)
	}
}

func TestYouTubeShortsUploadError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	pub, err := NewYouTubeShorts("yt-token", WithYouTubeUploadURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pub.Publish(context.Background(), testClip(writeClipFile(t))); !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
