// Package platforms uploads rendered clips to short-form video platforms
// behind a single Publisher interface.
package platforms

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"clipforge/internal/seo"
	"clipforge/internal/services"
)

const defaultHTTPTimeout = 2 * time.Minute

// Clip is one rendered artifact plus the metadata to publish it with.
type Clip struct {
	FilePath string
	Metadata seo.Metadata
}

// Result records a successful publication.
type Result struct {
	Platform    string
	RemoteID    string
	URL         string
	PublishedAt time.Time
}

// Publisher uploads a clip to one platform.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, clip Clip) (Result, error)
}

// Credentials holds the per-platform upload tokens.
type Credentials struct {
	YouTubeAccessToken         string
	TikTokAccessToken          string
	InstagramAccessToken       string
	InstagramBusinessAccountID string
}

// CredentialsFromEnv reads upload credentials from the environment.
func CredentialsFromEnv() Credentials {
	return Credentials{
		YouTubeAccessToken:         os.Getenv("YOUTUBE_UPLOAD_TOKEN"),
		TikTokAccessToken:          os.Getenv("TIKTOK_ACCESS_TOKEN"),
		InstagramAccessToken:       os.Getenv("INSTAGRAM_ACCESS_TOKEN"),
		InstagramBusinessAccountID: os.Getenv("INSTAGRAM_BUSINESS_ACCOUNT_ID"),
	}
}

// ForPlatform constructs the publisher for a canonical platform name.
func ForPlatform(name string, creds Credentials) (Publisher, error) {
	switch name {
	case "youtube_shorts":
		return NewYouTubeShorts(creds.YouTubeAccessToken)
	case "tiktok":
		return NewTikTok(creds.TikTokAccessToken)
	case "instagram_reels":
		return NewInstagram(creds.InstagramAccessToken, creds.InstagramBusinessAccountID)
	default:
		return nil, services.Wrap(services.ErrConfiguration, "platforms", "for platform",
			fmt.Sprintf("unknown platform %q", name), nil)
	}
}

func checkClipFile(component string, clip Clip) error {
	info, err := os.Stat(clip.FilePath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, component, "publish",
			fmt.Sprintf("clip file %s", clip.FilePath), err)
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, component, "publish",
			fmt.Sprintf("clip file %s is empty", clip.FilePath), nil)
	}
	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}
