package platforms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"clipforge/internal/services"
)

const defaultInstagramBaseURL = "https://graph.facebook.com/v18.0"

// Instagram uploads clips as Reels through the Graph API: create a media
// container, then publish it.
type Instagram struct {
	accessToken string
	accountID   string
	baseURL     string
	httpClient  *http.Client
}

// InstagramOption customizes the Instagram publisher.
type InstagramOption func(*Instagram)

// WithInstagramBaseURL overrides the API base (useful for tests).
func WithInstagramBaseURL(base string) InstagramOption {
	return func(p *Instagram) {
		base = strings.TrimSpace(base)
		if base != "" {
			p.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithInstagramHTTPClient overrides the default HTTP client.
func WithInstagramHTTPClient(client *http.Client) InstagramOption {
	return func(p *Instagram) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewInstagram constructs the Reels publisher.
func NewInstagram(accessToken, accountID string, opts ...InstagramOption) (*Instagram, error) {
	accessToken = strings.TrimSpace(accessToken)
	accountID = strings.TrimSpace(accountID)
	if accessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "instagram_reels", "new publisher",
			"INSTAGRAM_ACCESS_TOKEN required", nil)
	}
	if accountID == "" {
		return nil, services.Wrap(services.ErrConfiguration, "instagram_reels", "new publisher",
			"INSTAGRAM_BUSINESS_ACCOUNT_ID required", nil)
	}
	p := &Instagram{
		accessToken: accessToken,
		accountID:   accountID,
		baseURL:     defaultInstagramBaseURL,
		httpClient:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *Instagram) Name() string { return "instagram_reels" }

// Publish creates and publishes a Reels container and returns the reel URL.
func (p *Instagram) Publish(ctx context.Context, clip Clip) (Result, error) {
	var empty Result
	if err := checkClipFile(p.Name(), clip); err != nil {
		return empty, err
	}

	caption := clip.Metadata.Title + "\n\n" + clip.Metadata.Description + "\n\n" +
		strings.Join(clip.Metadata.Hashtags, " ")

	containerID, err := p.createContainer(ctx, clip.FilePath, caption)
	if err != nil {
		return empty, err
	}
	mediaID, err := p.publishContainer(ctx, containerID)
	if err != nil {
		return empty, err
	}

	return Result{
		Platform:    p.Name(),
		RemoteID:    mediaID,
		URL:         "https://instagram.com/reel/" + mediaID,
		PublishedAt: time.Now().UTC(),
	}, nil
}

func (p *Instagram) createContainer(ctx context.Context, videoURL, caption string) (string, error) {
	params := url.Values{}
	params.Set("media_type", "REELS")
	params.Set("video_url", videoURL)
	params.Set("caption", caption)

	id, err := p.post(ctx, "/"+p.accountID+"/media", params)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, p.Name(), "publish", "create container", err)
	}
	return id, nil
}

func (p *Instagram) publishContainer(ctx context.Context, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)

	id, err := p.post(ctx, "/"+p.accountID+"/media_publish", params)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, p.Name(), "publish", "publish container", err)
	}
	return id, nil
}

func (p *Instagram) post(ctx context.Context, path string, params url.Values) (string, error) {
	params.Set("access_token", p.accessToken)
	endpoint := p.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var response struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if response.ID == "" {
		return "", fmt.Errorf("no id in response")
	}
	return response.ID, nil
}
