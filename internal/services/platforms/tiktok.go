package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"clipforge/internal/services"
)

const defaultTikTokBaseURL = "https://open.tiktokapis.com/v2"

// TikTok uploads clips through the TikTok content posting API: request an
// upload URL, stream the file to it, then publish with the caption.
type TikTok struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// TikTokOption customizes the TikTok publisher.
type TikTokOption func(*TikTok)

// WithTikTokBaseURL overrides the API base (useful for tests).
func WithTikTokBaseURL(base string) TikTokOption {
	return func(p *TikTok) {
		base = strings.TrimSpace(base)
		if base != "" {
			p.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTikTokHTTPClient overrides the default HTTP client.
func WithTikTokHTTPClient(client *http.Client) TikTokOption {
	return func(p *TikTok) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewTikTok constructs the TikTok publisher.
func NewTikTok(accessToken string, opts ...TikTokOption) (*TikTok, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tiktok", "new publisher",
			"TIKTOK_ACCESS_TOKEN required", nil)
	}
	p := &TikTok{
		accessToken: accessToken,
		baseURL:     defaultTikTokBaseURL,
		httpClient:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *TikTok) Name() string { return "tiktok" }

// Publish uploads the clip and returns the TikTok video URL.
func (p *TikTok) Publish(ctx context.Context, clip Clip) (Result, error) {
	var empty Result
	if err := checkClipFile(p.Name(), clip); err != nil {
		return empty, err
	}

	info, err := os.Stat(clip.FilePath)
	if err != nil {
		return empty, services.Wrap(services.ErrNotFound, p.Name(), "publish", clip.FilePath, err)
	}

	uploadURL, err := p.requestUploadURL(ctx, info.Size())
	if err != nil {
		return empty, err
	}
	if err := p.uploadFile(ctx, uploadURL, clip.FilePath); err != nil {
		return empty, err
	}

	caption := clip.Metadata.Title + "\n\n" + clip.Metadata.Description
	videoID, err := p.publishUpload(ctx, uploadURL, caption)
	if err != nil {
		return empty, err
	}

	return Result{
		Platform:    p.Name(),
		RemoteID:    videoID,
		URL:         "https://tiktok.com/@user/video/" + videoID,
		PublishedAt: time.Now().UTC(),
	}, nil
}

func (p *TikTok) requestUploadURL(ctx context.Context, size int64) (string, error) {
	body, _ := json.Marshal(map[string]int64{"video_size": size})
	payload, err := p.post(ctx, "/video/upload/", body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, p.Name(), "publish", "request upload url", err)
	}

	var response struct {
		Data struct {
			UploadURL string `json:"upload_url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return "", services.Wrap(services.ErrExternalTool, p.Name(), "publish", "decode upload url response", err)
	}
	if response.Data.UploadURL == "" {
		return "", services.Wrap(services.ErrExternalTool, p.Name(), "publish", "no upload url in response", nil)
	}
	return response.Data.UploadURL, nil
}

func (p *TikTok) uploadFile(ctx context.Context, uploadURL, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return services.Wrap(services.ErrNotFound, p.Name(), "publish", filePath, err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return services.Wrap(services.ErrTransient, p.Name(), "publish", "build upload request", err)
	}
	req.Header.Set("Content-Type", "video/mp4")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, p.Name(), "publish", "upload failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return services.Wrap(services.ErrExternalTool, p.Name(), "publish",
			fmt.Sprintf("upload http %d: %s", resp.StatusCode, strings.TrimSpace(string(body))), nil)
	}
	return nil
}

func (p *TikTok) publishUpload(ctx context.Context, uploadURL, caption string) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"video_url": uploadURL,
		"caption":   caption,
	})
	payload, err := p.post(ctx, "/video/publish/", body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, p.Name(), "publish", "complete upload", err)
	}

	var response struct {
		Data struct {
			VideoID string `json:"video_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &response); err != nil {
		return "", services.Wrap(services.ErrExternalTool, p.Name(), "publish", "decode publish response", err)
	}
	if response.Data.VideoID == "" {
		return "", services.Wrap(services.ErrExternalTool, p.Name(), "publish", "no video id in response", nil)
	}
	return response.Data.VideoID, nil
}

func (p *TikTok) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	return payload, nil
}
