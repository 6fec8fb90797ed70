package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"clipforge/internal/services"
)

const (
	defaultYouTubeUploadURL = "https://www.googleapis.com/upload/youtube/v3/videos"
	// Gaming category.
	youtubeCategoryID = "20"
	// YouTube caps tags per video.
	maxYouTubeTags = 500
)

// YouTubeShorts uploads clips as YouTube Shorts using the resumable-free
// multipart upload endpoint.
type YouTubeShorts struct {
	accessToken string
	uploadURL   string
	httpClient  *http.Client
}

// YouTubeOption customizes the Shorts publisher.
type YouTubeOption func(*YouTubeShorts)

// WithYouTubeUploadURL overrides the upload endpoint (useful for tests).
func WithYouTubeUploadURL(url string) YouTubeOption {
	return func(p *YouTubeShorts) {
		url = strings.TrimSpace(url)
		if url != "" {
			p.uploadURL = strings.TrimRight(url, "/")
		}
	}
}

// WithYouTubeHTTPClient overrides the default HTTP client.
func WithYouTubeHTTPClient(client *http.Client) YouTubeOption {
	return func(p *YouTubeShorts) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewYouTubeShorts constructs the Shorts publisher.
func NewYouTubeShorts(accessToken string, opts ...YouTubeOption) (*YouTubeShorts, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube_shorts", "new publisher",
			"YOUTUBE_UPLOAD_TOKEN required", nil)
	}
	p := &YouTubeShorts{
		accessToken: accessToken,
		uploadURL:   defaultYouTubeUploadURL,
		httpClient:  newHTTPClient(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name implements Publisher.
func (p *YouTubeShorts) Name() string { return "youtube_shorts" }

type youtubeUploadBody struct {
	Snippet struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
		CategoryID  string   `json:"categoryId"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus           string `json:"privacyStatus"`
		SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
	} `json:"status"`
}

// Publish uploads the clip and returns the Shorts URL.
func (p *YouTubeShorts) Publish(ctx context.Context, clip Clip) (Result, error) {
	var empty Result
	if err := checkClipFile(p.Name(), clip); err != nil {
		return empty, err
	}

	var meta youtubeUploadBody
	meta.Snippet.Title = clip.Metadata.Title
	meta.Snippet.Description = clip.Metadata.Description
	meta.Snippet.Tags = limitTags(clip.Metadata.Hashtags, maxYouTubeTags)
	meta.Snippet.CategoryID = youtubeCategoryID
	meta.Status.PrivacyStatus = "public"

	body, contentType, err := buildMultipartUpload(meta, clip.FilePath)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, p.Name(), "publish", "build upload body", err)
	}

	endpoint := p.uploadURL + "?uploadType=multipart&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, p.Name(), "publish", "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", contentType)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, p.Name(), "publish", "upload request failed", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return empty, services.Wrap(services.ErrTransient, p.Name(), "publish", "read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return empty, services.Wrap(services.ErrExternalTool, p.Name(), "publish",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))), nil)
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &uploaded); err != nil {
		return empty, services.Wrap(services.ErrExternalTool, p.Name(), "publish", "decode response", err)
	}
	if uploaded.ID == "" {
		return empty, services.Wrap(services.ErrExternalTool, p.Name(), "publish", "no video id in response", nil)
	}

	return Result{
		Platform:    p.Name(),
		RemoteID:    uploaded.ID,
		URL:         "https://youtube.com/shorts/" + uploaded.ID,
		PublishedAt: time.Now().UTC(),
	}, nil
}

func buildMultipartUpload(meta youtubeUploadBody, filePath string) (io.Reader, string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Type", "application/json; charset=UTF-8")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, "", err
	}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return nil, "", err
	}

	mediaHeader := textproto.MIMEHeader{}
	mediaHeader.Set("Content-Type", "video/mp4")
	mediaPart, err := writer.CreatePart(mediaHeader)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(mediaPart, file); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}

	return &buf, "multipart/related; boundary=" + writer.Boundary(), nil
}

func limitTags(tags []string, max int) []string {
	if len(tags) > max {
		return tags[:max]
	}
	return tags
}
