// Package youtube wraps the YouTube Data API v3 endpoints the pipeline
// needs: search, video details, and caption transcripts.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"clipforge/internal/services"
)

const (
	defaultBaseURL     = "https://www.googleapis.com/youtube/v3"
	defaultHTTPTimeout = 30 * time.Second
	searchOrder        = "viewCount"
	searchRegion       = "US"
	searchLanguage     = "en"
)

// Client wraps the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the YouTube client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient constructs a YouTube Data API client.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "youtube", "new client", "api key required", nil)
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// SearchResult is a single hit from a video search.
type SearchResult struct {
	VideoID     string
	Title       string
	Channel     string
	PublishedAt time.Time
}

// Statistics holds the view metrics and duration of a video.
type Statistics struct {
	ViewCount    int64
	LikeCount    int64
	CommentCount int64
	// Duration is the video length in seconds.
	Duration float64
}

// Search returns up to maxResults videos matching the query, most viewed
// first, published after the given cutoff.
func (c *Client) Search(ctx context.Context, query string, maxResults int, publishedAfter time.Time) ([]SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "search", "query required", nil)
	}
	if maxResults <= 0 {
		maxResults = 50
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", query)
	params.Set("type", "video")
	params.Set("order", searchOrder)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("regionCode", searchRegion)
	params.Set("relevanceLanguage", searchLanguage)
	if !publishedAfter.IsZero() {
		params.Set("publishedAfter", publishedAfter.UTC().Format(time.RFC3339))
	}

	var payload searchResponse
	if err := c.get(ctx, "search", params, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "youtube", "search", fmt.Sprintf("query %q", query), err)
	}

	results := make([]SearchResult, 0, len(payload.Items))
	for _, item := range payload.Items {
		if item.ID.VideoID == "" {
			continue
		}
		publishedAt, _ := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		results = append(results, SearchResult{
			VideoID:     item.ID.VideoID,
			Title:       item.Snippet.Title,
			Channel:     item.Snippet.ChannelTitle,
			PublishedAt: publishedAt,
		})
	}
	return results, nil
}

// VideoDetails fetches statistics and duration for one video.
func (c *Client) VideoDetails(ctx context.Context, videoID string) (Statistics, error) {
	var empty Statistics
	if strings.TrimSpace(videoID) == "" {
		return empty, services.Wrap(services.ErrValidation, "youtube", "video details", "video id required", nil)
	}

	params := url.Values{}
	params.Set("part", "statistics,contentDetails")
	params.Set("id", videoID)

	var payload videosResponse
	if err := c.get(ctx, "videos", params, &payload); err != nil {
		return empty, services.Wrap(services.ErrTransient, "youtube", "video details", fmt.Sprintf("video %s", videoID), err)
	}
	if len(payload.Items) == 0 {
		return empty, services.Wrap(services.ErrNotFound, "youtube", "video details", fmt.Sprintf("video %s not found", videoID), nil)
	}

	item := payload.Items[0]
	duration, err := ParseISO8601Duration(item.ContentDetails.Duration)
	if err != nil {
		return empty, services.Wrap(services.ErrExternalTool, "youtube", "video details", fmt.Sprintf("video %s duration", videoID), err)
	}
	return Statistics{
		ViewCount:    parseCount(item.Statistics.ViewCount),
		LikeCount:    parseCount(item.Statistics.LikeCount),
		CommentCount: parseCount(item.Statistics.CommentCount),
		Duration:     duration,
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	params.Set("key", c.apiKey)
	requestURL := c.baseURL + "/" + endpoint + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// ParseISO8601Duration converts a YouTube duration like "PT5M30S" to seconds.
func ParseISO8601Duration(value string) (float64, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "PT")
	if trimmed == value {
		return 0, fmt.Errorf("invalid duration %q", value)
	}

	var total float64
	for _, part := range []struct {
		suffix  string
		seconds float64
	}{
		{"H", 3600},
		{"M", 60},
		{"S", 1},
	} {
		idx := strings.Index(trimmed, part.suffix)
		if idx < 0 {
			continue
		}
		amount, err := strconv.ParseFloat(trimmed[:idx], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", value, err)
		}
		total += amount * part.seconds
		trimmed = trimmed[idx+1:]
	}
	return total, nil
}

func parseCount(value string) int64 {
	count, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return count
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
		} `json:"snippet"`
	} `json:"items"`
}

type videosResponse struct {
	Items []struct {
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// HealthCheck reports readiness. The API key is validated at
// construction, so a constructed client is ready.
func (c *Client) HealthCheck() services.Health {
	return services.Healthy("youtube_api")
}
