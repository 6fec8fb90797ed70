package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"clipforge/internal/services"
)

// ErrNoCaptions reports that a video has no caption tracks.
var ErrNoCaptions = services.Wrap(services.ErrNotFound, "youtube", "captions", "no caption tracks available", nil)

// CaptionTrack identifies one caption track on a video.
type CaptionTrack struct {
	ID        string
	Language  string
	TrackKind string
}

// Segment is one timed piece of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the parsed caption content of a video.
type Transcript struct {
	Text     string
	Segments []Segment
}

// MaxTime returns the end timestamp of the last segment.
func (t Transcript) MaxTime() float64 {
	var max float64
	for _, seg := range t.Segments {
		if seg.End > max {
			max = seg.End
		}
	}
	return max
}

// ListCaptions returns the caption tracks available for a video.
func (c *Client) ListCaptions(ctx context.Context, videoID string) ([]CaptionTrack, error) {
	if strings.TrimSpace(videoID) == "" {
		return nil, services.Wrap(services.ErrValidation, "youtube", "list captions", "video id required", nil)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)

	var payload captionsResponse
	if err := c.get(ctx, "captions", params, &payload); err != nil {
		return nil, services.Wrap(services.ErrTransient, "youtube", "list captions", fmt.Sprintf("video %s", videoID), err)
	}

	tracks := make([]CaptionTrack, 0, len(payload.Items))
	for _, item := range payload.Items {
		tracks = append(tracks, CaptionTrack{
			ID:        item.ID,
			Language:  item.Snippet.Language,
			TrackKind: item.Snippet.TrackKind,
		})
	}
	return tracks, nil
}

// DownloadCaption fetches a caption track in SRT format.
func (c *Client) DownloadCaption(ctx context.Context, captionID string) (string, error) {
	if strings.TrimSpace(captionID) == "" {
		return "", services.Wrap(services.ErrValidation, "youtube", "download caption", "caption id required", nil)
	}

	params := url.Values{}
	params.Set("tfmt", "srt")
	params.Set("key", c.apiKey)
	requestURL := c.baseURL + "/captions/" + url.PathEscape(captionID) + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "youtube", "download caption", "build request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "youtube", "download caption", fmt.Sprintf("caption %s", captionID), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "youtube", "download caption", "read body", err)
	}
	if resp.StatusCode == http.StatusForbidden {
		return "", services.Wrap(services.ErrExternalTool, "youtube", "download caption",
			fmt.Sprintf("caption %s download restricted", captionID), nil)
	}
	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrTransient, "youtube", "download caption",
			fmt.Sprintf("caption %s: http %d", captionID, resp.StatusCode), nil)
	}
	return string(body), nil
}

// Transcript downloads and parses the best caption track for a video.
// English manual tracks win over English auto-generated tracks; anything
// else falls back to the first track.
func (c *Client) Transcript(ctx context.Context, videoID string) (Transcript, error) {
	var empty Transcript
	tracks, err := c.ListCaptions(ctx, videoID)
	if err != nil {
		return empty, err
	}
	if len(tracks) == 0 {
		return empty, ErrNoCaptions
	}

	track := selectCaptionTrack(tracks)
	srt, err := c.DownloadCaption(ctx, track.ID)
	if err != nil {
		return empty, err
	}

	transcript := ParseSRT(srt)
	if len(transcript.Segments) == 0 {
		return empty, services.Wrap(services.ErrExternalTool, "youtube", "transcript",
			fmt.Sprintf("caption %s produced no segments", track.ID), nil)
	}
	return transcript, nil
}

func selectCaptionTrack(tracks []CaptionTrack) CaptionTrack {
	var asrFallback *CaptionTrack
	for i, track := range tracks {
		if track.Language != "en" {
			continue
		}
		if track.TrackKind == "asr" {
			if asrFallback == nil {
				asrFallback = &tracks[i]
			}
			continue
		}
		return track
	}
	if asrFallback != nil {
		return *asrFallback
	}
	return tracks[0]
}

var srtTimePattern = regexp.MustCompile(`(\d+):(\d+):(\d+)[,.](\d+)`)

// ParseSRT parses SRT subtitle data into timed segments. Malformed
// entries are skipped.
func ParseSRT(data string) Transcript {
	var transcript Transcript
	var fullText []string

	for _, entry := range strings.Split(strings.TrimSpace(strings.ReplaceAll(data, "\r\n", "\n")), "\n\n") {
		lines := strings.Split(strings.TrimSpace(entry), "\n")
		if len(lines) < 3 {
			continue
		}

		// Line 0 is the entry index, line 1 the timestamps, the rest text.
		startStr, endStr, ok := strings.Cut(lines[1], " --> ")
		if !ok {
			continue
		}
		text := strings.TrimSpace(strings.Join(lines[2:], " "))

		transcript.Segments = append(transcript.Segments, Segment{
			Start: srtTimeToSeconds(startStr),
			End:   srtTimeToSeconds(endStr),
			Text:  text,
		})
		fullText = append(fullText, text)
	}

	transcript.Text = strings.Join(fullText, " ")
	return transcript
}

func srtTimeToSeconds(value string) float64 {
	match := srtTimePattern.FindStringSubmatch(strings.TrimSpace(value))
	if match == nil {
		return 0
	}
	hours, _ := strconv.Atoi(match[1])
	minutes, _ := strconv.Atoi(match[2])
	seconds, _ := strconv.Atoi(match[3])
	millis, _ := strconv.Atoi(match[4])
	return float64(hours)*3600 + float64(minutes)*60 + float64(seconds) + float64(millis)/1000
}

type captionsResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Language  string `json:"language"`
			TrackKind string `json:"trackKind"`
		} `json:"snippet"`
	} `json:"items"`
}
