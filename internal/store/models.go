package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a discovered video.
type Status string

const (
	StatusDiscovered Status = "discovered"
	StatusAnalyzed   Status = "analyzed"
	StatusProcessing Status = "processing"
	StatusClipsReady Status = "clips_ready"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{
	StatusDiscovered,
	StatusAnalyzed,
	StatusProcessing,
	StatusClipsReady,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the video lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusClipsReady || s == StatusFailed
}

// Video represents a discovered source video persisted in SQLite.
type Video struct {
	ID            string
	Title         string
	Channel       string
	Niche         string
	URL           string
	Duration      float64
	Views         int64
	Likes         int64
	Comments      int64
	Status        Status
	ViralityScore float64
	MomentsJSON   string
	ErrorMessage  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetFailed marks the video as failed with the given error message.
func (v *Video) SetFailed(message string) {
	v.Status = StatusFailed
	v.ErrorMessage = message
}

// Clip represents an extracted clip candidate persisted in SQLite.
type Clip struct {
	ID            string
	VideoID       string
	Title         string
	MomentType    string
	Quote         string
	StartSeconds  float64
	EndSeconds    float64
	ViralityScore float64
	FeaturesJSON  string
	FlagsJSON     string
	SEOJSON       string
	FilePath      string
	QAScore       float64
	QAPassed      bool
	Published     bool
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DurationSeconds returns the clip length derived from its boundaries.
func (c Clip) DurationSeconds() float64 {
	return c.EndSeconds - c.StartSeconds
}

// StatusCounts aggregates video counts per lifecycle status.
type StatusCounts struct {
	Total      int
	Discovered int
	Analyzed   int
	Processing int
	ClipsReady int
	Failed     int
}

// ClipCounts aggregates clip totals for status reporting.
type ClipCounts struct {
	Total     int
	Published int
}

// PublishRecord captures one platform publication for the bounded history.
type PublishRecord struct {
	ClipID           string    `json:"clip_id"`
	VideoID          string    `json:"video_id"`
	Platform         string    `json:"platform"`
	Title            string    `json:"title"`
	ViralityScore    float64   `json:"virality_score"`
	EarningScore     float64   `json:"earning_score"`
	EstimatedRevenue float64   `json:"estimated_revenue"`
	Niche            string    `json:"niche"`
	PublishedAt      time.Time `json:"published_at"`
}

// PublishingState is the single durable record tracking everything published.
// DailyCounts is keyed by UTC date (2006-01-02); old days are retained.
type PublishingState struct {
	PublishedVideos   []string        `json:"published_videos"`
	TotalPublished    int             `json:"total_published"`
	LastPublished     *time.Time      `json:"last_published,omitempty"`
	DailyCounts       map[string]int  `json:"daily_count,omitempty"`
	PublishingHistory []PublishRecord `json:"publishing_history"`
}

// maxPublishingHistory bounds the retained history so the state row cannot
// grow without limit.
const maxPublishingHistory = 100

// HasPublishedVideo reports whether a source video already appears in the
// published set.
func (p *PublishingState) HasPublishedVideo(videoID string) bool {
	for _, id := range p.PublishedVideos {
		if id == videoID {
			return true
		}
	}
	return false
}

// RecordPublish folds one publish run into the state. A run that reached
// several platforms passes one record per platform; each record lands in the
// history but the totals and the daily counter advance by one, since the run
// published a single clip.
func (p *PublishingState) RecordPublish(recs ...PublishRecord) {
	if len(recs) == 0 {
		return
	}
	for _, rec := range recs {
		if !p.HasPublishedVideo(rec.VideoID) {
			p.PublishedVideos = append(p.PublishedVideos, rec.VideoID)
		}
		p.PublishingHistory = append(p.PublishingHistory, rec)
	}
	if len(p.PublishingHistory) > maxPublishingHistory {
		p.PublishingHistory = p.PublishingHistory[len(p.PublishingHistory)-maxPublishingHistory:]
	}

	p.TotalPublished++
	last := recs[len(recs)-1]
	at := last.PublishedAt
	p.LastPublished = &at
	if p.DailyCounts == nil {
		p.DailyCounts = make(map[string]int)
	}
	p.DailyCounts[last.PublishedAt.UTC().Format("2006-01-02")]++
}

// DailyPublishCount returns the number of publish runs recorded for the given day.
func (p *PublishingState) DailyPublishCount(now time.Time) int {
	return p.DailyCounts[now.UTC().Format("2006-01-02")]
}
