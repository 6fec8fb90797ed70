package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
	"clipforge/internal/testsupport"
)

type fakeSearcher struct {
	hits      map[string][]youtube.SearchResult
	stats     map[string]youtube.Statistics
	searchErr map[string]error
}

func (f *fakeSearcher) Search(_ context.Context, query string, _ int, _ time.Time) ([]youtube.SearchResult, error) {
	if err := f.searchErr[query]; err != nil {
		return nil, err
	}
	return f.hits[query], nil
}

func (f *fakeSearcher) VideoDetails(_ context.Context, videoID string) (youtube.Statistics, error) {
	stats, ok := f.stats[videoID]
	if !ok {
		return youtube.Statistics{}, errors.New("no details")
	}
	return stats, nil
}

func TestRunFiltersAndInserts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Niches = []string{"fortnite"}
	cfg.Discovery.MinViews = 10000
	st := testsupport.MustOpenStore(t, cfg)

	client := &fakeSearcher{
		hits: map[string][]youtube.SearchResult{
			"fortnite": {
				{VideoID: "popular", Title: "Big Play", Channel: "Pro"},
				{VideoID: "obscure", Title: "Small Play", Channel: "Noob"},
				{VideoID: "broken", Title: "No Details"},
			},
		},
		stats: map[string]youtube.Statistics{
			"popular": {ViewCount: 152000, LikeCount: 9001, Duration: 725},
			"obscure": {ViewCount: 500},
		},
	}

	svc := NewService(cfg, st, client, nil, nil)
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Discovered) != 1 || result.Discovered[0] != "popular" {
		t.Fatalf("expected only popular discovered, got %v", result.Discovered)
	}
	if result.PerNiche["fortnite"] != 1 {
		t.Fatalf("unexpected niche count: %v", result.PerNiche)
	}

	video, err := st.GetVideo(context.Background(), "popular")
	if err != nil {
		t.Fatalf("video not persisted: %v", err)
	}
	if video.Status != store.StatusDiscovered || video.Views != 152000 {
		t.Fatalf("unexpected video: %+v", video)
	}
	if video.URL != "https://www.youtube.com/watch?v=popular" {
		t.Fatalf("unexpected url %q", video.URL)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Niches = []string{"fortnite"}
	cfg.Discovery.MinViews = 100
	st := testsupport.MustOpenStore(t, cfg)

	client := &fakeSearcher{
		hits: map[string][]youtube.SearchResult{
			"fortnite": {{VideoID: "abc", Title: "Play"}},
		},
		stats: map[string]youtube.Statistics{"abc": {ViewCount: 5000}},
	}

	svc := NewService(cfg, st, client, nil, nil)
	first, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Discovered) != 1 {
		t.Fatalf("expected 1 discovered, got %v", first.Discovered)
	}

	second, err := svc.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Discovered) != 0 || second.Skipped != 1 {
		t.Fatalf("expected rerun to skip known video, got %+v", second)
	}
}

func TestRunSurvivesNicheFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Discovery.Niches = []string{"valorant", "fortnite"}
	cfg.Discovery.MinViews = 100
	st := testsupport.MustOpenStore(t, cfg)

	client := &fakeSearcher{
		hits: map[string][]youtube.SearchResult{
			"fortnite": {{VideoID: "ok", Title: "Play"}},
		},
		stats:     map[string]youtube.Statistics{"ok": {ViewCount: 5000}},
		searchErr: map[string]error{"valorant": errors.New("quota exceeded")},
	}

	svc := NewService(cfg, st, client, nil, nil)
	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("expected run to continue past niche failure, got %v", err)
	}
	if len(result.Discovered) != 1 {
		t.Fatalf("expected fortnite video discovered, got %v", result.Discovered)
	}
}
