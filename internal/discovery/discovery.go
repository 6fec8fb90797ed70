// Package discovery finds trending videos per configured niche and
// records new candidates in the store.
package discovery

import (
	"context"
	"log/slog"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

// Searcher is the YouTube surface discovery needs.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int, publishedAfter time.Time) ([]youtube.SearchResult, error)
	VideoDetails(ctx context.Context, videoID string) (youtube.Statistics, error)
}

// Result summarizes one discovery run.
type Result struct {
	// Discovered holds the IDs of videos inserted this run.
	Discovered []string
	PerNiche   map[string]int
	// Skipped counts videos rejected by the view threshold or already known.
	Skipped int
}

// Service runs niche searches and persists new candidates.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	client   Searcher
	notifier notifications.Service
	logger   *slog.Logger
}

// NewService constructs a discovery Service.
func NewService(cfg *config.Config, st *store.Store, client Searcher, notifier notifications.Service, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:      cfg,
		store:    st,
		client:   client,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "discovery"),
	}
}

// Run searches every configured niche, filters by minimum views, and
// inserts unseen videos. Per-niche failures are logged and skipped so one
// bad search cannot sink the whole run.
func (s *Service) Run(ctx context.Context) (Result, error) {
	result := Result{PerNiche: make(map[string]int, len(s.cfg.Discovery.Niches))}
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Discovery.PublishedWithin)

	for _, niche := range s.cfg.Discovery.Niches {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		log := s.logger.With(logging.String(logging.FieldNiche, niche))
		log.Info("searching niche")

		hits, err := s.client.Search(ctx, niche, s.cfg.Discovery.ResultsPerNiche, cutoff)
		if err != nil {
			log.Error("niche search failed", logging.Error(err))
			continue
		}

		for _, hit := range hits {
			inserted, err := s.evaluate(ctx, niche, hit)
			if err != nil {
				log.Warn("skipping candidate",
					logging.String(logging.FieldVideoID, hit.VideoID),
					logging.Error(err))
				continue
			}
			if inserted {
				result.Discovered = append(result.Discovered, hit.VideoID)
				result.PerNiche[niche]++
			} else {
				result.Skipped++
			}
		}
		log.Info("niche search complete", logging.Int("discovered", result.PerNiche[niche]))
	}

	s.logger.Info("discovery complete",
		logging.Int("discovered", len(result.Discovered)),
		logging.Int("skipped", result.Skipped))

	if s.notifier != nil && len(result.Discovered) > 0 {
		if err := s.notifier.NotifyDiscoveryCompleted(ctx, s.cfg.Discovery.Niches, len(result.Discovered)); err != nil {
			s.logger.Warn("discovery notification failed", logging.Error(err))
		}
	}
	return result, nil
}

// evaluate fetches details for one hit and inserts it when it clears the
// view threshold. Returns false without error for below-threshold or
// already-known videos.
func (s *Service) evaluate(ctx context.Context, niche string, hit youtube.SearchResult) (bool, error) {
	stats, err := s.client.VideoDetails(ctx, hit.VideoID)
	if err != nil {
		return false, err
	}
	if stats.ViewCount < s.cfg.Discovery.MinViews {
		return false, nil
	}

	video := &store.Video{
		ID:       hit.VideoID,
		Title:    hit.Title,
		Channel:  hit.Channel,
		Niche:    niche,
		URL:      "https://www.youtube.com/watch?v=" + hit.VideoID,
		Duration: stats.Duration,
		Views:    stats.ViewCount,
		Likes:    stats.LikeCount,
		Comments: stats.CommentCount,
		Status:   store.StatusDiscovered,
	}
	return s.store.InsertVideo(ctx, video)
}
