// Package publisher selects the most promising ready clip and uploads
// it to every configured platform. Selection is earnings-driven: clips
// are filtered by virality, safety, and QA, then ranked by final
// earning score, and only the single best clip is published per run.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/earnings"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/seo"
	"clipforge/internal/services"
	"clipforge/internal/services/platforms"
	"clipforge/internal/store"
)

// Candidate pairs a ready clip with its earning analysis.
type Candidate struct {
	Clip     *store.Clip
	Estimate earnings.Estimate
}

// Outcome reports one publish run. Skipped is set with a human-readable
// reason when no upload was attempted.
type Outcome struct {
	Selected  *store.Clip
	Estimate  *earnings.Estimate
	Published []platforms.Result
	// Errors maps platform name to the failure message for platforms
	// that rejected the upload.
	Errors  map[string]string
	Skipped string
}

// Options bundles the publisher collaborators. Publishers may be nil,
// in which case they are built from the configured platform list using
// credentials from the environment.
type Options struct {
	Config     *config.Config
	Store      *store.Store
	Publishers []platforms.Publisher
	Notifier   notifications.Service
	Logger     *slog.Logger
}

// Service publishes clips.
type Service struct {
	cfg        *config.Config
	store      *store.Store
	publishers []platforms.Publisher
	calc       *earnings.Calculator
	seo        *seo.Generator
	notifier   notifications.Service
	logger     *slog.Logger
}

// NewService constructs a Service. When no publishers are supplied the
// configured platforms are instantiated from environment credentials,
// so a missing token surfaces here rather than mid-publish.
func NewService(opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pubs := opts.Publishers
	if pubs == nil {
		creds := platforms.CredentialsFromEnv()
		for _, name := range opts.Config.Publishing.Platforms {
			pub, err := platforms.ForPlatform(name, creds)
			if err != nil {
				return nil, fmt.Errorf("platform %s: %w", name, err)
			}
			pubs = append(pubs, pub)
		}
	}
	return &Service{
		cfg:        opts.Config,
		store:      opts.Store,
		publishers: pubs,
		calc:       earnings.NewCalculator(),
		seo:        seo.NewGenerator(nil),
		notifier:   opts.Notifier,
		logger:     logging.NewComponentLogger(logger, "publisher"),
	}, nil
}

// Candidates returns the ready clips that pass the publish filters,
// ordered by descending final earning score. The slice may be empty.
func (s *Service) Candidates(ctx context.Context) ([]Candidate, error) {
	clips, err := s.store.ListUnpublishedClips(ctx)
	if err != nil {
		return nil, fmt.Errorf("list unpublished clips: %w", err)
	}
	state, _, err := s.store.LoadPublishingState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load publishing state: %w", err)
	}

	byID := make(map[string]*store.Clip, len(clips))
	niches := make(map[string]string)
	data := make([]earnings.ClipData, 0, len(clips))
	for _, clip := range clips {
		if !clip.QAPassed {
			continue
		}
		if state.HasPublishedVideo(clip.VideoID) {
			continue
		}
		if _, err := os.Stat(clip.FilePath); err != nil {
			s.logger.Warn("clip artifact missing, skipping",
				logging.String(logging.FieldClipID, clip.ID),
				logging.String("path", clip.FilePath))
			continue
		}
		niche, ok := niches[clip.VideoID]
		if !ok {
			video, err := s.store.GetVideo(ctx, clip.VideoID)
			if err != nil {
				s.logger.Warn("source video missing, skipping clip",
					logging.String(logging.FieldClipID, clip.ID),
					logging.Error(err))
				continue
			}
			niche = video.Niche
			niches[clip.VideoID] = niche
		}
		byID[clip.ID] = clip
		data = append(data, clipData(clip, niche))
	}

	eligible := s.calc.Filter(data,
		s.cfg.Publishing.MinViralityScore,
		s.cfg.Publishing.MinSafetyScore,
		true)

	candidates := make([]Candidate, 0, len(eligible))
	for _, ranked := range s.calc.Rank(eligible) {
		candidates = append(candidates, Candidate{
			Clip:     byID[ranked.Clip.ClipID],
			Estimate: ranked.Estimate,
		})
	}
	return candidates, nil
}

// PublishBest uploads the highest-earning eligible clip to every
// configured platform. A platform failure does not abort the remaining
// platforms; the clip counts as published when at least one upload
// succeeded. The error is non-nil only when every platform rejected
// the clip or the run could not proceed at all.
func (s *Service) PublishBest(ctx context.Context) (Outcome, error) {
	state, _, err := s.store.LoadPublishingState(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("load publishing state: %w", err)
	}
	if limit := s.cfg.Publishing.MaxDailyPublishes; limit > 0 && state.DailyPublishCount(time.Now()) >= limit {
		s.logger.Info("daily publish limit reached", logging.Int("limit", limit))
		return Outcome{Skipped: "daily publish limit reached"}, nil
	}

	candidates, err := s.Candidates(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if len(candidates) == 0 {
		s.logger.Info("no clips eligible for publishing")
		return Outcome{Skipped: "no clips eligible for publishing"}, nil
	}

	best := candidates[0]
	clip := best.Clip
	ctx = services.WithClipID(ctx, clip.ID)
	log := logging.WithContext(ctx, s.logger)
	log.Info("selected clip for publishing",
		logging.Float64("earning_score", best.Estimate.FinalEarningScore),
		logging.String("revenue_range", best.Estimate.RevenueRange))

	outcome := Outcome{
		Selected: clip,
		Estimate: &best.Estimate,
		Errors:   make(map[string]string),
	}
	seoByPlatform := decodeSEO(clip.SEOJSON)
	delay := time.Duration(s.cfg.Publishing.DelaySeconds) * time.Second

	for i, pub := range s.publishers {
		name := pub.Name()
		result, err := pub.Publish(ctx, platforms.Clip{
			FilePath: clip.FilePath,
			Metadata: s.metadataFor(clip, seoByPlatform, name),
		})
		if err != nil {
			outcome.Errors[name] = err.Error()
			log.Error("platform upload failed",
				logging.String("platform", name),
				logging.Error(err))
			continue
		}
		outcome.Published = append(outcome.Published, result)
		log.Info("clip published",
			logging.String("platform", name),
			logging.String("url", result.URL))
		if s.notifier != nil {
			if err := s.notifier.NotifyPublishCompleted(ctx, clip.ID, name, result.URL); err != nil {
				log.Warn("publish notification failed", logging.Error(err))
			}
		}
		// Stagger uploads so the platforms do not see a burst, but never
		// sleep after the final one.
		if delay > 0 && i < len(s.publishers)-1 {
			if err := wait(ctx, delay); err != nil {
				return outcome, err
			}
		}
	}

	if len(outcome.Published) == 0 {
		err := fmt.Errorf("all %d platforms rejected clip %s", len(s.publishers), clip.ID)
		if s.notifier != nil {
			if notifyErr := s.notifier.NotifyError(ctx, err, "publishing"); notifyErr != nil {
				log.Warn("error notification failed", logging.Error(notifyErr))
			}
		}
		return outcome, err
	}

	if err := s.recordPublished(ctx, clip, best.Estimate, outcome.Published); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// recordPublished persists the publication: the clip row flips to
// published and the durable publishing state absorbs the run in one
// update, one history record per successful platform with the earning
// analysis attached.
func (s *Service) recordPublished(ctx context.Context, clip *store.Clip, est earnings.Estimate, results []platforms.Result) error {
	now := time.Now().UTC()
	if err := s.store.MarkClipPublished(ctx, clip.ID, now); err != nil {
		return fmt.Errorf("mark clip published: %w", err)
	}
	records := make([]store.PublishRecord, 0, len(results))
	for _, result := range results {
		records = append(records, store.PublishRecord{
			ClipID:           clip.ID,
			VideoID:          clip.VideoID,
			Platform:         result.Platform,
			Title:            clip.Title,
			ViralityScore:    clip.ViralityScore,
			EarningScore:     est.FinalEarningScore,
			EstimatedRevenue: est.EstimatedRevenue,
			Niche:            est.Niche,
			PublishedAt:      result.PublishedAt,
		})
	}
	_, err := s.store.UpdatePublishingState(ctx, func(state *store.PublishingState) {
		state.RecordPublish(records...)
	})
	if err != nil {
		return fmt.Errorf("update publishing state: %w", err)
	}
	return nil
}

// metadataFor resolves the platform metadata stored with the clip,
// regenerating it when the clip predates the platform configuration.
func (s *Service) metadataFor(clip *store.Clip, stored map[string]seo.Metadata, platform string) seo.Metadata {
	if meta, ok := stored[platform]; ok && meta.Title != "" {
		return meta
	}
	return s.seo.Metadata(seo.Input{Quote: clip.Quote, MomentType: clip.MomentType}, "", platform)
}

func decodeSEO(raw string) map[string]seo.Metadata {
	out := make(map[string]seo.Metadata)
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &out)
	}
	return out
}

func decodeFloats(raw string) map[string]float64 {
	if raw == "" {
		return nil
	}
	var out map[string]float64
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func decodeBools(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	var out map[string]bool
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func clipData(clip *store.Clip, niche string) earnings.ClipData {
	return earnings.ClipData{
		ClipID:        clip.ID,
		VideoID:       clip.VideoID,
		Niche:         niche,
		MomentType:    clip.MomentType,
		ViralityScore: clip.ViralityScore,
		Engagement:    decodeFloats(clip.FeaturesJSON),
		SafetyFlags:   decodeBools(clip.FlagsJSON),
		Published:     clip.Published,
	}
}

func wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
