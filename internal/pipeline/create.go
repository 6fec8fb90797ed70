package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"clipforge/internal/logging"
	"clipforge/internal/qa"
	"clipforge/internal/scoring"
	"clipforge/internal/seo"
	"clipforge/internal/services"
	"clipforge/internal/store"
)

// CreateClips runs phase 2: download each analyzed video that cleared
// the virality threshold, cut its best moments into clips, QA them, and
// persist the results. Videos are processed best-first.
func (o *Orchestrator) CreateClips(ctx context.Context) (CreationSummary, error) {
	var summary CreationSummary

	videos, err := o.store.ListVideosByStatus(ctx, store.StatusAnalyzed)
	if err != nil {
		return summary, fmt.Errorf("list analyzed videos: %w", err)
	}

	candidates := make([]*store.Video, 0, len(videos))
	for _, video := range videos {
		if video.ViralityScore >= o.cfg.Processing.MinViralityScore {
			candidates = append(candidates, video)
		}
	}
	if len(candidates) == 0 {
		o.logger.Info("no analyzed videos above threshold to process",
			logging.Float64("threshold", o.cfg.Processing.MinViralityScore))
		return summary, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ViralityScore > candidates[j].ViralityScore
	})
	if limit := o.cfg.Processing.MaxVideosToProcess; limit > 0 && len(candidates) > limit {
		o.logger.Info("limiting creation batch",
			logging.Int("eligible", len(candidates)),
			logging.Int("limit", limit))
		candidates = candidates[:limit]
	}
	o.logger.Info("starting creation phase", logging.Int("videos", len(candidates)))

	for _, video := range candidates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		vctx := services.WithPhase(services.WithVideoID(ctx, video.ID), "creation")
		log := logging.WithContext(vctx, o.logger)
		clips, err := o.createClipsForVideo(vctx, video)
		if err != nil {
			log.Warn("clip creation failed", logging.Error(err))
			if _, markErr := o.store.MarkVideoFailed(ctx, video.ID, err.Error()); markErr != nil {
				log.Error("could not mark video failed", logging.Error(markErr))
			}
			summary.Failures++
			continue
		}

		summary.VideosProcessed++
		summary.ClipsCreated += clips
		log.Info("clips ready", logging.Int("clips", clips))
	}

	o.logger.Info("creation phase complete",
		logging.Int("processed", summary.VideosProcessed),
		logging.Int("clips", summary.ClipsCreated),
		logging.Int("failures", summary.Failures))
	return summary, nil
}

func (o *Orchestrator) createClipsForVideo(ctx context.Context, video *store.Video) (int, error) {
	claimed, err := o.store.TransitionVideo(ctx, video.ID, store.StatusAnalyzed, store.StatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("claim video: %w", err)
	}
	if !claimed {
		return 0, fmt.Errorf("video left analyzed state before processing")
	}

	var moments []scoring.Moment
	if err := json.Unmarshal([]byte(video.MomentsJSON), &moments); err != nil {
		return 0, fmt.Errorf("decode stored moments: %w", err)
	}
	best := scoring.SelectBest(moments, o.cfg.Processing.MaxClipsPerVideo, o.cfg.Processing.MinViralityScore)
	if len(best) == 0 {
		return 0, fmt.Errorf("no moments above clip threshold")
	}

	sourcePath, err := o.renderer.Download(ctx, video.ID)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cleanupErr := o.renderer.Cleanup(sourcePath); cleanupErr != nil {
			o.logger.Warn("source cleanup failed", logging.Error(cleanupErr))
		}
	}()

	platform := o.defaultPlatform()
	created := 0
	for _, moment := range best {
		clip, err := o.renderClip(ctx, video, moment, sourcePath, platform)
		if err != nil {
			o.logger.Warn("moment skipped",
				logging.String(logging.FieldVideoID, video.ID),
				logging.Error(err))
			continue
		}
		if err := o.store.InsertClip(ctx, clip); err != nil {
			return created, fmt.Errorf("persist clip: %w", err)
		}
		created++
	}
	if created == 0 {
		return 0, fmt.Errorf("all moments failed during extraction")
	}

	ready, err := o.store.TransitionVideo(ctx, video.ID, store.StatusProcessing, store.StatusClipsReady)
	if err != nil {
		return created, fmt.Errorf("finish video: %w", err)
	}
	if !ready {
		return created, fmt.Errorf("video left processing state unexpectedly")
	}

	if o.notifier != nil {
		if err := o.notifier.NotifyClipsReady(ctx, video.ID, created); err != nil {
			o.logger.Warn("clips ready notification failed", logging.Error(err))
		}
	}
	return created, nil
}

// renderClip cuts one moment, reframes it for the default platform, runs
// QA, and assembles the clip row with per-platform SEO metadata.
func (o *Orchestrator) renderClip(ctx context.Context, video *store.Video, moment scoring.Moment, sourcePath, platform string) (*store.Clip, error) {
	rawPath, err := o.renderer.ExtractClip(ctx, sourcePath, moment.Start, moment.End)
	if err != nil {
		return nil, err
	}
	finalPath, err := o.renderer.RenderVertical(ctx, rawPath, platform)
	if err != nil {
		return nil, err
	}
	if cleanupErr := o.renderer.Cleanup(rawPath); cleanupErr != nil {
		o.logger.Warn("intermediate cleanup failed", logging.Error(cleanupErr))
	}

	report := o.checker.Check(qa.ClipInput{
		Quote:    moment.Quote,
		Duration: moment.End - moment.Start,
		Platform: platform,
	})

	seoByPlatform := make(map[string]seo.Metadata, len(o.cfg.Publishing.Platforms))
	input := seo.Input{Quote: moment.Quote, MomentType: moment.Type}
	for _, target := range o.cfg.Publishing.Platforms {
		seoByPlatform[target] = o.seo.Metadata(input, video.Niche, target)
	}
	seoJSON, err := json.Marshal(seoByPlatform)
	if err != nil {
		return nil, fmt.Errorf("encode seo metadata: %w", err)
	}
	featuresJSON, err := json.Marshal(moment.Features)
	if err != nil {
		return nil, fmt.Errorf("encode features: %w", err)
	}
	flagsJSON, err := json.Marshal(safetyFlagsFromReport(report))
	if err != nil {
		return nil, fmt.Errorf("encode safety flags: %w", err)
	}

	title := moment.Quote
	if meta, ok := seoByPlatform[platform]; ok {
		title = meta.Title
	}

	return &store.Clip{
		ID:            uuid.NewString(),
		VideoID:       video.ID,
		Title:         title,
		MomentType:    moment.Type,
		Quote:         moment.Quote,
		StartSeconds:  moment.Start,
		EndSeconds:    moment.End,
		ViralityScore: moment.ViralityScore,
		FeaturesJSON:  string(featuresJSON),
		FlagsJSON:     string(flagsJSON),
		SEOJSON:       string(seoJSON),
		FilePath:      finalPath,
		QAScore:       report.OverallScore,
		QAPassed:      report.Passed,
	}, nil
}

func (o *Orchestrator) defaultPlatform() string {
	if len(o.cfg.Publishing.Platforms) > 0 {
		return o.cfg.Publishing.Platforms[0]
	}
	return "youtube_shorts"
}

// safetyFlagsFromReport projects QA findings onto the safety flag names
// the earning estimator understands.
func safetyFlagsFromReport(report qa.Report) map[string]bool {
	flags := make(map[string]bool)
	for _, issue := range report.Warnings {
		if issue.Type == "profanity" {
			flags["profanity"] = true
		}
	}
	for _, issue := range report.Issues {
		switch issue.Type {
		case "profanity":
			flags["profanity"] = true
		case "copyright":
			flags["copyright"] = true
		}
	}
	return flags
}
