package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"clipforge/internal/logging"
	"clipforge/internal/scoring"
	"clipforge/internal/services"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

// AnalyzeDiscovered runs phase 1: fetch the transcript for every
// discovered video, find and score viral moments, and persist the
// analysis. Each video fails independently so one bad transcript cannot
// sink the run.
func (o *Orchestrator) AnalyzeDiscovered(ctx context.Context) (AnalysisSummary, error) {
	var summary AnalysisSummary

	videos, err := o.store.ListVideosByStatus(ctx, store.StatusDiscovered)
	if err != nil {
		return summary, fmt.Errorf("list discovered videos: %w", err)
	}
	if len(videos) == 0 {
		o.logger.Info("no discovered videos to analyze")
		return summary, nil
	}
	if limit := o.cfg.Processing.MaxVideosToAnalyze; limit > 0 && len(videos) > limit {
		o.logger.Info("limiting analysis batch",
			logging.Int("discovered", len(videos)),
			logging.Int("limit", limit))
		videos = videos[:limit]
	}
	o.logger.Info("starting analysis phase", logging.Int("videos", len(videos)))

	for _, video := range videos {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		vctx := services.WithPhase(services.WithVideoID(ctx, video.ID), "analysis")
		log := logging.WithContext(vctx, o.logger)
		score, err := o.analyzeVideo(vctx, video)
		if err != nil {
			log.Warn("analysis failed", logging.Error(err))
			if _, markErr := o.store.MarkVideoFailed(ctx, video.ID, err.Error()); markErr != nil {
				log.Error("could not mark video failed", logging.Error(markErr))
			}
			summary.Failures++
			continue
		}

		summary.Analyzed++
		summary.Scores = append(summary.Scores, VideoScore{VideoID: video.ID, Title: video.Title, Score: score})
		if score >= o.cfg.Processing.MinViralityScore {
			summary.AboveThreshold++
		}
		log.Info("analysis complete", logging.Float64("virality", score))
	}

	sort.SliceStable(summary.Scores, func(i, j int) bool {
		return summary.Scores[i].Score > summary.Scores[j].Score
	})

	o.logger.Info("analysis phase complete",
		logging.Int("analyzed", summary.Analyzed),
		logging.Int("above_threshold", summary.AboveThreshold),
		logging.Int("failures", summary.Failures))
	return summary, nil
}

// analyzeVideo scores one video and persists the result. The returned
// score is the mean of the best moments, so one strong moment in a weak
// video still surfaces it.
func (o *Orchestrator) analyzeVideo(ctx context.Context, video *store.Video) (float64, error) {
	transcript, err := o.transcripts.Transcript(ctx, video.ID)
	if err != nil {
		if errors.Is(err, youtube.ErrNoCaptions) {
			return 0, fmt.Errorf("no transcript available (captions may be disabled)")
		}
		return 0, err
	}

	moments, err := o.analyzer.AnalyzeTranscript(ctx, video.Niche, transcript)
	if err != nil {
		return 0, err
	}
	if len(moments) == 0 {
		return 0, fmt.Errorf("no viral moments detected")
	}

	scored := o.scorer.ScoreAll(moments)
	best := scoring.SelectBest(scored, o.cfg.Processing.MaxClipsPerVideo, 0)
	overall := meanViralityScore(best)

	momentsJSON, err := json.Marshal(scored)
	if err != nil {
		return 0, fmt.Errorf("encode moments: %w", err)
	}

	updated, err := o.store.SetVideoAnalysis(ctx, video.ID, overall, string(momentsJSON))
	if err != nil {
		return 0, fmt.Errorf("persist analysis: %w", err)
	}
	if !updated {
		return 0, fmt.Errorf("video left discovered state during analysis")
	}

	if o.notifier != nil {
		if err := o.notifier.NotifyAnalysisCompleted(ctx, video.ID, len(scored), overall); err != nil {
			o.logger.Warn("analysis notification failed", logging.Error(err))
		}
	}
	return overall, nil
}

func meanViralityScore(moments []scoring.Moment) float64 {
	if len(moments) == 0 {
		return 0
	}
	var total float64
	for _, moment := range moments {
		total += moment.ViralityScore
	}
	return total / float64(len(moments))
}
