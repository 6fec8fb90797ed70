// Package pipeline orchestrates the two-phase video flow: transcript
// analysis for every discovered video, then clip creation for the videos
// that cleared the virality threshold.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/notifications"
	"clipforge/internal/qa"
	"clipforge/internal/scoring"
	"clipforge/internal/seo"
	"clipforge/internal/services/youtube"
	"clipforge/internal/store"
)

// TranscriptProvider fetches caption transcripts.
type TranscriptProvider interface {
	Transcript(ctx context.Context, videoID string) (youtube.Transcript, error)
}

// Analyzer finds viral moments in a transcript.
type Analyzer interface {
	AnalyzeTranscript(ctx context.Context, niche string, transcript youtube.Transcript) ([]scoring.Moment, error)
}

// Renderer downloads sources and produces clip files.
type Renderer interface {
	Download(ctx context.Context, videoID string) (string, error)
	ExtractClip(ctx context.Context, sourcePath string, start, end float64) (string, error)
	RenderVertical(ctx context.Context, inputPath, platform string) (string, error)
	Cleanup(path string) error
}

// VideoScore pairs a video with its overall virality for run summaries.
type VideoScore struct {
	VideoID string
	Title   string
	Score   float64
}

// AnalysisSummary reports one phase-1 run.
type AnalysisSummary struct {
	Analyzed       int
	AboveThreshold int
	Failures       int
	// Scores is ordered by descending virality.
	Scores []VideoScore
}

// CreationSummary reports one phase-2 run.
type CreationSummary struct {
	VideosProcessed int
	ClipsCreated    int
	Failures        int
}

// RunSummary reports a full pipeline run. Creation is nil when no video
// cleared the threshold and phase 2 was skipped.
type RunSummary struct {
	Analysis AnalysisSummary
	Creation *CreationSummary
	Duration time.Duration
}

// Orchestrator drives both pipeline phases against the store.
type Orchestrator struct {
	cfg         *config.Config
	store       *store.Store
	transcripts TranscriptProvider
	analyzer    Analyzer
	renderer    Renderer
	scorer      *scoring.Scorer
	checker     *qa.Checker
	seo         *seo.Generator
	notifier    notifications.Service
	logger      *slog.Logger
}

// Options bundles the orchestrator collaborators.
type Options struct {
	Config      *config.Config
	Store       *store.Store
	Transcripts TranscriptProvider
	Analyzer    Analyzer
	Renderer    Renderer
	Notifier    notifications.Service
	Logger      *slog.Logger
}

// New constructs an Orchestrator.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:         opts.Config,
		store:       opts.Store,
		transcripts: opts.Transcripts,
		analyzer:    opts.Analyzer,
		renderer:    opts.Renderer,
		scorer:      scoring.NewDefaultScorer(),
		checker:     qa.NewChecker(qa.Strictness(opts.Config.Processing.QAStrictness)),
		seo:         seo.NewGenerator(nil),
		notifier:    opts.Notifier,
		logger:      logging.NewComponentLogger(logger, "pipeline"),
	}
}

// Run executes analysis and, when any video clears the virality
// threshold, clip creation. The summary is returned even when a phase
// reports failures.
func (o *Orchestrator) Run(ctx context.Context) (RunSummary, error) {
	started := time.Now()

	analysis, err := o.AnalyzeDiscovered(ctx)
	if err != nil {
		return RunSummary{Analysis: analysis, Duration: time.Since(started)}, err
	}

	summary := RunSummary{Analysis: analysis}
	if analysis.AboveThreshold > 0 {
		creation, err := o.CreateClips(ctx)
		if err != nil {
			summary.Duration = time.Since(started)
			return summary, err
		}
		summary.Creation = &creation
	} else {
		o.logger.Info("no videos above virality threshold, skipping clip creation",
			logging.Float64("threshold", o.cfg.Processing.MinViralityScore))
	}
	summary.Duration = time.Since(started)

	if o.notifier != nil {
		processed := analysis.Analyzed
		failed := analysis.Failures
		if summary.Creation != nil {
			processed += summary.Creation.VideosProcessed
			failed += summary.Creation.Failures
		}
		if err := o.notifier.NotifyPipelineCompleted(ctx, processed, failed, summary.Duration); err != nil {
			o.logger.Warn("pipeline notification failed", logging.Error(err))
		}
	}
	return summary, nil
}
