package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/pipeline"
)

const timeRounding = 100 * time.Millisecond

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Analyze discovered videos for viral moments",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			orch, err := ctx.newOrchestrator(st, logger)
			if err != nil {
				return err
			}

			summary, err := orch.AnalyzeDiscovered(cmd.Context())
			if err != nil {
				return err
			}
			printAnalysisSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Create clips from analyzed videos above the virality threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			orch, err := ctx.newOrchestrator(st, logger)
			if err != nil {
				return err
			}

			summary, err := orch.CreateClips(cmd.Context())
			if err != nil {
				return err
			}
			printCreationSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: analysis then clip creation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withLock(func() error {
				st, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer st.Close()

				logger, err := ctx.buildLogger()
				if err != nil {
					return err
				}
				orch, err := ctx.newOrchestrator(st, logger)
				if err != nil {
					return err
				}

				summary, err := orch.Run(cmd.Context())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				printAnalysisSummary(out, summary.Analysis)
				if summary.Creation != nil {
					printCreationSummary(out, *summary.Creation)
				} else {
					fmt.Fprintln(out, "No videos above the virality threshold; clip creation skipped")
				}
				fmt.Fprintf(out, "Pipeline finished in %s\n", summary.Duration.Round(timeRounding))
				return nil
			})
		},
	}
}

func printAnalysisSummary(out io.Writer, summary pipeline.AnalysisSummary) {
	fmt.Fprintf(out, "Analyzed %d videos (%d above threshold, %d failed)\n",
		summary.Analyzed, summary.AboveThreshold, summary.Failures)
	if len(summary.Scores) == 0 {
		return
	}
	rows := make([][]string, 0, len(summary.Scores))
	for _, score := range summary.Scores {
		rows = append(rows, []string{score.VideoID, score.Title, fmt.Sprintf("%.1f", score.Score)})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{textColumn("Video"), textColumn("Title"), scoreColumn("Virality")},
		rows,
	))
}

func printCreationSummary(out io.Writer, summary pipeline.CreationSummary) {
	fmt.Fprintf(out, "Created %d clips from %d videos (%d failed)\n",
		summary.ClipsCreated, summary.VideosProcessed, summary.Failures)
}
