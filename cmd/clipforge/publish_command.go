package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/publisher"
	"clipforge/internal/services/platforms"
)

func newPublishCommand(ctx *commandContext) *cobra.Command {
	var listOnly bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish the highest-earning ready clip to the configured platforms",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger, err := ctx.buildLogger()
			if err != nil {
				return err
			}
			notifier, err := ctx.notifier()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if listOnly {
				// Candidate listing needs no platform credentials.
				svc, err := publisher.NewService(publisher.Options{
					Config: cfg, Store: st, Publishers: []platforms.Publisher{}, Notifier: notifier, Logger: logger,
				})
				if err != nil {
					return err
				}
				candidates, err := svc.Candidates(cmd.Context())
				if err != nil {
					return err
				}
				printCandidates(cmd, candidates)
				return nil
			}

			svc, err := publisher.NewService(publisher.Options{
				Config: cfg, Store: st, Notifier: notifier, Logger: logger,
			})
			if err != nil {
				return err
			}

			outcome, err := svc.PublishBest(cmd.Context())
			if err != nil {
				return err
			}
			if outcome.Skipped != "" {
				fmt.Fprintf(out, "Nothing published: %s\n", outcome.Skipped)
				return nil
			}

			fmt.Fprintf(out, "Published %q (earning score %.1f, est. %s)\n",
				outcome.Selected.Title,
				outcome.Estimate.FinalEarningScore,
				outcome.Estimate.RevenueRange)
			rows := make([][]string, 0, len(outcome.Published)+len(outcome.Errors))
			for _, result := range outcome.Published {
				rows = append(rows, []string{result.Platform, "ok", result.URL})
			}
			for platform, message := range outcome.Errors {
				rows = append(rows, []string{platform, "failed", message})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{textColumn("Platform"), textColumn("Result"), textColumn("Detail")},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&listOnly, "candidates", false, "List eligible clips ranked by earning score without publishing")
	return cmd
}

func printCandidates(cmd *cobra.Command, candidates []publisher.Candidate) {
	out := cmd.OutOrStdout()
	if len(candidates) == 0 {
		fmt.Fprintln(out, "No clips eligible for publishing")
		return
	}
	rows := make([][]string, 0, len(candidates))
	for _, candidate := range candidates {
		rows = append(rows, []string{
			candidate.Clip.ID,
			candidate.Clip.Title,
			fmt.Sprintf("%.1f", candidate.Estimate.ViralityScore),
			fmt.Sprintf("%.1f", candidate.Estimate.FinalEarningScore),
			candidate.Estimate.RevenueRange,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]tableColumn{
			textColumn("Clip"),
			textColumn("Title"),
			scoreColumn("Virality"),
			scoreColumn("Earning"),
			scoreColumn("Est. Revenue"),
		},
		rows,
	))
}
