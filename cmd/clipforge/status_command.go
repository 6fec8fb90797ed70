package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/store"
)

type statusReport struct {
	Videos         store.StatusCounts    `json:"videos"`
	Clips          store.ClipCounts      `json:"clips"`
	TotalPublished int                   `json:"total_published"`
	LastPublished  *time.Time            `json:"last_published,omitempty"`
	PublishedToday int                   `json:"published_today"`
	History        []store.PublishRecord `json:"recent_publishes,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show video, clip, and publishing totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			videos, err := st.VideoCounts(cmd.Context())
			if err != nil {
				return err
			}
			clips, err := st.ClipTotals(cmd.Context())
			if err != nil {
				return err
			}
			state, _, err := st.LoadPublishingState(cmd.Context())
			if err != nil {
				return err
			}

			report := statusReport{
				Videos:         videos,
				Clips:          clips,
				TotalPublished: state.TotalPublished,
				LastPublished:  state.LastPublished,
				PublishedToday: state.DailyPublishCount(time.Now()),
				History:        recentPublishes(state, 5),
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(report)
			}

			fmt.Fprintln(out, renderTable(
				[]tableColumn{textColumn("Status"), scoreColumn("Videos")},
				[][]string{
					{"discovered", fmt.Sprintf("%d", videos.Discovered)},
					{"analyzed", fmt.Sprintf("%d", videos.Analyzed)},
					{"processing", fmt.Sprintf("%d", videos.Processing)},
					{"clips_ready", fmt.Sprintf("%d", videos.ClipsReady)},
					{"failed", fmt.Sprintf("%d", videos.Failed)},
					{"total", fmt.Sprintf("%d", videos.Total)},
				},
			))
			fmt.Fprintf(out, "Clips: %d total, %d published\n", clips.Total, clips.Published)
			fmt.Fprintf(out, "Publishes: %d total, %d today\n", report.TotalPublished, report.PublishedToday)
			if report.LastPublished != nil {
				fmt.Fprintf(out, "Last published: %s\n", report.LastPublished.Format(time.RFC3339))
			}
			if len(report.History) > 0 {
				rows := make([][]string, 0, len(report.History))
				for _, rec := range report.History {
					rows = append(rows, []string{
						rec.PublishedAt.Format("2006-01-02 15:04"),
						rec.Platform,
						rec.Title,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]tableColumn{textColumn("When"), textColumn("Platform"), textColumn("Title")},
					rows,
				))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable JSON")
	return cmd
}

func recentPublishes(state *store.PublishingState, limit int) []store.PublishRecord {
	history := state.PublishingHistory
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}
