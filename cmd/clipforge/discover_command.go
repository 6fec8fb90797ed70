package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"clipforge/internal/discovery"
)

func newDiscoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Search YouTube for candidate videos in the configured niches",
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
			client, err := ctx.youtubeClient()
			if err != nil {
				return err
			}
			notifier, err := ctx.notifier()
			if err != nil {
				return err
			}

			svc := discovery.NewService(cfg, st, client, notifier, logger)
			result, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Discovered %d new videos (%d already known)\n", len(result.Discovered), result.Skipped)
			if len(result.PerNiche) == 0 {
				return nil
			}

			niches := make([]string, 0, len(result.PerNiche))
			for niche := range result.PerNiche {
				niches = append(niches, niche)
			}
			sort.Strings(niches)
			rows := make([][]string, 0, len(niches))
			for _, niche := range niches {
				rows = append(rows, []string{niche, fmt.Sprintf("%d", result.PerNiche[niche])})
			}
			fmt.Fprintln(out, renderTable(
				[]tableColumn{textColumn("Niche"), scoreColumn("New Videos")},
				rows,
			))
			return nil
		},
	}
}
