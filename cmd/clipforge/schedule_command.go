package main

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"clipforge/internal/discovery"
	"clipforge/internal/publisher"
)

func newScheduleCommand(ctx *commandContext) *cobra.Command {
	var cronSpec string

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run discover, pipeline, and publish on a cron schedule until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			spec := cronSpec
			if spec == "" {
				spec = cfg.Schedule.Cron
			}
			sched, err := cron.ParseStandard(spec)
			if err != nil {
				return fmt.Errorf("parse cron expression %q: %w", spec, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Scheduling runs with %q\n", spec)
			for {
				next := sched.Next(time.Now())
				fmt.Fprintf(out, "Next run at %s\n", next.Format(time.RFC3339))

				timer := time.NewTimer(time.Until(next))
				select {
				case <-cmd.Context().Done():
					timer.Stop()
					return cmd.Context().Err()
				case <-timer.C:
				}

				if err := runScheduledCycle(cmd, ctx); err != nil {
					// A failed cycle must not kill the loop; the next tick
					// retries from whatever state the store is in.
					fmt.Fprintf(cmd.ErrOrStderr(), "scheduled run failed: %v\n", err)
				}
			}
		},
	}

	cmd.Flags().StringVar(&cronSpec, "cron", "", "Cron expression override (defaults to schedule.cron from the config)")
	return cmd
}

func runScheduledCycle(cmd *cobra.Command, ctx *commandContext) error {
	return ctx.withLock(func() error {
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

		disc := discovery.NewService(cfg, st, client, notifier, logger)
		if _, err := disc.Run(cmd.Context()); err != nil {
			return fmt.Errorf("discovery: %w", err)
		}

		orch, err := ctx.newOrchestrator(st, logger)
		if err != nil {
			return err
		}
		if _, err := orch.Run(cmd.Context()); err != nil {
			return fmt.Errorf("pipeline: %w", err)
		}

		pub, err := publisher.NewService(publisher.Options{
			Config: cfg, Store: st, Notifier: notifier, Logger: logger,
		})
		if err != nil {
			return err
		}
		if _, err := pub.PublishBest(cmd.Context()); err != nil {
			return fmt.Errorf("publish: %w", err)
		}
		return nil
	})
}
