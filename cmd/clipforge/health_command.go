package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipforge/internal/services"
	"clipforge/internal/services/platforms"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check configuration, store, and collaborator readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			checks := []services.Health{configHealth(ctx), storeHealth(ctx)}

			if client, err := ctx.youtubeClient(); err != nil {
				checks = append(checks, services.Unhealthy("youtube_api", err.Error()))
			} else {
				checks = append(checks, client.HealthCheck())
			}
			if client, err := ctx.geminiClient(); err != nil {
				checks = append(checks, services.Unhealthy("gemini_api", err.Error()))
			} else {
				checks = append(checks, client.HealthCheck())
			}
			if rend, err := ctx.newRenderer(); err != nil {
				checks = append(checks, services.Unhealthy("renderer", err.Error()))
			} else {
				checks = append(checks, rend.HealthCheck())
			}

			creds := platforms.CredentialsFromEnv()
			for _, name := range cfg.Publishing.Platforms {
				if _, err := platforms.ForPlatform(name, creds); err != nil {
					checks = append(checks, services.Unhealthy(name, err.Error()))
				} else {
					checks = append(checks, services.Healthy(name))
				}
			}

			out := cmd.OutOrStdout()
			unhealthy := renderHealthReport(out, checks)
			if unhealthy > 0 {
				return fmt.Errorf("%d of %d checks failed", unhealthy, len(checks))
			}
			fmt.Fprintln(out, "All checks passed")
			return nil
		},
	}
}

func configHealth(ctx *commandContext) services.Health {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return services.Unhealthy("config", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return services.Unhealthy("config", err.Error())
	}
	return services.Healthy("config")
}

func storeHealth(ctx *commandContext) services.Health {
	st, err := ctx.openStore()
	if err != nil {
		return services.Unhealthy("store", err.Error())
	}
	defer st.Close()
	return services.Healthy("store")
}
