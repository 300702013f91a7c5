package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/fleet"
	"solopool/internal/service"

	"github.com/spf13/cobra"
)

func downCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Stop the mining stack in reverse dependency order",
		Long: `Stops the dashboard and payments first, then stratum processes, wallets
and finally nodes, each tier in reverse coin order. Stop failures are
reported but never block the remaining units.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			fl, err := fleet.New(cfg, service.NewSystemd())
			if err != nil {
				return err
			}
			if err := fl.StopAll(ctx); err != nil {
				return fmt.Errorf("some units did not stop cleanly: %w", err)
			}

			fmt.Println(ui.SuccessMsg("stack stopped"))
			return nil
		},
	}
}
