package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/fleet"
	"solopool/internal/journal"
	"solopool/internal/preflight"
	"solopool/internal/service"

	"github.com/spf13/cobra"
)

func upCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Start and sequence the full mining stack",
		Long: `Starts every enabled coin's node, waits for chain sync, provisions and
starts pool wallets, then brings up stratum processes. Exits 0 only when
every enabled coin reached the verified state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			clock := preflight.ClockCheck{
				Pool:      cfg.NTPPool,
				Threshold: time.Duration(cfg.NTPMaxDriftMS) * time.Millisecond,
			}
			clock.Warn()

			var opts []fleet.Option
			if cfg.JournalPath != "" {
				j, err := journal.Open(cfg.JournalPath)
				if err != nil {
					// Journaling is an observability aid, not a startup gate.
					slog.Warn("event journal unavailable", "path", cfg.JournalPath, "err", err)
				} else {
					defer j.Close()
					opts = append(opts, fleet.WithJournal(j))
				}
			}

			fl, err := fleet.New(cfg, service.NewSystemd(), opts...)
			if err != nil {
				return err
			}
			if err := fl.StartAll(ctx); err != nil {
				return err
			}

			fmt.Println(ui.SuccessMsg("all enabled coins verified and mining"))
			return nil
		},
	}
}
