package main

import (
	"fmt"
	"time"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/journal"

	"github.com/spf13/cobra"
)

func eventsCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent orchestration events from the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.JournalPath == "" {
				return fmt.Errorf("journaling disabled: no journal_path in config")
			}

			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer j.Close()

			events, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println(ui.Muted("no events recorded"))
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{
					e.Time.Format(time.RFC3339),
					e.Coin,
					e.Event,
					e.Detail,
				})
			}
			fmt.Println(ui.Table([]string{"Time", "Coin", "Event", "Detail"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum events to show")
	return cmd
}
