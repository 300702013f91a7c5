package main

import (
	"context"
	"fmt"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/fleet"
	"solopool/internal/service"

	"github.com/spf13/cobra"
)

func statusCmd(configPath *string) *cobra.Command {
	var showBalances bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show per-coin service, sync and wallet state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			svc := service.NewSystemd()
			fl, err := fleet.New(cfg, svc)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(fl.Profiles()))
			for _, p := range fl.Profiles() {
				rows = append(rows, statusRow(cmd.Context(), p, svc, showBalances))
			}
			fmt.Println(ui.Table(
				[]string{"Coin", "Node", "Sync", "Wallet", "Stratum", "Balance"},
				rows,
			))
			fmt.Println(ui.Muted("mode: " + cfg.Mode))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBalances, "balances", true, "Query pool wallet balances")
	return cmd
}

func statusRow(ctx context.Context, p *fleet.CoinProfile, svc *service.Systemd, withBalance bool) []string {
	nodeState := ui.ActiveState(svc.IsActive(ctx, p.NodeUnit))

	syncState := ui.Muted("unreachable")
	if p.Probe != nil && p.Probe.Responsive(ctx) {
		if st, err := p.Probe.Sync(ctx); err == nil {
			syncState = ui.SyncPercent(st.Progress, st.Synced)
		}
	}

	walletState := ui.Muted("–")
	if p.WalletUnit != "" {
		walletState = ui.ActiveState(svc.IsActive(ctx, p.WalletUnit))
	}

	stratumState := ui.Muted("proxy") // merge-mode monero mines through the tari proxy
	if p.StratumUnit != "" {
		stratumState = ui.ActiveState(svc.IsActive(ctx, p.StratumUnit))
	}

	balance := ui.Muted("–")
	if withBalance && p.WalletRPC != nil {
		if amt, err := p.WalletRPC.Balance(ctx); err == nil {
			balance = amt.String()
		} else {
			balance = ui.Muted("n/a")
		}
	}

	return []string{p.Name, nodeState, syncState, walletState, stratumState, balance}
}
