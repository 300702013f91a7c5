package main

import (
	"fmt"
	"time"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/fleet"

	"github.com/spf13/cobra"
)

func walletCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Pool wallet operations",
	}
	cmd.AddCommand(walletInitCmd(configPath))
	cmd.AddCommand(walletBalanceCmd(configPath))
	return cmd
}

func walletInitCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "init <coin>",
		Short: "Provision a coin's pool wallet (idempotent)",
		Long: `Creates the pool wallet for one coin if it does not exist yet, exports
the seed backup and records the receiving address. Safe to re-run: an
already-provisioned wallet is left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profileFor(*configPath, args[0])
			if err != nil {
				return err
			}
			if p.Provision == nil {
				return fmt.Errorf("%s has no pool wallet to provision", p.Name)
			}

			rec, err := p.Provision.Ensure(cmd.Context())
			if err != nil {
				return fmt.Errorf("provision %s wallet: %w", p.Name, err)
			}

			fmt.Println(ui.SuccessMsg("%s wallet provisioned", p.Name))
			fmt.Print(ui.KeyValues("  ",
				ui.KV("address", rec.Address),
				ui.KV("initialized", rec.InitializedAt.Format(time.RFC3339)),
				ui.KV("seed backup", orNone(rec.BackupPath)),
			))
			return nil
		},
	}
}

func walletBalanceCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <coin>",
		Short: "Show a coin's pool wallet balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := profileFor(*configPath, args[0])
			if err != nil {
				return err
			}
			if p.WalletRPC == nil {
				return fmt.Errorf("%s has no wallet RPC endpoint", p.Name)
			}

			amt, err := p.WalletRPC.Balance(cmd.Context())
			if err != nil {
				return fmt.Errorf("query %s balance: %w", p.Name, err)
			}
			fmt.Printf("%s %s\n", amt.String(), ui.Muted(args[0]))
			return nil
		},
	}
}

// profileFor loads the config and resolves one enabled coin's profile.
func profileFor(configPath, coin string) (*fleet.CoinProfile, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	profiles, err := fleet.Profiles(cfg)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.ID == coin {
			return p, nil
		}
	}
	return nil, fmt.Errorf("coin %q is not enabled in this configuration", coin)
}

func orNone(s string) string {
	if s == "" {
		return ui.Muted("none")
	}
	return s
}
