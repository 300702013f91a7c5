package main

import (
	"fmt"
	"os"

	"solopool/cmd/solopoolctl/ui"
	"solopool/config"
	"solopool/internal/logging"

	"github.com/spf13/cobra"
)

func main() {
	if err := logging.Configure(logging.LevelWarn); err != nil {
		_, _ = os.Stderr.WriteString("configure logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.ErrorMsg("%v", err))
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		debug      bool
		noColor    bool
	)

	root := &cobra.Command{
		Use:           "solopoolctl",
		Short:         "Multi-currency solo mining stack orchestrator",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ui.ConfigureColor(noColor)
			level := logging.LevelInfo
			if debug {
				level = logging.LevelDebug
			}
			return logging.Configure(level)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Orchestrator config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	root.AddCommand(upCmd(&configPath))
	root.AddCommand(downCmd(&configPath))
	root.AddCommand(statusCmd(&configPath))
	root.AddCommand(walletCmd(&configPath))
	root.AddCommand(eventsCmd(&configPath))
	return root
}
