package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tastetab/internal/config"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "posctl",
		Short:         "posctl - operator tool for the TasteTab POS backend",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedItemsCmd())
	rootCmd.AddCommand(createUserCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
