package main

import (
	"fmt"

	"github.com/aussiebroadwan/handoff/internal/handoff/app"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "handoff",
		Short: "Short-lived handoff tokens for cross-domain sign-in",
		Long: `Handoff mints short-lived HS256 tokens that move a signed-in portal user
into a downstream application, and parks them behind one-time state handles
so the token never travels through the browser.

Configuration is read from the environment. Running without a subcommand
starts the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	serveCmd = &cobra.Command{
		Use:          "serve",
		Short:        "Start the HTTP server",
		SilenceUsage: true,
		RunE:         runServe,
	}
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(scopesCmd)
	rootCmd.AddCommand(verifyCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
