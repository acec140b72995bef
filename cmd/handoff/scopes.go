package main

import (
	"fmt"

	"github.com/aussiebroadwan/handoff/internal/handoff/app"
	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
	"github.com/spf13/cobra"
)

var (
	scopesCmd = &cobra.Command{
		Use:   "scopes",
		Short: "Manage target scopes",
		Long: `
Usage: handoff scopes <subcommand>

  Load scope definitions into the database:

      $ handoff scopes import scopes.json

  Generate a signing secret for a new scope:

      $ handoff scopes gen-secret
`,
	}

	scopesImportCmd = &cobra.Command{
		Use:          "import <file>",
		Short:        "Sync scope definitions from a JSON file into the database",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runScopesImport,
	}

	scopesGenSecretCmd = &cobra.Command{
		Use:          "gen-secret",
		Short:        "Print a random 256-bit scope secret",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runScopesGenSecret,
	}
)

func init() {
	scopesCmd.AddCommand(scopesImportCmd)
	scopesCmd.AddCommand(scopesGenSecretCmd)
}

func runScopesImport(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg)

	db, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	importer := &service.ScopeImporter{Store: db, Logger: logger}
	res, err := importer.ImportFile(slogx.WithContext(cmd.Context(), logger), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "scopes upserted: %d\nscopes deleted: %d\n", res.Upserted, res.Deleted)
	return nil
}

func runScopesGenSecret(cmd *cobra.Command, args []string) error {
	secret, err := cryptox.GenerateToken(cryptox.ScopeSecretSize)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), secret)
	return nil
}
