package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/app"
	"github.com/aussiebroadwan/handoff/pkg/handoffsdk"
	"github.com/aussiebroadwan/handoff/pkg/idx"
	"github.com/spf13/cobra"
)

var (
	flagVerifyScope string

	verifyCmd = &cobra.Command{
		Use:   "verify --scope <id> <token>",
		Short: "Validate a handoff token against a stored scope secret",
		Long: `
Checks signature, expiry, issuer and audience of a token using the secret
of the given scope, then prints the claims. The secret is never printed.

Usage:
  $ handoff verify --scope analytics-prod eyJhbGciOi...
`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runVerify,
	}
)

func init() {
	verifyCmd.Flags().StringVar(&flagVerifyScope, "scope", "", "scope id whose secret signed the token")
	_ = verifyCmd.MarkFlagRequired("scope")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg)

	db, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.StoreTimeout)
	defer cancel()

	scope, err := db.Scopes().GetScopeByID(ctx, flagVerifyScope)
	if err != nil {
		return fmt.Errorf("load scope %q: %w", flagVerifyScope, err)
	}

	claims, err := handoffsdk.NewVerifier(cfg.Issuer, cfg.Audience, scope.Secret).Verify(args[0])
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "token valid")
	fmt.Fprintf(out, "  sub:   %s\n", claims.Subject)
	fmt.Fprintf(out, "  email: %s\n", claims.Email)
	fmt.Fprintf(out, "  scope: %s (%s)\n", claims.Scope, claims.ScopeID)
	fmt.Fprintf(out, "  jti:   %s\n", claims.ID)
	if jti, err := idx.Parse(claims.ID); err == nil {
		fmt.Fprintf(out, "  mint:  %s\n", jti.Time().Format(time.RFC3339))
	}
	fmt.Fprintf(out, "  exp:   %s\n", claims.ExpiresAtTime().Format(time.RFC3339))
	return nil
}
