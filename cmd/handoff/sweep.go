package main

import (
	"fmt"

	"github.com/aussiebroadwan/handoff/internal/handoff/app"
	"github.com/aussiebroadwan/handoff/internal/handoff/service"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired state handles and old rate limit hits once",
	Long: `
Runs one housekeeping pass against DATABASE_FILE and exits. Useful from cron
when the server runs with a long HOUSEKEEPING_INTERVAL.

Usage:
  $ handoff sweep
`,
	SilenceUsage: true,
	RunE:         runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := app.LoadConfig()
	logger := app.NewLogger(cfg)

	db, err := app.OpenStore(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	hk := service.NewHousekeepingService(
		&service.ExchangeService{Store: db, StoreTimeout: cfg.StoreTimeout},
		&service.StoreLimiter{Store: db, Timeout: cfg.StoreTimeout},
		logger,
		cfg.HousekeepingInterval,
		0,
	)

	res := hk.RunOnce(slogx.WithContext(cmd.Context(), logger))
	fmt.Fprintf(cmd.OutOrStdout(), "expired states removed: %d\nrate limit hits removed: %d\n", res.ExchangeStates, res.RateLimitHits)
	if res.Errors > 0 {
		return fmt.Errorf("sweep finished with %d errors", res.Errors)
	}
	return nil
}
