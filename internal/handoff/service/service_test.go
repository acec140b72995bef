package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/store/drivers/sqlite"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
	"github.com/aussiebroadwan/handoff/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "portal-handoff"
	testAudience = "analytics-app"
)

var testNow = time.Unix(1700000000, 0).UTC()

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	cryptox.ResetMasterKeyForTesting()
	t.Cleanup(cryptox.ResetMasterKeyForTesting)
	t.Setenv(cryptox.MasterKeyEnv, "service-test-key")

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedScope(t *testing.T, s *sqlite.Store, scope domain.TargetScope) {
	t.Helper()
	if scope.CreatedAt.IsZero() {
		scope.CreatedAt, scope.UpdatedAt = testNow, testNow
	}
	require.NoError(t, s.Scopes().UpsertScope(context.Background(), scope))
}

// captureLogs returns a context whose slogx logger writes JSON into buf.
func captureLogs() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slogx.WithContext(context.Background(), logger), &buf
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
