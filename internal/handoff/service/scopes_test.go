package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/stretchr/testify/require"
)

func TestParseScopeFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		f, err := ParseScopeFile([]byte(`{"scopes":[{"id":" acme ","name":"Acme","authorizedEmails":["a@x.com"]}]}`))
		require.NoError(t, err)
		require.Len(t, f.Scopes, 1)
		require.Equal(t, "acme", f.Scopes[0].ID)
	})

	for name, body := range map[string]string{
		"not json":     `{"scopes":`,
		"missing id":   `{"scopes":[{"name":"x"}]}`,
		"duplicate id": `{"scopes":[{"id":"a"},{"id":"a"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScopeFile([]byte(body))
			require.ErrorIs(t, err, ErrMalformedInput)
		})
	}
}

func TestScopeImporter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	imp := &ScopeImporter{Store: s, Logger: discardLogger(), Now: fixedClock(testNow)}

	t.Setenv("GLOBEX_SECRET", "from-env")
	retired := false

	res, err := imp.Import(ctx, &ScopeFile{Scopes: []ScopeDefinition{
		{ID: "acme", Name: "Acme", Secret: "inline", AuthorizedEmails: []string{"A@x.com", " "}},
		{ID: "globex", SecretEnv: "GLOBEX_SECRET", AuthorizedEmails: []string{"b@x.com"}, Live: &retired},
	}})
	require.NoError(t, err)
	require.Equal(t, ImportResult{Upserted: 2}, res)

	acme, err := s.Scopes().GetScopeByID(ctx, "acme")
	require.NoError(t, err)
	require.Equal(t, []byte("inline"), acme.Secret)
	require.Equal(t, []string{"a@x.com"}, acme.AuthorizedEmails)
	require.True(t, acme.Live)

	globex, err := s.Scopes().GetScopeByID(ctx, "globex")
	require.NoError(t, err)
	require.Equal(t, []byte("from-env"), globex.Secret)
	require.Equal(t, "globex", globex.Name)
	require.False(t, globex.Live)

	t.Run("scopes missing from the file are removed", func(t *testing.T) {
		res, err := imp.Import(ctx, &ScopeFile{Scopes: []ScopeDefinition{
			{ID: "acme", Name: "Acme", Secret: "rotated", AuthorizedEmails: []string{"a@x.com"}},
		}})
		require.NoError(t, err)
		require.Equal(t, ImportResult{Upserted: 1, Deleted: 1}, res)

		_, err = s.Scopes().GetScopeByID(ctx, "globex")
		require.ErrorIs(t, err, store.ErrNotFound)

		acme, err := s.Scopes().GetScopeByID(ctx, "acme")
		require.NoError(t, err)
		require.Equal(t, []byte("rotated"), acme.Secret)
	})
}

func TestScopeImporterWatch(t *testing.T) {
	s := newTestStore(t)
	imp := &ScopeImporter{Store: s, Logger: discardLogger()}

	dir := t.TempDir()
	path := filepath.Join(dir, "scopes.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"scopes":[{"id":"acme","secret":"s","authorizedEmails":["a@x.com"]}]}`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	_, err := imp.ImportFile(ctx, path)
	require.NoError(t, err)
	require.NoError(t, imp.Watch(ctx, path))

	require.NoError(t, os.WriteFile(path, []byte(`{"scopes":[{"id":"acme","secret":"s","authorizedEmails":["a@x.com","b@x.com"]}]}`), 0o600))

	require.Eventually(t, func() bool {
		scopes, err := s.Scopes().ListScopesForEmail(context.Background(), "b@x.com")
		return err == nil && len(scopes) == 1
	}, 5*time.Second, 50*time.Millisecond)

	t.Run("broken file keeps previous scopes", func(t *testing.T) {
		require.NoError(t, os.WriteFile(path, []byte(`{"scopes":`), 0o600))
		time.Sleep(2 * scopeReloadDelay)

		scope, err := s.Scopes().GetScopeByID(context.Background(), "acme")
		require.NoError(t, err)
		require.Equal(t, []string{"a@x.com", "b@x.com"}, scope.AuthorizedEmails)
	})
}

func TestImportFileMissing(t *testing.T) {
	imp := &ScopeImporter{Store: newTestStore(t), Logger: discardLogger()}
	_, err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, ErrConfig)
}

