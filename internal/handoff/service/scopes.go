package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/fsnotify/fsnotify"
)

// ScopeFile is the on-disk shape of scope definitions:
//
//	{"scopes": [{"id": "acme", "name": "Acme", "secretEnv": "ACME_SECRET",
//	             "authorizedEmails": ["a@x.com"]}]}
type ScopeFile struct {
	Scopes []ScopeDefinition `json:"scopes"`
}

// ScopeDefinition describes one target scope. The secret comes from
// Secret or from the environment variable named by SecretEnv. A scope with
// neither is stored without a secret and refuses to mint.
type ScopeDefinition struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Secret           string   `json:"secret,omitempty"`
	SecretEnv        string   `json:"secretEnv,omitempty"`
	AuthorizedEmails []string `json:"authorizedEmails"`
	Live             *bool    `json:"live,omitempty"` // default true
}

// ImportResult counts what an import changed.
type ImportResult struct {
	Upserted int
	Deleted  int
}

// ScopeImporter syncs scope definitions into the store.
type ScopeImporter struct {
	Store  store.Store
	Logger *slog.Logger
	Now    func() time.Time
}

// ParseScopeFile decodes and checks a scope file.
func ParseScopeFile(data []byte) (*ScopeFile, error) {
	var f ScopeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: scope file: %v", ErrMalformedInput, err)
	}

	seen := make(map[string]struct{}, len(f.Scopes))
	for i, d := range f.Scopes {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: scope %d has no id", ErrMalformedInput, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate scope id %q", ErrMalformedInput, id)
		}
		seen[id] = struct{}{}
		f.Scopes[i].ID = id
	}
	return &f, nil
}

func (d ScopeDefinition) toDomain(now time.Time) domain.TargetScope {
	secret := d.Secret
	if secret == "" && d.SecretEnv != "" {
		secret = os.Getenv(d.SecretEnv)
	}

	emails := make([]string, 0, len(d.AuthorizedEmails))
	for _, e := range d.AuthorizedEmails {
		if e = domain.NormalizeEmail(e); e != "" {
			emails = append(emails, e)
		}
	}

	name := d.Name
	if name == "" {
		name = d.ID
	}

	return domain.TargetScope{
		ID:               d.ID,
		Name:             name,
		Secret:           []byte(secret),
		AuthorizedEmails: emails,
		Live:             d.Live == nil || *d.Live,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Import replaces the stored scopes with f in one transaction. Scopes
// missing from f are deleted.
func (i *ScopeImporter) Import(ctx context.Context, f *ScopeFile) (ImportResult, error) {
	now := time.Now()
	if i.Now != nil {
		now = i.Now()
	}

	var res ImportResult
	err := i.Store.WithTx(ctx, func(tx store.Tx) error {
		keep := make(map[string]struct{}, len(f.Scopes))
		for _, d := range f.Scopes {
			scope := d.toDomain(now)
			if len(scope.Secret) == 0 {
				i.Logger.Warn("scope has no signing secret; issuance will fail", "scope_id", scope.ID)
			}
			if err := tx.Scopes().UpsertScope(ctx, scope); err != nil {
				return fmt.Errorf("upsert scope %s: %w", scope.ID, err)
			}
			keep[scope.ID] = struct{}{}
			res.Upserted++
		}

		ids, err := tx.Scopes().ListScopeIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := keep[id]; ok {
				continue
			}
			if err := tx.Scopes().DeleteScope(ctx, id); err != nil {
				return fmt.Errorf("delete scope %s: %w", id, err)
			}
			res.Deleted++
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	i.Logger.Info("scopes imported", "upserted", res.Upserted, "deleted", res.Deleted)
	return res, nil
}

// ImportFile reads, parses and imports path.
func (i *ScopeImporter) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: read scope file: %v", ErrConfig, err)
	}
	f, err := ParseScopeFile(data)
	if err != nil {
		return ImportResult{}, err
	}
	return i.Import(ctx, f)
}

// scopeReloadDelay coalesces the burst of events editors emit per save.
const scopeReloadDelay = 500 * time.Millisecond

// Watch re-imports path whenever it changes until ctx is done. The parent
// directory is watched so atomic rename-into-place saves are seen.
func (i *ScopeImporter) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	go i.watchLoop(ctx, watcher, filepath.Clean(path))
	return nil
}

func (i *ScopeImporter) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, path string) {
	defer watcher.Close()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(scopeReloadDelay)
			} else {
				timer.Reset(scopeReloadDelay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if _, err := i.ImportFile(ctx, path); err != nil {
				i.Logger.Error("scope reload failed; keeping previous scopes", "path", path, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			i.Logger.Warn("scope watcher error", "error", err)
		}
	}
}
