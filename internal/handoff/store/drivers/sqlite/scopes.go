package sqlite

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
	"github.com/aussiebroadwan/handoff/internal/handoff/store"
	"github.com/aussiebroadwan/handoff/pkg/cryptox"
)

type scopesRepo struct {
	q      dbtx
	atomic atomicFn
}

func (r *scopesRepo) GetScopeByID(ctx context.Context, id string) (domain.TargetScope, error) {
	var (
		s         domain.TargetScope
		sealed    []byte
		live      int
		createdAt int64
		updatedAt int64
	)

	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, secret_encrypted, live, created_at, updated_at
		FROM target_scopes
		WHERE id = ?`, id,
	).Scan(&s.ID, &s.Name, &sealed, &live, &createdAt, &updatedAt)
	if err != nil {
		return domain.TargetScope{}, mapNotFound(err)
	}

	secret, err := cryptox.DecryptSecret(sealed)
	if err != nil {
		return domain.TargetScope{}, fmt.Errorf("%w: scope %s: %v", store.ErrSecretUnreadable, id, err)
	}
	s.Secret = secret
	s.Live = live == 1
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)

	rows, err := r.q.QueryContext(ctx, `
		SELECT email FROM target_scope_members
		WHERE scope_id = ?
		ORDER BY email`, id)
	if err != nil {
		return domain.TargetScope{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return domain.TargetScope{}, err
		}
		s.AuthorizedEmails = append(s.AuthorizedEmails, email)
	}
	return s, rows.Err()
}

func (r *scopesRepo) ListScopesForEmail(ctx context.Context, email string) ([]domain.ScopeSummary, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT s.id, s.name
		FROM target_scopes s
		JOIN target_scope_members m ON m.scope_id = s.id
		WHERE m.email = ? AND s.live = 1
		ORDER BY s.name, s.id`, domain.NormalizeEmail(email))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ScopeSummary{}
	for rows.Next() {
		var s domain.ScopeSummary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *scopesRepo) UpsertScope(ctx context.Context, s domain.TargetScope) error {
	sealed, err := cryptox.EncryptSecret(s.Secret)
	if err != nil {
		return fmt.Errorf("encrypt scope secret: %w", err)
	}

	return r.atomic(ctx, func(q dbtx) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO target_scopes (id, name, secret_encrypted, live, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name,
				secret_encrypted = excluded.secret_encrypted,
				live = excluded.live,
				updated_at = excluded.updated_at`,
			s.ID, s.Name, sealed, boolToInt(s.Live), toMillis(s.CreatedAt), toMillis(s.UpdatedAt))
		if err != nil {
			return err
		}

		if _, err := q.ExecContext(ctx, `DELETE FROM target_scope_members WHERE scope_id = ?`, s.ID); err != nil {
			return err
		}
		for _, email := range s.AuthorizedEmails {
			email = domain.NormalizeEmail(email)
			if email == "" {
				continue
			}
			if _, err := q.ExecContext(ctx, `
				INSERT INTO target_scope_members (scope_id, email) VALUES (?, ?)
				ON CONFLICT DO NOTHING`, s.ID, email); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *scopesRepo) DeleteScope(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM target_scopes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *scopesRepo) ListScopeIDs(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id FROM target_scopes ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
