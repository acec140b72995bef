package sqlite

import (
	"context"
	"time"

	"github.com/aussiebroadwan/handoff/internal/handoff/domain"
)

type exchangeStatesRepo struct {
	q dbtx
}

func (r *exchangeStatesRepo) CreateExchangeState(ctx context.Context, s domain.ExchangeState) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO exchange_states (id, token, principal_id, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.Token, s.PrincipalID, toMillis(s.CreatedAt), toMillis(s.ExpiresAt))
	return mapConstraint(err)
}

// TakeExchangeState relies on DELETE ... RETURNING so two concurrent
// callers can never both receive the same row.
func (r *exchangeStatesRepo) TakeExchangeState(ctx context.Context, id string) (domain.ExchangeState, error) {
	var (
		s         domain.ExchangeState
		createdAt int64
		expiresAt int64
	)

	err := r.q.QueryRowContext(ctx, `
		DELETE FROM exchange_states
		WHERE id = ?
		RETURNING id, token, principal_id, created_at, expires_at`, id,
	).Scan(&s.ID, &s.Token, &s.PrincipalID, &createdAt, &expiresAt)
	if err != nil {
		return domain.ExchangeState{}, mapNotFound(err)
	}

	s.CreatedAt = fromMillis(createdAt)
	s.ExpiresAt = fromMillis(expiresAt)
	return s, nil
}

func (r *exchangeStatesRepo) DeleteExpiredExchangeStates(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM exchange_states WHERE expires_at < ?`, toMillis(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
