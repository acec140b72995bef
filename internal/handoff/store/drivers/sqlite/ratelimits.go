package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type rateLimitsRepo struct {
	q      dbtx
	atomic atomicFn
}

// RecordHit implements a sliding-window log. Hits at or before now-window no
// longer count.
func (r *rateLimitsRepo) RecordHit(ctx context.Context, key string, window time.Duration, max int, now time.Time) (bool, time.Time, error) {
	var (
		allowed bool
		retryAt time.Time
	)

	if max <= 0 {
		return false, time.Time{}, errZeroMax
	}

	windowStart := toMillis(now.Add(-window))

	err := r.atomic(ctx, func(q dbtx) error {
		var (
			count  int
			oldest sql.NullInt64
		)
		err := q.QueryRowContext(ctx, `
			SELECT COUNT(*), MIN(hit_at)
			FROM rate_limit_hits
			WHERE key = ? AND hit_at > ?`, key, windowStart,
		).Scan(&count, &oldest)
		if err != nil {
			return err
		}

		if count >= max {
			if oldest.Valid {
				retryAt = fromMillis(oldest.Int64).Add(window)
			} else {
				retryAt = now.Add(window)
			}
			return nil
		}

		if _, err := q.ExecContext(ctx, `
			INSERT INTO rate_limit_hits (key, hit_at) VALUES (?, ?)`, key, toMillis(now)); err != nil {
			return err
		}
		allowed = true
		return nil
	})
	if err != nil {
		return false, time.Time{}, err
	}
	return allowed, retryAt, nil
}

func (r *rateLimitsRepo) DeleteHitsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM rate_limit_hits WHERE hit_at <= ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var errZeroMax = errors.New("sqlite: rate limit max must be positive")
