package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrNotFound = errors.New("dispatch: not found")

// Store is the persistence surface the dispatcher needs.
type Store interface {
	Create(ctx context.Context, c ScheduledCall) (ScheduledCall, error)
	Get(ctx context.Context, id string) (ScheduledCall, error)
	List(ctx context.Context, limit int) ([]ScheduledCall, error)

	// Due returns pending rows with scheduled_at <= now, oldest first.
	Due(ctx context.Context, now time.Time) ([]ScheduledCall, error)

	// Claim transitions a row pending -> calling iff it is still pending.
	// Returns false when another pass already claimed it.
	Claim(ctx context.Context, id string, now time.Time) (bool, error)

	MarkCompleted(ctx context.Context, id, providerCallID string, now time.Time) error
	MarkFailed(ctx context.Context, id, reason string, now time.Time) error

	// ReclaimStuck fails calling-rows whose claim is older than cutoff and
	// returns how many it touched.
	ReclaimStuck(ctx context.Context, cutoff, now time.Time) (int64, error)
}

// NOTE: This store assumes the following table exists:
// scheduled_calls (id UUID PRIMARY KEY, target_number TEXT, purpose TEXT,
//   scheduled_at TIMESTAMPTZ, status TEXT, claimed_at TIMESTAMPTZ,
//   provider_call_id TEXT, failure_reason TEXT,
//   created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const scheduledCallColumns = `id, target_number, purpose, scheduled_at, status, claimed_at, provider_call_id, failure_reason, created_at, updated_at`

func scanScheduledCall(row interface{ Scan(...any) error }) (ScheduledCall, error) {
	var c ScheduledCall
	err := row.Scan(
		&c.ID,
		&c.TargetNumber,
		&c.Purpose,
		&c.ScheduledAt,
		&c.Status,
		&c.ClaimedAt,
		&c.ProviderCallID,
		&c.FailureReason,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

func (s *PostgresStore) Create(ctx context.Context, c ScheduledCall) (ScheduledCall, error) {
	const q = `
INSERT INTO scheduled_calls (id, target_number, purpose, scheduled_at, status, provider_call_id, failure_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,'','',$6,$6)
RETURNING ` + scheduledCallColumns
	return scanScheduledCall(s.db.QueryRowContext(ctx, q, c.ID, c.TargetNumber, c.Purpose, c.ScheduledAt, c.Status, c.CreatedAt))
}

func (s *PostgresStore) Get(ctx context.Context, id string) (ScheduledCall, error) {
	const q = `
SELECT ` + scheduledCallColumns + `
FROM scheduled_calls
WHERE id = $1
`
	c, err := scanScheduledCall(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return ScheduledCall{}, ErrNotFound
	}
	return c, err
}

func (s *PostgresStore) List(ctx context.Context, limit int) ([]ScheduledCall, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	const q = `
SELECT ` + scheduledCallColumns + `
FROM scheduled_calls
ORDER BY scheduled_at DESC
LIMIT $1
`
	return s.queryCalls(ctx, q, limit)
}

func (s *PostgresStore) Due(ctx context.Context, now time.Time) ([]ScheduledCall, error) {
	const q = `
SELECT ` + scheduledCallColumns + `
FROM scheduled_calls
WHERE status = 'pending' AND scheduled_at <= $1
ORDER BY scheduled_at ASC, id ASC
`
	return s.queryCalls(ctx, q, now)
}

func (s *PostgresStore) queryCalls(ctx context.Context, q string, args ...any) ([]ScheduledCall, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ScheduledCall, 0)
	for rows.Next() {
		c, err := scanScheduledCall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Claim(ctx context.Context, id string, now time.Time) (bool, error) {
	// The status precondition makes the claim a compare-and-swap: under two
	// concurrent passes exactly one UPDATE reports a row affected.
	const q = `
UPDATE scheduled_calls
SET status = 'calling', claimed_at = $2, updated_at = $2
WHERE id = $1 AND status = 'pending'
`
	res, err := s.db.ExecContext(ctx, q, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStore) MarkCompleted(ctx context.Context, id, providerCallID string, now time.Time) error {
	const q = `
UPDATE scheduled_calls
SET status = 'completed', provider_call_id = $2, updated_at = $3
WHERE id = $1 AND status = 'calling'
`
	res, err := s.db.ExecContext(ctx, q, id, providerCallID, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, id, reason string, now time.Time) error {
	const q = `
UPDATE scheduled_calls
SET status = 'failed', failure_reason = $2, updated_at = $3
WHERE id = $1 AND status = 'calling'
`
	res, err := s.db.ExecContext(ctx, q, id, reason, now)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ReclaimStuck(ctx context.Context, cutoff, now time.Time) (int64, error) {
	const q = `
UPDATE scheduled_calls
SET status = 'failed', failure_reason = 'claim expired', updated_at = $2
WHERE status = 'calling' AND claimed_at IS NOT NULL AND claimed_at < $1
`
	res, err := s.db.ExecContext(ctx, q, cutoff, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
