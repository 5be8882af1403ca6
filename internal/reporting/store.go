package reporting

import (
	"context"
	"database/sql"

	"becca-platform/internal/history"
	"becca-platform/internal/wallet"
)

// PostgresRepository reads the immutable history and ledger tables.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListCallRecords(ctx context.Context, tr TimeRange) ([]history.CallRecord, error) {
	const q = `
SELECT id, scheduled_call_id, target_number, purpose, provider_call_id, outcome, reason, created_at
FROM call_history
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, tr.From, tr.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.CallRecord, 0)
	for rows.Next() {
		var rec history.CallRecord
		if err := rows.Scan(&rec.ID, &rec.ScheduledCallID, &rec.TargetNumber, &rec.Purpose, &rec.ProviderCallID, &rec.Outcome, &rec.Reason, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) ListLedger(ctx context.Context, tr TimeRange) ([]wallet.LedgerEntry, error) {
	const q = `
SELECT id, type, amount_minor, currency, external_ref, idempotency_key, created_at
FROM wallet_ledger
WHERE created_at >= $1 AND created_at < $2
ORDER BY created_at ASC
`
	rows, err := r.db.QueryContext(ctx, q, tr.From, tr.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]wallet.LedgerEntry, 0)
	for rows.Next() {
		var e wallet.LedgerEntry
		if err := rows.Scan(&e.ID, &e.Type, &e.AmountMinor, &e.Currency, &e.ExternalRef, &e.IdempotencyKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
