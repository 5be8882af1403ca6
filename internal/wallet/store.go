package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Tables:
// - wallet_ledger (id UUID PRIMARY KEY, type TEXT, amount_minor BIGINT,
//   currency TEXT, external_ref TEXT, idempotency_key TEXT UNIQUE,
//   created_at TIMESTAMPTZ)
// - wallet_balance (id INT PRIMARY KEY, currency TEXT, balance_minor BIGINT,
//   updated_at TIMESTAMPTZ) -- single projection row

const balanceRowID = 1

func getBalance(ctx context.Context, db *sql.DB) (Balance, error) {
	const q = `
SELECT currency, balance_minor, updated_at
FROM wallet_balance
WHERE id = $1
`
	var b Balance
	if err := db.QueryRowContext(ctx, q, balanceRowID).Scan(&b.Currency, &b.BalanceMinor, &b.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Balance{}, ErrNotFound
		}
		return Balance{}, err
	}
	return b, nil
}

// getBalanceForUpdate locks the projection row to serialize concurrent
// money operations.
func getBalanceForUpdate(ctx context.Context, tx *sql.Tx, currency string, now time.Time) (Balance, error) {
	const ensure = `
INSERT INTO wallet_balance (id, currency, balance_minor, updated_at)
VALUES ($1,$2,0,$3)
ON CONFLICT (id) DO NOTHING
`
	if _, err := tx.ExecContext(ctx, ensure, balanceRowID, currency, now); err != nil {
		return Balance{}, err
	}
	const q = `
SELECT currency, balance_minor, updated_at
FROM wallet_balance
WHERE id = $1
FOR UPDATE
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, balanceRowID).Scan(&b.Currency, &b.BalanceMinor, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}

func findLedgerByIdempotency(ctx context.Context, tx *sql.Tx, key string) (LedgerEntry, bool, error) {
	const q = `
SELECT id, type, amount_minor, currency, external_ref, idempotency_key, created_at
FROM wallet_ledger
WHERE idempotency_key = $1
LIMIT 1
`
	var e LedgerEntry
	err := tx.QueryRowContext(ctx, q, key).Scan(
		&e.ID,
		&e.Type,
		&e.AmountMinor,
		&e.Currency,
		&e.ExternalRef,
		&e.IdempotencyKey,
		&e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LedgerEntry{}, false, nil
		}
		return LedgerEntry{}, false, err
	}
	return e, true, nil
}

func insertLedger(ctx context.Context, tx *sql.Tx, e LedgerEntry) error {
	const q = `
INSERT INTO wallet_ledger (id, type, amount_minor, currency, external_ref, idempotency_key, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := tx.ExecContext(ctx, q,
		e.ID, e.Type, e.AmountMinor, e.Currency, e.ExternalRef, e.IdempotencyKey, e.CreatedAt)
	return err
}

func applyBalanceDelta(ctx context.Context, tx *sql.Tx, deltaMinor int64, now time.Time) (Balance, error) {
	const q = `
UPDATE wallet_balance
SET balance_minor = balance_minor + $2, updated_at = $3
WHERE id = $1
RETURNING currency, balance_minor, updated_at
`
	var b Balance
	if err := tx.QueryRowContext(ctx, q, balanceRowID, deltaMinor, now).Scan(&b.Currency, &b.BalanceMinor, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}
