package channels

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This store assumes the following tables exist:
// - toggles (key TEXT PRIMARY KEY, enabled BOOL, updated_at TIMESTAMPTZ)
// - connections (channel TEXT PRIMARY KEY, webhook_url TEXT, external_id TEXT, updated_at TIMESTAMPTZ)

func upsertToggle(ctx context.Context, db *sql.DB, key string, enabled bool, now time.Time) (Toggle, error) {
	// Single statement, no fetch-then-update. Setting a flag to its current
	// value is a no-op besides updated_at, which keeps the write idempotent
	// from the caller's point of view.
	const q = `
INSERT INTO toggles (key, enabled, updated_at)
VALUES ($1,$2,$3)
ON CONFLICT (key)
DO UPDATE SET enabled = EXCLUDED.enabled,
              updated_at = EXCLUDED.updated_at
RETURNING key, enabled, updated_at
`
	var t Toggle
	if err := db.QueryRowContext(ctx, q, key, enabled, now).Scan(&t.Key, &t.Enabled, &t.UpdatedAt); err != nil {
		return Toggle{}, err
	}
	return t, nil
}

func getToggle(ctx context.Context, db *sql.DB, key string) (Toggle, bool, error) {
	const q = `
SELECT key, enabled, updated_at
FROM toggles
WHERE key = $1
`
	var t Toggle
	if err := db.QueryRowContext(ctx, q, key).Scan(&t.Key, &t.Enabled, &t.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Toggle{}, false, nil
		}
		return Toggle{}, false, err
	}
	return t, true, nil
}

func listToggles(ctx context.Context, db *sql.DB) ([]Toggle, error) {
	const q = `
SELECT key, enabled, updated_at
FROM toggles
ORDER BY key
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Toggle, 0)
	for rows.Next() {
		var t Toggle
		if err := rows.Scan(&t.Key, &t.Enabled, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func getConnection(ctx context.Context, db *sql.DB, ch Channel) (Connection, bool, error) {
	const q = `
SELECT channel, webhook_url, external_id, updated_at
FROM connections
WHERE channel = $1
`
	var c Connection
	if err := db.QueryRowContext(ctx, q, string(ch)).Scan(&c.Channel, &c.WebhookURL, &c.ExternalID, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Connection{}, false, nil
		}
		return Connection{}, false, err
	}
	return c, true, nil
}

func upsertConnection(ctx context.Context, db *sql.DB, c Connection, now time.Time) (Connection, error) {
	const q = `
INSERT INTO connections (channel, webhook_url, external_id, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (channel)
DO UPDATE SET webhook_url = EXCLUDED.webhook_url,
              external_id = EXCLUDED.external_id,
              updated_at = EXCLUDED.updated_at
RETURNING channel, webhook_url, external_id, updated_at
`
	var out Connection
	if err := db.QueryRowContext(ctx, q, string(c.Channel), c.WebhookURL, c.ExternalID, now).Scan(
		&out.Channel,
		&out.WebhookURL,
		&out.ExternalID,
		&out.UpdatedAt,
	); err != nil {
		return Connection{}, err
	}
	return out, nil
}
