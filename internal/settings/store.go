package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// NOTE: This store assumes the following tables exist:
// - customizations (id INT PRIMARY KEY CHECK (id = 1), business_name TEXT, tone TEXT,
//   description TEXT, fallback_personality TEXT, greeting TEXT, updated_at TIMESTAMPTZ)
// - bot_personality (id UUID PRIMARY KEY, text TEXT, created_at TIMESTAMPTZ)

// customizationRowID pins the business profile to one known row.
const customizationRowID = 1

func getCustomization(ctx context.Context, db *sql.DB) (Customization, bool, error) {
	const q = `
SELECT business_name, tone, description, fallback_personality, greeting, updated_at
FROM customizations
WHERE id = $1
`
	var c Customization
	if err := db.QueryRowContext(ctx, q, customizationRowID).Scan(
		&c.BusinessName,
		&c.Tone,
		&c.Description,
		&c.FallbackPersonality,
		&c.Greeting,
		&c.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Customization{}, false, nil
		}
		return Customization{}, false, err
	}
	return c, true, nil
}

func upsertCustomization(ctx context.Context, db *sql.DB, c Customization, now time.Time) (Customization, error) {
	const q = `
INSERT INTO customizations (id, business_name, tone, description, fallback_personality, greeting, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id)
DO UPDATE SET business_name = EXCLUDED.business_name,
              tone = EXCLUDED.tone,
              description = EXCLUDED.description,
              fallback_personality = EXCLUDED.fallback_personality,
              greeting = EXCLUDED.greeting,
              updated_at = EXCLUDED.updated_at
RETURNING business_name, tone, description, fallback_personality, greeting, updated_at
`
	var out Customization
	if err := db.QueryRowContext(ctx, q,
		customizationRowID,
		c.BusinessName,
		c.Tone,
		c.Description,
		c.FallbackPersonality,
		c.Greeting,
		now,
	).Scan(
		&out.BusinessName,
		&out.Tone,
		&out.Description,
		&out.FallbackPersonality,
		&out.Greeting,
		&out.UpdatedAt,
	); err != nil {
		return Customization{}, err
	}
	return out, nil
}

func insertPersonality(ctx context.Context, db *sql.DB, p Personality) error {
	const q = `
INSERT INTO bot_personality (id, text, created_at)
VALUES ($1,$2,$3)
`
	_, err := db.ExecContext(ctx, q, p.ID, p.Text, p.CreatedAt)
	return err
}

func latestPersonality(ctx context.Context, db *sql.DB) (Personality, bool, error) {
	const q = `
SELECT id, text, created_at
FROM bot_personality
ORDER BY created_at DESC, id DESC
LIMIT 1
`
	var p Personality
	if err := db.QueryRowContext(ctx, q).Scan(&p.ID, &p.Text, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Personality{}, false, nil
		}
		return Personality{}, false, err
	}
	return p, true, nil
}
