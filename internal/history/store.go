package history

import (
	"context"
	"database/sql"
	"time"
)

// Tables:
// - conversations (id UUID PRIMARY KEY, channel TEXT, title TEXT,
//   created_at TIMESTAMPTZ, updated_at TIMESTAMPTZ)
// - messages (id UUID PRIMARY KEY, conversation_id UUID REFERENCES conversations,
//   role TEXT, content TEXT, created_at TIMESTAMPTZ)
// - call_history (id UUID PRIMARY KEY, scheduled_call_id UUID, target_number TEXT,
//   purpose TEXT, provider_call_id TEXT, outcome TEXT, reason TEXT,
//   created_at TIMESTAMPTZ)
// - transcripts (id UUID PRIMARY KEY, provider_call_id TEXT UNIQUE, body TEXT,
//   created_at TIMESTAMPTZ)

func insertConversation(ctx context.Context, db *sql.DB, c Conversation) error {
	const q = `
INSERT INTO conversations (id, channel, title, created_at, updated_at)
VALUES ($1,$2,$3,$4,$4)
`
	_, err := db.ExecContext(ctx, q, c.ID, c.Channel, c.Title, c.CreatedAt)
	return err
}

func touchConversation(ctx context.Context, db *sql.DB, id string, now time.Time) (bool, error) {
	const q = `UPDATE conversations SET updated_at = $2 WHERE id = $1`
	res, err := db.ExecContext(ctx, q, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func listConversations(ctx context.Context, db *sql.DB) ([]Conversation, error) {
	const q = `
SELECT id, channel, title, created_at, updated_at
FROM conversations
ORDER BY updated_at DESC
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Conversation, 0)
	for rows.Next() {
		var c Conversation
		if err := rows.Scan(&c.ID, &c.Channel, &c.Title, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func insertMessage(ctx context.Context, db *sql.DB, m Message) error {
	const q = `
INSERT INTO messages (id, conversation_id, role, content, created_at)
VALUES ($1,$2,$3,$4,$5)
`
	_, err := db.ExecContext(ctx, q, m.ID, m.ConversationID, m.Role, m.Content, m.CreatedAt)
	return err
}

func listMessages(ctx context.Context, db *sql.DB, conversationID string) ([]Message, error) {
	const q = `
SELECT id, conversation_id, role, content, created_at
FROM messages
WHERE conversation_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := db.QueryContext(ctx, q, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func insertCallRecord(ctx context.Context, db *sql.DB, r CallRecord) error {
	const q = `
INSERT INTO call_history (id, scheduled_call_id, target_number, purpose, provider_call_id, outcome, reason, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`
	_, err := db.ExecContext(ctx, q,
		r.ID, r.ScheduledCallID, r.TargetNumber, r.Purpose, r.ProviderCallID, r.Outcome, r.Reason, r.CreatedAt)
	return err
}

func listCallRecords(ctx context.Context, db *sql.DB, limit int) ([]CallRecord, error) {
	const q = `
SELECT id, scheduled_call_id, target_number, purpose, provider_call_id, outcome, reason, created_at
FROM call_history
ORDER BY created_at DESC
LIMIT $1
`
	rows, err := db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]CallRecord, 0)
	for rows.Next() {
		var r CallRecord
		if err := rows.Scan(&r.ID, &r.ScheduledCallID, &r.TargetNumber, &r.Purpose, &r.ProviderCallID, &r.Outcome, &r.Reason, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// upsertTranscript keeps transcript writes idempotent: the vendor may deliver
// the end-of-call webhook more than once.
func upsertTranscript(ctx context.Context, db *sql.DB, t Transcript) error {
	const q = `
INSERT INTO transcripts (id, provider_call_id, body, created_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (provider_call_id)
DO UPDATE SET body = EXCLUDED.body
`
	_, err := db.ExecContext(ctx, q, t.ID, t.ProviderCallID, t.Text, t.CreatedAt)
	return err
}

func getTranscript(ctx context.Context, db *sql.DB, providerCallID string) (Transcript, error) {
	const q = `
SELECT id, provider_call_id, body, created_at
FROM transcripts
WHERE provider_call_id = $1
`
	var t Transcript
	err := db.QueryRowContext(ctx, q, providerCallID).Scan(&t.ID, &t.ProviderCallID, &t.Text, &t.CreatedAt)
	return t, err
}
