package audit

import "time"

// Event is an immutable, append-only audit record of an owner action.
//
// Invariants:
// - Events are never updated or deleted.
// - Audit writes are best-effort; do not block business flows on failures.
type Event struct {
	ID string `json:"id" db:"id"`

	// Type indicates the business category of the audit record.
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event.
	ActorUserID string `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// Message is a short human-readable description for internal ops.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventTypeChannelToggle   EventType = "channel_toggle"
	EventTypeChannelConnect  EventType = "channel_connection"
	EventTypeCustomization   EventType = "customization_change"
	EventTypePersonality     EventType = "personality_change"
	EventTypeAssistantChange EventType = "assistant_change"
	EventTypeCallScheduled   EventType = "call_scheduled"
	EventTypeWalletChange    EventType = "wallet_change"
)
