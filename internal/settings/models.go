package settings

import "time"

// Customization is the business profile, a single mutable row addressed by a
// fixed id so writers upsert instead of racing over "latest row".
type Customization struct {
	BusinessName string `json:"business_name" db:"business_name"`
	Tone         string `json:"tone,omitempty" db:"tone"`
	Description  string `json:"description,omitempty" db:"description"`

	// FallbackPersonality is used for the system prompt only when no
	// personality row exists.
	FallbackPersonality string `json:"fallback_personality,omitempty" db:"fallback_personality"`

	Greeting  string    `json:"greeting,omitempty" db:"greeting"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Personality is a free-text system-prompt fragment. Rows are append-only;
// the newest row wins.
type Personality struct {
	ID        string    `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
