package dispatch

import "time"

// ScheduledCall is one outbound call the dispatcher owes the world.
//
// Lifecycle: pending -> calling -> {completed | failed}. There is no
// transition back to pending; a failed row is rescheduled by creating a new
// one from the dashboard.
type ScheduledCall struct {
	ID           string    `json:"id" db:"id"`
	TargetNumber string    `json:"target_number" db:"target_number"`
	Purpose      string    `json:"purpose,omitempty" db:"purpose"`
	ScheduledAt  time.Time `json:"scheduled_at" db:"scheduled_at"`

	Status Status `json:"status" db:"status"`

	// ClaimedAt is set when a pass claims the row; rows stuck in calling past
	// the visibility timeout are reclaimed as failed rather than silently
	// re-dialed.
	ClaimedAt *time.Time `json:"claimed_at,omitempty" db:"claimed_at"`

	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`
	FailureReason  string `json:"failure_reason,omitempty" db:"failure_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCalling   Status = "calling"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)
