package history

import "time"

// Conversation groups dashboard chat messages. Channel records where the
// exchange happened (dashboard chat today, messaging channels later).
type Conversation struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// CallRecord is one attempted outbound call, written by the dispatcher.
type CallRecord struct {
	ID              string    `json:"id"`
	ScheduledCallID string    `json:"scheduled_call_id"`
	TargetNumber    string    `json:"target_number"`
	Purpose         string    `json:"purpose"`
	ProviderCallID  string    `json:"provider_call_id,omitempty"`
	Outcome         string    `json:"outcome"`
	Reason          string    `json:"reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Transcript is the end-of-call text delivered by the voice vendor webhook.
type Transcript struct {
	ID             string    `json:"id"`
	ProviderCallID string    `json:"provider_call_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
}
