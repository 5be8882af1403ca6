package voice

import (
	"context"
	"errors"
	"time"
)

// Provider defines the provider-agnostic voice-AI surface used by business logic.
//
// Rules:
// - No vendor HTTP calls outside voice adapters.
// - Assistant updates are merges over the current vendor state, never blind
//   replaces: a prompt-only update must leave tool bindings and voice
//   settings untouched.
type Provider interface {
	Name() string
	HealthCheck(ctx context.Context) error

	GetAssistant(ctx context.Context, assistantID string) (Assistant, error)
	// UpdateAssistantPrompt patches only the system prompt, re-sending the
	// assistant's current tool bindings and voice settings.
	UpdateAssistantPrompt(ctx context.Context, assistantID, systemPrompt string) (Assistant, error)
	// UpdateAssistantVoice patches only the voice settings, re-sending the
	// assistant's current tool bindings and model config.
	UpdateAssistantVoice(ctx context.Context, assistantID string, v VoiceSettings) (Assistant, error)

	ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error)
	ListVoices(ctx context.Context) ([]Voice, error)

	CreateCall(ctx context.Context, req CallRequest) (Call, error)
	EndCall(ctx context.Context, callID string) error
}

var ErrNotFound = errors.New("voice: not found")

// Assistant is the vendor's assistant configuration object.
type Assistant struct {
	ID    string        `json:"id"`
	Name  string        `json:"name,omitempty"`
	Model ModelConfig   `json:"model"`
	Voice VoiceSettings `json:"voice"`

	// FirstMessage is the assistant's opening line on a call.
	FirstMessage string `json:"firstMessage,omitempty"`
}

// ModelConfig is the assistant's LLM configuration, including tool bindings.
// ToolIDs must survive any partial update (read-before-write merge).
type ModelConfig struct {
	Provider     string   `json:"provider,omitempty"`
	Model        string   `json:"model,omitempty"`
	SystemPrompt string   `json:"systemPrompt,omitempty"`
	ToolIDs      []string `json:"toolIds,omitempty"`
}

// VoiceSettings selects the synthesized voice.
type VoiceSettings struct {
	Provider string `json:"provider,omitempty"`
	VoiceID  string `json:"voiceId,omitempty"`
}

// PhoneNumber is a vendor-hosted caller-ID number.
type PhoneNumber struct {
	ID     string `json:"id"`
	Number string `json:"number"`
}

// Voice is an available synthesized voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// CallRequest asks the vendor to place one outbound call.
type CallRequest struct {
	AssistantID    string `json:"assistant_id"`
	PhoneNumberID  string `json:"phone_number_id"`
	CustomerNumber string `json:"customer_number"`

	// SystemPromptOverride replaces the assistant prompt for this call only.
	SystemPromptOverride string `json:"system_prompt_override,omitempty"`
	FirstMessageOverride string `json:"first_message_override,omitempty"`
}

// Call is the vendor's view of a placed call.
type Call struct {
	ID        string    `json:"id"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
