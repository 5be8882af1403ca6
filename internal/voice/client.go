package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"becca-platform/internal/config"
	"becca-platform/internal/upstream"
)

const defaultBaseURL = "https://api.vapi.ai"

// Client talks to the hosted voice-AI vendor over its REST API.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(cfg config.VoiceConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("voice: VOICE_API_KEY is required (voice provider auth)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "voice" }

func (c *Client) HealthCheck(ctx context.Context) error {
	// Listing numbers is the cheapest authenticated round trip the vendor offers.
	_, err := c.ListPhoneNumbers(ctx)
	return err
}

// assistantWire is the vendor's assistant shape.
type assistantWire struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	FirstMessage string `json:"firstMessage,omitempty"`
	Model        struct {
		Provider     string   `json:"provider,omitempty"`
		Model        string   `json:"model,omitempty"`
		SystemPrompt string   `json:"systemPrompt,omitempty"`
		ToolIDs      []string `json:"toolIds,omitempty"`
	} `json:"model"`
	Voice struct {
		Provider string `json:"provider,omitempty"`
		VoiceID  string `json:"voiceId,omitempty"`
	} `json:"voice"`
}

func (w assistantWire) toAssistant() Assistant {
	return Assistant{
		ID:           w.ID,
		Name:         w.Name,
		FirstMessage: w.FirstMessage,
		Model: ModelConfig{
			Provider:     w.Model.Provider,
			Model:        w.Model.Model,
			SystemPrompt: w.Model.SystemPrompt,
			ToolIDs:      w.Model.ToolIDs,
		},
		Voice: VoiceSettings{
			Provider: w.Voice.Provider,
			VoiceID:  w.Voice.VoiceID,
		},
	}
}

func (c *Client) GetAssistant(ctx context.Context, assistantID string) (Assistant, error) {
	var w assistantWire
	if err := c.do(ctx, http.MethodGet, "/assistant/"+assistantID, nil, &w); err != nil {
		return Assistant{}, err
	}
	return w.toAssistant(), nil
}

func (c *Client) UpdateAssistantPrompt(ctx context.Context, assistantID, systemPrompt string) (Assistant, error) {
	// Read-before-write: fetch current tool bindings and voice settings so the
	// patch is a merge, not a destructive overwrite.
	cur, err := c.GetAssistant(ctx, assistantID)
	if err != nil {
		return Assistant{}, err
	}

	body := map[string]any{
		"model": map[string]any{
			"provider":     cur.Model.Provider,
			"model":        cur.Model.Model,
			"systemPrompt": systemPrompt,
			"toolIds":      cur.Model.ToolIDs,
		},
		"voice": map[string]any{
			"provider": cur.Voice.Provider,
			"voiceId":  cur.Voice.VoiceID,
		},
	}

	var w assistantWire
	if err := c.do(ctx, http.MethodPatch, "/assistant/"+assistantID, body, &w); err != nil {
		return Assistant{}, err
	}
	return w.toAssistant(), nil
}

func (c *Client) UpdateAssistantVoice(ctx context.Context, assistantID string, v VoiceSettings) (Assistant, error) {
	cur, err := c.GetAssistant(ctx, assistantID)
	if err != nil {
		return Assistant{}, err
	}

	body := map[string]any{
		"model": map[string]any{
			"provider":     cur.Model.Provider,
			"model":        cur.Model.Model,
			"systemPrompt": cur.Model.SystemPrompt,
			"toolIds":      cur.Model.ToolIDs,
		},
		"voice": map[string]any{
			"provider": v.Provider,
			"voiceId":  v.VoiceID,
		},
	}

	var w assistantWire
	if err := c.do(ctx, http.MethodPatch, "/assistant/"+assistantID, body, &w); err != nil {
		return Assistant{}, err
	}
	return w.toAssistant(), nil
}

func (c *Client) ListPhoneNumbers(ctx context.Context) ([]PhoneNumber, error) {
	var wire []struct {
		ID     string `json:"id"`
		Number string `json:"number"`
	}
	if err := c.do(ctx, http.MethodGet, "/phone-number", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]PhoneNumber, 0, len(wire))
	for _, n := range wire {
		out = append(out, PhoneNumber{ID: n.ID, Number: n.Number})
	}
	return out, nil
}

func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	var wire struct {
		Voices []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Provider string `json:"provider"`
		} `json:"voices"`
	}
	if err := c.do(ctx, http.MethodGet, "/voice", nil, &wire); err != nil {
		return nil, err
	}
	out := make([]Voice, 0, len(wire.Voices))
	for _, v := range wire.Voices {
		out = append(out, Voice{ID: v.ID, Name: v.Name, Provider: v.Provider})
	}
	return out, nil
}

func (c *Client) CreateCall(ctx context.Context, req CallRequest) (Call, error) {
	if req.AssistantID == "" || req.PhoneNumberID == "" || req.CustomerNumber == "" {
		return Call{}, fmt.Errorf("voice: assistant, phone number and customer number are required")
	}

	body := map[string]any{
		"assistantId":   req.AssistantID,
		"phoneNumberId": req.PhoneNumberID,
		"customer": map[string]any{
			"number": req.CustomerNumber,
		},
	}
	if req.SystemPromptOverride != "" || req.FirstMessageOverride != "" {
		overrides := map[string]any{}
		if req.SystemPromptOverride != "" {
			overrides["model"] = map[string]any{"systemPrompt": req.SystemPromptOverride}
		}
		if req.FirstMessageOverride != "" {
			overrides["firstMessage"] = req.FirstMessageOverride
		}
		body["assistantOverrides"] = overrides
	}

	var wire struct {
		ID        string    `json:"id"`
		Status    string    `json:"status"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := c.do(ctx, http.MethodPost, "/call", body, &wire); err != nil {
		return Call{}, err
	}
	return Call{ID: wire.ID, Status: wire.Status, CreatedAt: wire.CreatedAt}, nil
}

func (c *Client) EndCall(ctx context.Context, callID string) error {
	if callID == "" {
		return fmt.Errorf("voice: call id is required")
	}
	return c.do(ctx, http.MethodDelete, "/call/"+callID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("voice: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
