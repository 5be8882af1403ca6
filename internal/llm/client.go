package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"becca-platform/internal/config"
	"becca-platform/internal/upstream"
)

const defaultBaseURL = "https://api.openai.com/v1"
const defaultModel = "gpt-4o-mini"

// Message is one turn of a conversation sent to the gateway.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Gateway is the chat-completion surface used by the chat handlers.
type Gateway interface {
	Name() string
	Complete(ctx context.Context, messages []Message) (string, error)
	// Stream invokes fn for every content delta. fn returning an error stops
	// the stream and propagates.
	Stream(ctx context.Context, messages []Message, fn func(delta string) error) error
}

// Client talks to an OpenAI-compatible chat gateway.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	httpc   *http.Client
}

func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: LLM_API_KEY is required (chat gateway auth)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		model:   model,
		// Streams can legitimately run long; the per-request context bounds them.
		httpc: &http.Client{Timeout: 0},
	}, nil
}

func (c *Client) Name() string { return "llm" }

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	resp, err := c.post(ctx, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var wire struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", err
	}
	if len(wire.Choices) == 0 {
		return "", fmt.Errorf("llm: empty completion")
	}
	return wire.Choices[0].Message.Content, nil
}

func (c *Client) Stream(ctx context.Context, messages []Message, fn func(delta string) error) error {
	resp, err := c.post(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}

		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			// Skip malformed keepalive frames; the terminal [DONE] still arrives.
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		if err := fn(chunk.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (c *Client) post(ctx context.Context, messages []Message, stream bool) (*http.Response, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("llm: at least one message is required")
	}

	body := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   stream,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}
