package mailer

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

const defaultBaseURL = "https://api.resend.com"

// Email is one transactional message.
type Email struct {
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Sender is the transactional-email surface used by the handlers.
type Sender interface {
	Name() string
	Send(ctx context.Context, e Email) (string, error)
}

// Client proxies sends to the transactional-email vendor.
type Client struct {
	apiKey  string
	baseURL string
	from    string
	httpc   *http.Client
}

func NewClient(cfg config.EmailConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("mailer: EMAIL_API_KEY is required (transactional-email auth)")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mailer: EMAIL_FROM_ADDRESS is required (sender identity)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		from:    cfg.FromAddress,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "mailer" }

// Send delivers one email and returns the vendor message id.
func (c *Client) Send(ctx context.Context, e Email) (string, error) {
	if len(e.To) == 0 {
		return "", fmt.Errorf("mailer: at least one recipient is required")
	}
	if strings.TrimSpace(e.Subject) == "" {
		return "", fmt.Errorf("mailer: subject is required")
	}

	body := map[string]any{
		"from":    c.from,
		"to":      e.To,
		"subject": e.Subject,
		"html":    e.HTML,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailer: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var wire struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", err
	}
	return wire.ID, nil
}
