package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"becca-platform/internal/config"
	"becca-platform/internal/upstream"
)

// Cloner is the provider-agnostic speech-cloning surface.
type Cloner interface {
	Name() string
	// AddVoice clones a voice from an audio sample and returns the vendor
	// voice id.
	AddVoice(ctx context.Context, name string, sample io.Reader, filename string) (string, error)
	DeleteVoice(ctx context.Context, voiceID string) error
}

const defaultBaseURL = "https://api.elevenlabs.io/v1"

// Client talks to the speech-cloning vendor.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(cfg config.SpeechConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("speech: SPEECH_API_KEY is required (speech-cloning auth)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "speech" }

func (c *Client) AddVoice(ctx context.Context, name string, sample io.Reader, filename string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("speech: voice name is required")
	}
	if sample == nil {
		return "", fmt.Errorf("speech: audio sample is required")
	}
	if filename == "" {
		filename = "sample.mp3"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", name); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, sample); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/voices/add", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("speech: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var wire struct {
		VoiceID string `json:"voice_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return "", err
	}
	return wire.VoiceID, nil
}

func (c *Client) DeleteVoice(ctx context.Context, voiceID string) error {
	if voiceID == "" {
		return fmt.Errorf("speech: voice id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/voices/"+voiceID, nil)
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("speech: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	return nil
}
