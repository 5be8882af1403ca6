package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"becca-platform/internal/config"
	"becca-platform/internal/upstream"
)

const defaultBaseURL = "https://serpapi.com"

// Result is one organic web result.
type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet,omitempty"`
}

// Searcher is the web-search surface used by the handlers.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]Result, error)
}

// Client proxies queries to the web-search vendor.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

func NewClient(cfg config.SearchConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("search: SEARCH_API_KEY is required (web-search auth)")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (c *Client) Name() string { return "search" }

func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search: query is required")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &upstream.Error{Provider: c.Name(), StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	var wire struct {
		OrganicResults []Result `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, err
	}
	if wire.OrganicResults == nil {
		wire.OrganicResults = []Result{}
	}
	return wire.OrganicResults, nil
}
