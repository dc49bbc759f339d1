package flagsmith

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseSizeBytes = 1 << 20

type Config struct {
	BaseURL        string        `envconfig:"BASE_URL" split_words:"true" default:"https://edge.api.flagsmith.com/api/v1"`
	EnvironmentKey string        `envconfig:"ENVIRONMENT_KEY" split_words:"true" required:"true"`
	Timeout        time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// Client talks to the Flagsmith environment-flags REST endpoint.
type Client struct {
	baseURL        string
	environmentKey string
	httpClient     *http.Client
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func NewClient(cfg Config, opts ...ClientOption) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("flagsmith base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid flagsmith base url: %w", err)
	}

	environmentKey := strings.TrimSpace(cfg.EnvironmentKey)
	if environmentKey == "" {
		return nil, errors.New("flagsmith environment key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL:        baseURL,
		environmentKey: environmentKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

func MustNew(cfg Config, opts ...ClientOption) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

type flagEnvelope struct {
	Feature struct {
		Name string `json:"name"`
	} `json:"feature"`
	Enabled bool `json:"enabled"`
}

// EnvironmentFlags fetches the full flag set for the configured environment.
func (c *Client) EnvironmentFlags(ctx context.Context) (map[string]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/flags/", nil)
	if err != nil {
		return nil, fmt.Errorf("build flagsmith request: %w", err)
	}
	req.Header.Set("X-Environment-Key", c.environmentKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute flagsmith request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read flagsmith response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("flagsmith http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var envelopes []flagEnvelope
	if err := json.Unmarshal(raw, &envelopes); err != nil {
		return nil, fmt.Errorf("decode flagsmith response: %w", err)
	}

	flags := make(map[string]bool, len(envelopes))
	for _, e := range envelopes {
		name := strings.TrimSpace(e.Feature.Name)
		if name == "" {
			continue
		}
		flags[name] = e.Enabled
	}
	return flags, nil
}

// State reports whether one flag is enabled. Unknown flags read as disabled.
func (c *Client) State(ctx context.Context, flag string) (bool, error) {
	if strings.TrimSpace(flag) == "" {
		return false, errors.New("flag name is empty")
	}
	flags, err := c.EnvironmentFlags(ctx)
	if err != nil {
		return false, err
	}
	return flags[flag], nil
}
