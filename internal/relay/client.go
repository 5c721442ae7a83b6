// Package relay bridges dashboard questions to a self-hosted
// assistant relay on the same host, used as the chat fallback when
// the local model runner is not available.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute a fake.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type askRequest struct {
	Message string `json:"message"`
	Channel string `json:"channel"`
}

type askResponse struct {
	Response string `json:"response"`
}

// Client talks to the assistant relay's chat endpoint.
type Client struct {
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new assistant-relay client
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// Ask sends one message on the webchat channel and returns the
// relay's reply. A body without a structured response field falls
// back to the raw text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(askRequest{Message: message, Channel: "webchat"})
	if err != nil {
		return "", fmt.Errorf("failed to marshal ask request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ask request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("relay error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed askResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Response != "" {
		return parsed.Response, nil
	}
	return string(body), nil
}
