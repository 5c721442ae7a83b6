// Package sms bridges to a self-hosted SMS relay running on the same
// host. Relay credentials live in the relay's own JSON config store
// and are read fresh on every send, so rotating the gateway password
// never requires a server restart.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute a fake.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// credentials is the subset of the relay's config store we need.
type credentials struct {
	Gateway  string `json:"gateway"`
	Password string `json:"password"`
}

type sendRequest struct {
	ID      string   `json:"id"`
	To      []string `json:"phone_numbers"`
	Message string   `json:"message"`
}

// Client sends messages through the relay.
type Client struct {
	credentialsPath string
	httpClient      HTTPDoer
}

// NewClient creates a new SMS relay client
func NewClient(credentialsPath string, timeout time.Duration) *Client {
	return &Client{
		credentialsPath: credentialsPath,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// Send delivers one message to the given numbers. Each call carries a
// fresh uuid so the relay can de-duplicate retried requests.
func (c *Client) Send(ctx context.Context, to []string, message string) (string, error) {
	creds, err := c.loadCredentials()
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	payload, err := json.Marshal(sendRequest{ID: id, To: to, Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.Gateway+"/message", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("sms", creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("relay error (status %d): %s", resp.StatusCode, string(body))
	}
	return id, nil
}

func (c *Client) loadCredentials() (credentials, error) {
	raw, err := os.ReadFile(c.credentialsPath)
	if err != nil {
		return credentials{}, fmt.Errorf("failed to read relay credentials: %w", err)
	}
	var creds credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return credentials{}, fmt.Errorf("failed to parse relay credentials: %w", err)
	}
	if creds.Gateway == "" || creds.Password == "" {
		return credentials{}, fmt.Errorf("relay credentials at %s are incomplete", c.credentialsPath)
	}
	return creds, nil
}
