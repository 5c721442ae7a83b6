package posthog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute a fake.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the PostHog events API client
type Client struct {
	baseURL    string
	apiKey     string
	projectID  string
	pageLimit  int
	httpClient HTTPDoer
}

// NewClient creates a new PostHog API client
func NewClient(cfg Config, timeout time.Duration) *Client {
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = 1000
	}
	return &Client{
		baseURL:    cfg.Host,
		apiKey:     cfg.APIKey,
		projectID:  cfg.ProjectID,
		pageLimit:  limit,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// FetchPageviews pages through all $pageview events after the given
// time. It follows the API's `next` URL until none is returned. Any
// non-2xx page or transport failure stops paging; the events collected
// so far are returned alongside the error so callers can degrade to
// partial data.
func (c *Client) FetchPageviews(ctx context.Context, after time.Time) ([]Event, error) {
	params := url.Values{}
	params.Set("event", "$pageview")
	params.Set("limit", strconv.Itoa(c.pageLimit))
	params.Set("after", after.UTC().Format("2006-01-02T15:04:05"))

	next := fmt.Sprintf("%s/api/projects/%s/events/?%s", c.baseURL, c.projectID, params.Encode())

	var events []Event
	for next != "" {
		page, nextURL, err := c.fetchPage(ctx, next)
		if err != nil {
			return events, err
		}
		events = append(events, page...)
		// the next URL already carries the query parameters
		next = nextURL
	}

	return events, nil
}

func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]Event, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var page eventsResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, "", fmt.Errorf("failed to parse response: %w", err)
	}

	return page.Results, page.Next, nil
}
