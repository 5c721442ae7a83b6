package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when a record or table does not exist.
var ErrNotFound = errors.New("airtable: record not found")

// HTTPDoer is the interface for executing HTTP requests.
// *http.Client satisfies it; tests substitute a fake.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ListOptions restricts a record list call
type ListOptions struct {
	FilterByFormula string
	Fields          []string
	PageSize        int
}

// Client is the Airtable records API client
type Client struct {
	baseURL    string
	token      string
	baseID     string
	httpClient HTTPDoer
}

// NewClient creates a new Airtable API client
func NewClient(cfg Config, timeout time.Duration) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		baseID:  cfg.BaseID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, table)
}

// ListRecords pages through a table using the offset token until the
// API stops returning one. A non-2xx page stops paging; the records
// collected so far are returned alongside the error so callers can
// degrade to partial data.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	var records []Record
	offset := ""
	for {
		params := url.Values{}
		params.Set("pageSize", strconv.Itoa(pageSize))
		if opts.FilterByFormula != "" {
			params.Set("filterByFormula", opts.FilterByFormula)
		}
		for _, f := range opts.Fields {
			params.Add("fields[]", f)
		}
		if offset != "" {
			params.Set("offset", offset)
		}

		body, err := c.doRequest(ctx, http.MethodGet, c.tableURL(table)+"?"+params.Encode(), nil)
		if err != nil {
			return records, err
		}

		var page listResponse
		if err := json.Unmarshal(body, &page); err != nil {
			return records, fmt.Errorf("failed to parse list response: %w", err)
		}

		records = append(records, page.Records...)
		if page.Offset == "" {
			return records, nil
		}
		offset = page.Offset
	}
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, table, id string) (*Record, error) {
	body, err := c.doRequest(ctx, http.MethodGet, c.tableURL(table)+"/"+id, nil)
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse record: %w", err)
	}
	return &rec, nil
}

// PatchRecord updates the given fields of a record, leaving all other
// fields untouched.
func (c *Client) PatchRecord(ctx context.Context, table, id string, fields map[string]interface{}) error {
	_, err := c.doRequest(ctx, http.MethodPatch, c.tableURL(table)+"/"+id, recordPatch{Fields: fields})
	return err
}

func (c *Client) doRequest(ctx context.Context, method, reqURL string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
