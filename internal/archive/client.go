// Package archive talks to the optional downstream archive service that
// stores parsed notebook summaries, note chunks and the dedup index.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// RetryableError marks archive failures worth retrying (network problems
// and server-side errors).
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func retryable(err error) error { return &RetryableError{Err: err} }

// Client communicates with the archive HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether an archive endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

// RecordRequest is the body for PUT /records/{key}.
type RecordRequest struct {
	Value     any    `json:"value"`
	Kind      string `json:"kind,omitempty"` // summary, chunk, meta, hash
	Source    string `json:"source,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
}

// RecordResponse is the response from GET /records/{key}.
type RecordResponse struct {
	Key   string `json:"key_path"`
	Value any    `json:"value"`
	Kind  string `json:"kind,omitempty"`
}

// PutRecord stores or updates a record at the given path.
func (c *Client) PutRecord(ctx context.Context, key string, req RecordRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/records/"+key, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return retryable(fmt.Errorf("put record: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("put record %s: status %d: %s", key, resp.StatusCode, string(respBody))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return retryable(err)
		}
		return err
	}
	return nil
}

// GetRecord retrieves a record by key. A missing record yields (nil, nil).
func (c *Client) GetRecord(ctx context.Context, key string) (*RecordResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/records/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, retryable(fmt.Errorf("get record: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get record %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}

	var record RecordResponse
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &record, nil
}

// DeleteRecord deletes a record and optionally its children.
func (c *Client) DeleteRecord(ctx context.Context, key string, recursive bool) error {
	u := c.baseURL + "/records/" + key
	if recursive {
		u += "?children=true"
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return retryable(fmt.Errorf("delete record: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("delete record %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// ListEntry is a single record from a prefix scan.
type ListEntry struct {
	Key   string `json:"key_path"`
	Value any    `json:"value"`
}

// ListRecords does a prefix scan under the given key.
func (c *Client) ListRecords(ctx context.Context, key string, limit int) ([]ListEntry, error) {
	u := c.baseURL + "/records/" + key + "/*"
	if limit > 0 {
		u += "?limit=" + url.QueryEscape(fmt.Sprintf("%d", limit))
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, retryable(fmt.Errorf("list records: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("list records %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}

	var result struct {
		Records []ListEntry `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}
	return result.Records, nil
}

// Close releases any resources (currently idle connections).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
