// Package target implements the client for the downstream catalog's
// paginated HTTP API and the SKU identity index built from it.
package target

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// Record is one catalog record as returned by the target API. Identity
// lives in metadata and in per-variant SKUs, never in a dedicated column.
type Record struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Handle   string         `json:"handle"`
	Metadata map[string]any `json:"metadata"`
	Variants []Variant      `json:"variants,omitempty"`
}

// Variant is one sellable variant nested under a Record.
type Variant struct {
	ID  string `json:"id"`
	SKU string `json:"sku"`
}

// Page is one page of the target's list endpoint.
type Page struct {
	Items []Record `json:"items"`
	Count int      `json:"count"`
}

// CreateRecord is the creation payload.
type CreateRecord struct {
	Title       string         `json:"title"`
	Handle      string         `json:"handle"`
	Subtitle    string         `json:"subtitle,omitempty"`
	Description string         `json:"description,omitempty"`
	Status      string         `json:"status"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdateRecord is the partial update payload.
type UpdateRecord struct {
	Metadata map[string]any `json:"metadata"`
}

// StatusError reports a non-2xx response from the target API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("target returned status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the target catalog API. Every call carries a deadline
// derived from the configured timeout.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	httpc   *http.Client
}

// NewClient builds a client from the target configuration.
func NewClient(cfg types.TargetConfig) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		timeout: cfg.Timeout,
		httpc:   &http.Client{},
	}
}

// List fetches one page of records.
func (c *Client) List(ctx context.Context, limit, offset int) (Page, error) {
	var page Page
	path := fmt.Sprintf("/records?limit=%d&offset=%d", limit, offset)
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// Create creates a record and returns it with its assigned id.
func (c *Client) Create(ctx context.Context, rec CreateRecord) (Record, error) {
	var created Record
	if err := c.do(ctx, http.MethodPost, "/records", rec, &created); err != nil {
		return Record{}, err
	}
	return created, nil
}

// Update issues a partial update against an existing record.
func (c *Client) Update(ctx context.Context, id string, upd UpdateRecord) error {
	return c.do(ctx, http.MethodPatch, "/records/"+id, upd, nil)
}

// do runs one JSON round trip under the per-call deadline. Non-2xx
// responses surface as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("calling %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s response: %w", method, path, err)
	}
	return nil
}
