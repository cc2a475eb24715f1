// Package storage persists the board as one JSON document in a remote
// key-value store, and wraps that transport with snapshot export/import
// and a bounded retry/recovery layer.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/valter-silva-au/bounty-board/pkg/models"
)

// Client issues requests against the key-value store's HTTP surface.
// Dates travel as RFC 3339 strings on the wire and are rehydrated to
// time.Time values by the JSON codec.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a store client for the given base URL. A nil
// httpc uses a client with a 10 second timeout.
func NewClient(baseURL string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   httpc,
	}
}

// LoadRaw fetches the stored document without decoding it.
func (c *Client) LoadRaw(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/data", nil)
	if err != nil {
		return nil, fmt.Errorf("loading board data: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading board data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("loading board data: store returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("loading board data: reading response: %w", err)
	}
	return body, nil
}

// Load fetches and decodes the stored document. A missing or empty
// document yields an empty state, not an error.
func (c *Client) Load(ctx context.Context) (models.AppState, error) {
	raw, err := c.LoadRaw(ctx)
	if err != nil {
		return models.EmptyState(), err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return models.EmptyState(), nil
	}
	state, err := decodeDocument(raw)
	if err != nil {
		return models.EmptyState(), fmt.Errorf("loading board data: %w", err)
	}
	return state, nil
}

// saveResponse is the store's acknowledgement shape.
type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Save writes the full versioned document. The write is only considered
// confirmed when the store acknowledges with success.
func (c *Client) Save(ctx context.Context, state models.AppState) error {
	body, err := json.Marshal(state.Document())
	if err != nil {
		return fmt.Errorf("saving board data: encoding document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/data", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("saving board data: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("saving board data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var ack saveResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return fmt.Errorf("saving board data: store returned %s", resp.Status)
	}
	if resp.StatusCode != http.StatusOK || !ack.Success {
		msg := ack.Error
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("saving board data: store rejected write: %s", msg)
	}
	return nil
}

// Clear deletes the stored document.
func (c *Client) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/data", nil)
	if err != nil {
		return fmt.Errorf("clearing board data: %w", err)
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("clearing board data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clearing board data: store returned %s", resp.Status)
	}
	return nil
}

// Backup stores raw bytes under a timestamped backup key so corrupted
// documents can be inspected after recovery discards them.
func (c *Client) Backup(ctx context.Context, raw []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/backups", bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("backing up board data: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("backing up board data: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backing up board data: store returned %s", resp.Status)
	}
	return nil
}
