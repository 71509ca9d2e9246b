package review

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/audit"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/domain/model"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the engine's HTTP API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

// Is lets callers match API failures against the engine's sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case repository.ErrNotFound:
		return e.Status == http.StatusNotFound
	case audit.ErrFlagIrreversible:
		return e.Status == http.StatusConflict && e.Code == "flag_irreversible"
	}
	return false
}

// Client is a Backend that talks to the engine over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the API served at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingURL
	}
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetFlag calls POST /audit-entries/{id}/flag.
func (c *Client) SetFlag(ctx context.Context, entryID string) (model.AuditEntry, error) {
	var entry model.AuditEntry
	body := map[string]bool{"is_flagged": true}
	err := c.do(ctx, http.MethodPost, "/audit-entries/"+url.PathEscape(entryID)+"/flag", body, &entry)
	return entry, err
}

// GetAuditRecord calls GET /audits/{id}.
func (c *Client) GetAuditRecord(ctx context.Context, id string) (model.AuditRecord, error) {
	var rec model.AuditRecord
	err := c.do(ctx, http.MethodGet, "/audits/"+url.PathEscape(id), nil, &rec)
	return rec, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Code != "" {
			apiErr.Code, apiErr.Message = payload.Code, payload.Message
		}
		return apiErr
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
