// Package api is the HTTP client for the lead-qualification chat
// backend: send a turn, reserve a slot, list open slots.
package api

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
)

// Client calls the chat backend. Implemented by HTTPClient and the
// scripted mock in mock.go.
type Client interface {
	// Send submits one user turn and returns the backend's reply.
	Send(ctx context.Context, message, sessionID string) (*ChatResponse, error)

	// Reserve books the given slot for the session.
	Reserve(ctx context.Context, slotID, sessionID string, window TimeWindow) (*ReserveResponse, error)

	// Slots lists open slots, optionally bounded to an ISO-8601 range.
	Slots(ctx context.Context, sessionID, rangeStart, rangeEnd string) ([]WireSlot, error)
}

// TransportError reports a non-success response from the backend.
type TransportError struct {
	Status int
	Body   string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("backend error (%d): %s", e.Status, e.Body)
}

// HTTPClient is the production Client over plain HTTP JSON.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a client for the backend at baseURL
// (e.g. "http://localhost:8000/api").
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Send(ctx context.Context, message, sessionID string) (*ChatResponse, error) {
	body := map[string]string{"message": message, "sessionId": sessionID}

	var resp ChatResponse
	if err := c.postJSON(ctx, "/chat", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Reserve(ctx context.Context, slotID, sessionID string, window TimeWindow) (*ReserveResponse, error) {
	body := map[string]string{"slotId": slotID, "sessionId": sessionID}
	if window.StartISO != "" {
		body["startIso"] = window.StartISO
	}
	if window.EndISO != "" {
		body["endIso"] = window.EndISO
	}

	var resp ReserveResponse
	if err := c.postJSON(ctx, "/schedule", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) Slots(ctx context.Context, sessionID, rangeStart, rangeEnd string) ([]WireSlot, error) {
	q := url.Values{"sessionId": {sessionID}}
	if rangeStart != "" {
		q.Set("rangeStart", rangeStart)
	}
	if rangeEnd != "" {
		q.Set("rangeEnd", rangeEnd)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/slots?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var resp struct {
		Slots []WireSlot `json:"slots"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Slots, nil
}

func (c *HTTPClient) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{Status: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}
