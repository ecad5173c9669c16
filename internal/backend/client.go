// ABOUTME: HTTP client for the remote multi-agent chat backend
// ABOUTME: Implements the chat completion call and best-effort session deletion

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultTimeout bounds each chat request. Expiry is treated like any
	// other transport failure.
	DefaultTimeout = 60 * time.Second

	// maxResponseSize caps how much of a response body is read.
	maxResponseSize = 10 * 1024 * 1024

	// errorBodySnippet is how much of an error body is kept for logging.
	errorBodySnippet = 512
)

// Client talks to the remote chat backend over HTTP. It is safe for
// concurrent use; sends for different conversations may overlap.
type Client struct {
	baseURL    string
	userID     string
	workspace  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a backend client. The timeout applies per request; pass
// zero for DefaultTimeout. Pass nil logger for the default.
func NewClient(baseURL, userID, workspace string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userID:    userID,
		workspace: workspace,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With("component", "backend"),
	}
}

// chatRequest is the JSON body sent to POST /api/chat.
type chatRequest struct {
	Message   string `json:"message"`
	UserID    string `json:"user_id"`
	Workspace string `json:"workspace"`
	SessionID string `json:"session_id"`
}

// chatResponse is the JSON success payload from POST /api/chat.
type chatResponse struct {
	Response  string `json:"response"`
	Agent     string `json:"agent"`
	SessionID string `json:"session_id"`
	TurnCount int    `json:"turn_count"`
	Timestamp string `json:"timestamp"`
}

// ChatResult is the parsed outcome of a successful chat call.
type ChatResult struct {
	Response  string
	Agent     string
	SessionID string
	TurnCount int
	Timestamp time.Time
}

// SendMessage posts a user message to the backend and returns the
// assistant's reply. Session continuity is keyed by sessionID. Failures are
// classified as *TransportError or *ServerError; both are recoverable.
func (c *Client) SendMessage(ctx context.Context, sessionID, message string) (*ChatResult, error) {
	body, err := json.Marshal(chatRequest{
		Message:   message,
		UserID:    c.userID,
		Workspace: c.workspace,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, &TransportError{Op: "send", Err: fmt.Errorf("marshaling request: %w", err)}
	}

	endpoint := c.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: "send", Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("chat request failed",
			"session_id", sessionID,
			"error", err)
		return nil, &TransportError{Op: "send", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := readSnippet(resp.Body)
		c.logger.Debug("chat request rejected",
			"session_id", sessionID,
			"status", resp.StatusCode,
			"body", snippet)
		return nil, &ServerError{Op: "send", StatusCode: resp.StatusCode, Body: snippet}
	}

	var payload chatResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&payload); err != nil {
		return nil, &TransportError{Op: "send", Err: fmt.Errorf("parsing response: %w", err)}
	}

	result := &ChatResult{
		Response:  payload.Response,
		Agent:     payload.Agent,
		SessionID: payload.SessionID,
		TurnCount: payload.TurnCount,
		Timestamp: parseTimestamp(payload.Timestamp),
	}

	c.logger.Debug("chat request completed",
		"session_id", sessionID,
		"agent", result.Agent,
		"turn_count", result.TurnCount,
		"duration", time.Since(start))

	return result, nil
}

// DeleteSession asks the backend to drop a session. Best-effort: a missing
// session (404) is success, and callers are expected to ignore any error.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	endpoint := c.baseURL + "/api/sessions/" + url.PathEscape(sessionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return &TransportError{Op: "delete_session", Err: fmt.Errorf("creating request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "delete_session", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))

	if resp.StatusCode == http.StatusNotFound {
		// Remote session absence is an expected, non-error outcome.
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Op: "delete_session", StatusCode: resp.StatusCode}
	}
	return nil
}

// parseTimestamp parses the backend's RFC 3339 timestamp, falling back to
// the local clock when the value is missing or malformed.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Now()
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Now()
	}
	return t
}

// readSnippet reads up to errorBodySnippet bytes of an error body.
func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, errorBodySnippet))
	if err != nil {
		return ""
	}
	return string(data)
}
