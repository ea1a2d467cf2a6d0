package apiclient

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

	"github.com/frahmantamala/expense-portal/internal"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-portal/internal/core/datamodel/user"
)

const (
	maxBodyBytes   = 1 << 20
	defaultTimeout = 10 * time.Second
	traceHeader    = "X-Trace-ID"
)

// Client talks to the remote expense API. It holds no per-request state and
// is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	contract   *Contract
	logger     *slog.Logger
}

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	// Contract, when set, checks every 2xx payload against the API document.
	Contract *Contract
}

func NewClient(config Config, logger *slog.Logger) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		contract:   config.Contract,
		logger:     logger,
	}
}

func (c *Client) CreateExpense(ctx context.Context, req expense.CreateRequest) (*expense.Expense, error) {
	var created expense.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses", "/api/expenses", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (*expense.Expense, error) {
	var exp expense.Expense
	path := "/api/expenses/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, "/api/expenses/{id}", nil, &exp); err != nil {
		return nil, err
	}
	return &exp, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	path := "/api/users/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodGet, path, "/api/users/{userId}", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Decide posts an approve or reject decision and returns the expense as the
// server now holds it.
func (c *Client) Decide(ctx context.Context, id string, decision expense.Decision, approverID string) (*expense.Expense, error) {
	if _, ok := expense.ParseDecision(string(decision)); !ok {
		return nil, internal.ErrUnknownDecision
	}

	var updated expense.Expense
	path := fmt.Sprintf("/api/expenses/%s/%s", url.PathEscape(id), decision)
	pattern := fmt.Sprintf("/api/expenses/{id}/%s", decision)
	body := expense.DecisionRequest{ApproverID: approverID}
	if err := c.do(ctx, http.MethodPost, path, pattern, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Ping reports whether the API answers at all. Any response below 500 counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create ping request: %w", err)
	}
	c.setTrace(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("expense API unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return &Error{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode), Method: http.MethodGet, Path: "/"}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, pattern string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal %s %s: %w", method, pattern, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setTrace(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("expense API request failed",
			"method", method, "path", path, "error", err, "trace_id", internal.TraceIDFromContext(ctx))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("expense API request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"trace_id", internal.TraceIDFromContext(ctx))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{
			StatusCode: resp.StatusCode,
			Message:    errorText(raw, resp.StatusCode),
			Method:     method,
			Path:       path,
		}
	}

	payload := unwrap(raw)

	if c.contract != nil {
		if err := c.contract.ValidateResponse(ctx, method, pattern, resp.StatusCode, payload); err != nil {
			c.logger.Error("expense API response violates contract",
				"method", method, "path", pattern, "error", err)
			return internal.NewExternalError("Unexpected response from expense API", err)
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, pattern, err)
	}
	return nil
}

func (c *Client) setTrace(ctx context.Context, req *http.Request) {
	if traceID := internal.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set(traceHeader, traceID)
	}
}

// unwrap strips a {"success": ..., "data": ...} envelope when present.
func unwrap(raw []byte) []byte {
	var envelope struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return raw
	}
	if envelope.Success != nil && len(envelope.Data) > 0 {
		return envelope.Data
	}
	return raw
}
