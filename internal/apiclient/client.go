// Package apiclient talks to the activities API over HTTP/JSON.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"example.com/activityboard/internal/domain"
)

const (
	opList       = "list"
	opSignup     = "signup"
	opUnregister = "unregister"
)

// RequestIDHeader carries a per-request correlation id to the API.
const RequestIDHeader = "X-Request-ID"

// Option configures optional behaviour for the Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger overrides the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client issues list, signup and unregister calls against the activities API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New constructs a Client. A zero timeout leaves requests bounded only by the
// transport and the caller's context.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// List fetches the full activity catalog.
func (c *Client) List(ctx context.Context) (domain.Catalog, error) {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/activities", opList)
	if err != nil {
		return domain.Catalog{}, err
	}
	defer resp.Body.Close()

	catalog, err := domain.DecodeCatalog(resp.Body)
	if err != nil {
		recordRequest(opList, outcomeTransport)
		return domain.Catalog{}, &TransportError{Op: opList, Err: err}
	}
	if !successful(resp.StatusCode) {
		recordRequest(opList, outcomeRejected)
		return domain.Catalog{}, &RejectionError{Op: opList, StatusCode: resp.StatusCode}
	}
	recordRequest(opList, outcomeOK)
	return catalog, nil
}

// Signup registers email for the named activity.
func (c *Client) Signup(ctx context.Context, activity, email string) (Reply, error) {
	return c.mutate(ctx, opSignup, activity, email)
}

// Unregister removes email from the named activity.
func (c *Client) Unregister(ctx context.Context, activity, email string) (Reply, error) {
	return c.mutate(ctx, opUnregister, activity, email)
}

func (c *Client) mutate(ctx context.Context, op, activity, email string) (Reply, error) {
	resp, err := c.do(ctx, http.MethodPost, c.mutationURL(op, activity, email), op)
	if err != nil {
		return Reply{}, err
	}
	defer resp.Body.Close()

	var reply Reply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		recordRequest(op, outcomeTransport)
		return Reply{}, &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if !successful(resp.StatusCode) {
		recordRequest(op, outcomeRejected)
		return reply, &RejectionError{Op: op, StatusCode: resp.StatusCode, Reply: reply}
	}
	recordRequest(op, outcomeOK)
	return reply, nil
}

func (c *Client) mutationURL(op, activity, email string) string {
	return fmt.Sprintf("%s/activities/%s/%s?email=%s", c.baseURL, url.PathEscape(activity), op, url.QueryEscape(email))
}

func (c *Client) do(ctx context.Context, method, target, op string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		recordRequest(op, outcomeTransport)
		return nil, &TransportError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observeLatency(op, time.Since(start))
	if err != nil {
		recordRequest(op, outcomeTransport)
		return nil, &TransportError{Op: op, Err: err}
	}
	c.logger.Debug("activities api call", "op", op, "method", method, "url", req.URL.Redacted(), "status", resp.StatusCode, "request_id", requestID)
	return resp, nil
}

func successful(status int) bool {
	return status >= 200 && status < 300
}

// Reply is the body of a signup or unregister response.
type Reply struct {
	Message string
	Detail  string
}

// UnmarshalJSON accepts message and detail values of any JSON type; non-string
// values are kept as their compact JSON text.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return fmt.Errorf("expected JSON object, got null")
	}
	r.Message = textOf(raw["message"])
	r.Detail = textOf(raw["detail"])
	return nil
}

func textOf(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
