// Package apiclient talks to the remote business API that owns every record
// rendered by the admin front-end.
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
)

// Observer receives the outcome of every backend call.
type Observer interface {
	ObserveUpstream(endpoint string, status int, elapsed time.Duration)
}

type tokenContextKey struct{}

// ContextWithToken attaches the operator's bearer token for outgoing calls.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// Client issues JSON requests against the backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a metrics observer.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// New constructs a Client for baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
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

// Get issues a GET request and returns the raw response body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(path, 0, start)
		c.logger.Warn("backend call failed", slog.String("method", method), slog.String("path", path), slog.Any("error", err))
		return nil, &Error{Method: method, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.observe(path, resp.StatusCode, start)

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		c.logger.Warn("backend returned error", slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))
		return nil, &Error{Method: method, Path: path, Status: resp.StatusCode, Body: errorBody(payload)}
	}
	return payload, nil
}

func (c *Client) observe(path string, status int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstream(endpointLabel(path), status, time.Since(start))
}

// endpointLabel keeps the path without its query for metric labels.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return "/" + strings.TrimLeft(path, "/")
}

// errorBody extracts a readable message from an error response: a JSON string,
// a Message/message/Data field, or the raw text.
func errorBody(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err == nil {
		if msg := rec.String("Message", "message", "Data", "error", "title"); msg != "" {
			return msg
		}
	}
	return string(trimmed)
}

// envelope is the common `{ "Data": ... }` response shape.
type envelope[T any] struct {
	Data T `json:"Data"`
}

// DecodeData unmarshals the Data member of an envelope. Bare payloads of the
// expected shape are accepted as well.
func DecodeData[T any](payload []byte) (T, error) {
	var env envelope[T]
	var zero T
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return zero, nil
	}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err == nil {
			if raw, ok := fields["Data"]; ok {
				if err := json.Unmarshal(raw, &env.Data); err != nil {
					return zero, fmt.Errorf("apiclient: decode data: %w", err)
				}
				return env.Data, nil
			}
		}
	}
	var bare T
	if err := json.Unmarshal(trimmed, &bare); err != nil {
		return zero, fmt.Errorf("apiclient: decode payload: %w", err)
	}
	return bare, nil
}

// DecodeMessage reads a status message response, which the backend sends as a
// JSON string, an envelope with a string Data member, or plain text.
func DecodeMessage(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var rec Record
	if err := json.Unmarshal(trimmed, &rec); err == nil {
		return rec.String("Data", "Message", "message", "Result")
	}
	return string(trimmed)
}
