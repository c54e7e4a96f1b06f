// Package api performs outbound REST calls with consistent auth injection,
// timeout-driven cancellation, structured logging and a normalized result
// envelope. Page-level code never touches net/http directly.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tanveerafzal/id-verify-sub000/pkg/logger"
	"github.com/tanveerafzal/id-verify-sub000/pkg/metrics"
	"github.com/tanveerafzal/id-verify-sub000/pkg/urlresolve"
)

// DefaultTimeout bounds a call when neither the client nor the options set one.
const DefaultTimeout = 30 * time.Second

// User-facing transport error messages.
const (
	msgTimeout       = "Request timed out. Please try again."
	msgNetwork       = "Network error. Please check your connection."
	msgInvalidFormat = "Invalid response format."
	msgUnexpected    = "An unexpected error occurred."
)

// TokenSource supplies the bearer token for generic calls. The session store
// implements it with partner, admin, user precedence.
type TokenSource interface {
	BearerToken() (string, bool)
}

// Envelope is the normalized outcome of one call. Exactly one of Data and
// Error carries the result; Status is 0 exactly when no HTTP response
// arrived.
type Envelope[T any] struct {
	Data   T      `json:"data"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status"`
	OK     bool   `json:"ok"`
}

// Options customizes a single call.
type Options struct {
	Method  string
	Body    any
	Headers map[string]string
	Timeout time.Duration

	// Token pins the call to an explicit realm token, bypassing the
	// TokenSource precedence.
	Token string

	// SkipTokenSource suppresses the TokenSource fallback when Token is
	// empty, so realm-pinned calls never borrow another realm's token.
	SkipTokenSource bool
}

// Client wraps an http.Client with the toolkit's call conventions.
type Client struct {
	httpClient *http.Client
	resolver   urlresolve.Resolver
	tokens     TokenSource
	metrics    *metrics.APIMetrics
	timeout    time.Duration
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTokenSource wires session storage into generic calls.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithMetrics enables prometheus instrumentation.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithTimeout changes the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New constructs a Client resolving endpoints through resolver.
func New(resolver urlresolve.Resolver, opts ...Option) *Client {
	cli := &Client{
		httpClient: &http.Client{},
		resolver:   resolver,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Do performs one call and always resolves to an Envelope; it never returns
// a Go error. The endpoint is a logical path such as /api/partners/profile.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts Options) Envelope[T] {
	if ctx == nil {
		ctx = context.Background()
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	target := c.resolver.APIURL(endpoint)

	var env Envelope[T]

	var bodyReader io.Reader
	if opts.Body != nil {
		payload, err := json.Marshal(opts.Body)
		if err != nil {
			logger.API.Error(method, endpoint, err, 0)
			env.Error = msgUnexpected
			return env
		}
		bodyReader = bytes.NewReader(payload)
	}

	headers := map[string]string{"Content-Type": "application/json"}
	for key, value := range opts.Headers {
		headers[key] = value
	}
	token := opts.Token
	if token == "" && !opts.SkipTokenSource && c.tokens != nil {
		if fromStore, ok := c.tokens.BearerToken(); ok {
			token = fromStore
		}
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	requestID := uuid.NewString()
	headers["X-Request-ID"] = requestID

	logger.API.Request(method, endpoint, opts.Body, redactHeaders(headers))

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sw := logger.Timer(fmt.Sprintf("api %s %s", method, endpoint))

	req, err := http.NewRequestWithContext(callCtx, method, target, bodyReader)
	if err != nil {
		logger.API.Error(method, endpoint, err, sw.End(apiCtx(requestID)))
		env.Error = msgUnexpected
		return env
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		durationMs := sw.End(apiCtx(requestID))
		env.Error = classifyTransportError(err, c.metrics)
		c.metrics.Record(method, 0, msToDuration(durationMs))
		logger.API.Error(method, endpoint, err, durationMs)
		return env
	}
	defer resp.Body.Close()
	env.Status = resp.StatusCode

	body, err := io.ReadAll(resp.Body)
	durationMs := sw.End(apiCtx(requestID))
	if err != nil {
		env.Error = msgNetwork
		c.metrics.Record(method, resp.StatusCode, msToDuration(durationMs))
		logger.API.Error(method, endpoint, err, durationMs)
		return env
	}

	httpOK := resp.StatusCode >= 200 && resp.StatusCode < 300

	if isJSON(resp.Header.Get("Content-Type")) {
		if httpOK {
			data, perr := decodePayload[T](body)
			if perr != nil {
				logger.Log(logger.LevelWarn, "API response has invalid JSON", apiCtx(requestID), nil)
				env.Error = msgInvalidFormat
			} else {
				env.Data = data
				env.OK = true
			}
		} else {
			env.Error = extractError(body, resp.StatusCode, requestID)
		}
	} else {
		text := strings.TrimSpace(string(body))
		if httpOK {
			env.OK = true
			if s, ok := any(&env.Data).(*string); ok {
				*s = text
			}
		} else if text != "" {
			env.Error = text
		} else {
			env.Error = fmt.Sprintf("Request failed: %d", resp.StatusCode)
		}
	}

	c.metrics.Record(method, resp.StatusCode, msToDuration(durationMs))
	var logged any
	if env.OK {
		logged = env.Data
	}
	logger.API.Response(method, endpoint, resp.StatusCode, durationMs, logged)
	return env
}

// Get performs a GET call.
func Get[T any](ctx context.Context, c *Client, endpoint string) Envelope[T] {
	return Do[T](ctx, c, endpoint, Options{Method: http.MethodGet})
}

// Post performs a POST call with a JSON body.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) Envelope[T] {
	return Do[T](ctx, c, endpoint, Options{Method: http.MethodPost, Body: body})
}

// Put performs a PUT call with a JSON body.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any) Envelope[T] {
	return Do[T](ctx, c, endpoint, Options{Method: http.MethodPut, Body: body})
}

// Patch performs a PATCH call with a JSON body.
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any) Envelope[T] {
	return Do[T](ctx, c, endpoint, Options{Method: http.MethodPatch, Body: body})
}

// Delete performs a DELETE call.
func Delete[T any](ctx context.Context, c *Client, endpoint string) Envelope[T] {
	return Do[T](ctx, c, endpoint, Options{Method: http.MethodDelete})
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func apiCtx(requestID string) *logger.Ctx {
	return &logger.Ctx{Component: "api", Fields: map[string]any{"request_id": requestID}}
}

func redactHeaders(headers map[string]string) map[string]string {
	redacted := make(map[string]string, len(headers))
	for key, value := range headers {
		if logger.SensitiveKey(key) {
			redacted[key] = logger.Redacted
			continue
		}
		redacted[key] = value
	}
	return redacted
}

func classifyTransportError(err error, m *metrics.APIMetrics) string {
	if errors.Is(err, context.DeadlineExceeded) {
		logger.Log(logger.LevelWarn, "API request timed out", &logger.Ctx{Component: "api"}, nil)
		m.RecordTimeout()
		return msgTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			logger.Log(logger.LevelWarn, "API request timed out", &logger.Ctx{Component: "api"}, nil)
			m.RecordTimeout()
			return msgTimeout
		}
		return msgNetwork
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnexpected
}

func isJSON(contentType string) bool {
	return strings.Contains(contentType, "application/json")
}

// decodePayload unwraps the backend's {success, data} envelope when a data
// field is present, otherwise decodes the whole payload.
func decodePayload[T any](body []byte) (T, error) {
	var out T
	var probe struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &probe); err == nil && len(probe.Data) > 0 && !bytes.Equal(probe.Data, []byte("null")) {
		if err := json.Unmarshal(probe.Data, &out); err != nil {
			return out, err
		}
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, err
	}
	return out, nil
}

// extractError pulls a server-provided message out of a JSON error body.
func extractError(body []byte, status int, requestID string) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		logger.Log(logger.LevelWarn, "API error response has invalid JSON", apiCtx(requestID), nil)
		return msgInvalidFormat
	}
	if payload.Error != "" {
		return payload.Error
	}
	if payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("Request failed: %d", status)
}
