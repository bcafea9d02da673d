// Package apiclient is the retrying HTTP client the storefront talks to the
// marketplace API with. It performs a single logical JSON request per call,
// transparently retrying transient failures (network errors and 5xx answers)
// with exponential backoff, and classifies every failure into a Kind the
// caller can branch on.
//
// Client errors (4xx) are never retried: the server has already made up its
// mind. A 401 additionally invalidates the stored session token, so the next
// authenticated call fails fast instead of replaying a dead token.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jcmexdev/partsmarket/internal/pkg/requestid"
)

// DefaultMaxRetries is the number of additional attempts after the first
// failed one. Four requests hit the wire in the worst case.
const DefaultMaxRetries = 3

const (
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 10 * time.Second
	defaultTimeout      = 30 * time.Second
)

// TokenSource is the port to the session token store. Token reports whether a
// token is currently held; Clear invalidates it (called on 401).
type TokenSource interface {
	Token(ctx context.Context) (string, bool)
	Clear(ctx context.Context) error
}

// Config holds client configuration. Only BaseURL is required.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource // may be nil when no endpoint needs auth

	// Retry schedule. Zero values take the defaults (3 retries, 1s initial
	// delay doubling up to 10s). Tests shrink the delays to milliseconds.
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// Client performs JSON-over-HTTP requests against a single API base URL.
type Client struct {
	baseURL      string
	http         *http.Client
	tokens       TokenSource
	maxRetries   int
	initialDelay time.Duration
	maxDelay     time.Duration
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("apiclient: BaseURL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}
	initialDelay := cfg.InitialDelay
	if initialDelay == 0 {
		initialDelay = defaultInitialDelay
	}
	maxDelay := cfg.MaxDelay
	if maxDelay == 0 {
		maxDelay = defaultMaxDelay
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		http:         httpClient,
		tokens:       cfg.Tokens,
		maxRetries:   maxRetries,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
	}, nil
}

// Option adjusts a single request.
type Option func(*requestOptions)

type requestOptions struct {
	auth bool
}

// WithAuth attaches the bearer token from the TokenSource to the request.
func WithAuth() Option {
	return func(o *requestOptions) { o.auth = true }
}

// Get performs a GET request and decodes the response into out (out may be
// nil when no body is expected).
func (c *Client) Get(ctx context.Context, path string, out any, opts ...Option) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...Option) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts ...Option) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// do runs the retry loop for one logical request. The body is marshalled once
// and replayed from memory on each attempt.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...Option) error {
	var reqOpts requestOptions
	for _, opt := range opts {
		opt(&reqOpts)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s body: %w", method, path, err)
		}
	}

	url := c.baseURL + path

	for attempt := 0; ; attempt++ {
		resp, err := c.attempt(ctx, method, url, payload, reqOpts)
		if err != nil {
			// Transport-level failure: the request never completed.
			if attempt >= c.maxRetries {
				slog.WarnContext(ctx, "request failed after retries",
					"method", method, "url", url, "attempts", attempt+1, "error", err)
				return &Error{Kind: KindNetwork, Message: messageFor(KindNetwork), err: err}
			}
			if err := c.wait(ctx, attempt); err != nil {
				return &Error{Kind: KindNetwork, Message: messageFor(KindNetwork), err: err}
			}
			continue
		}

		if resp.StatusCode >= 500 && resp.StatusCode <= 599 && attempt < c.maxRetries {
			// Retryable server failure: drain so the connection can be reused.
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			slog.DebugContext(ctx, "retrying after server error",
				"method", method, "url", url, "status", resp.StatusCode, "attempt", attempt+1)
			if err := c.wait(ctx, attempt); err != nil {
				return &Error{Kind: KindServer, Status: resp.StatusCode, Message: messageFor(KindServer), err: err}
			}
			continue
		}

		return c.handleResponse(ctx, resp, out)
	}
}

// attempt issues one request on the wire.
func (c *Client) attempt(ctx context.Context, method, url string, payload []byte, opts requestOptions) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}
	if opts.auth {
		if token, ok := c.token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		} else {
			slog.WarnContext(ctx, "no session token available for authenticated request", "url", url)
		}
	}

	return c.http.Do(req)
}

func (c *Client) token(ctx context.Context) (string, bool) {
	if c.tokens == nil {
		return "", false
	}
	return c.tokens.Token(ctx)
}

// wait sleeps for the backoff delay of the given attempt, or returns early
// when the context is cancelled.
func (c *Client) wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(c.backoff(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoff returns min(InitialDelay * 2^attempt, MaxDelay).
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.initialDelay
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= c.maxDelay {
			return c.maxDelay
		}
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

// handleResponse maps the final (non-retried) response to a result or a
// classified error.
func (c *Client) handleResponse(ctx context.Context, resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.errorFromResponse(ctx, resp)
	}

	// 204 carries no body by definition; skip the decode entirely.
	if resp.StatusCode == http.StatusNoContent || out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{
			Kind:    KindMalformed,
			Status:  resp.StatusCode,
			Message: messageFor(KindMalformed),
			err:     err,
		}
	}
	return nil
}

// errorFromResponse classifies a 4xx/5xx answer. The server's own message
// field wins over the status-mapped default when present.
func (c *Client) errorFromResponse(ctx context.Context, resp *http.Response) error {
	kind := classifyStatus(resp.StatusCode)

	var body struct {
		Message string `json:"message"`
	}
	// Best effort: an unparseable error body falls back to the default text.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body)

	message := body.Message
	if message == "" {
		message = messageFor(kind)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokens != nil {
		slog.WarnContext(ctx, "unauthorized response, clearing session token", "url", resp.Request.URL.String())
		if err := c.tokens.Clear(ctx); err != nil {
			slog.WarnContext(ctx, "failed to clear session token", "error", err)
		}
	}

	return &Error{Kind: kind, Status: resp.StatusCode, Message: message}
}
