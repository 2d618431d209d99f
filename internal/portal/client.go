// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package portal

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

	"github.com/apex/log"
	"github.com/codeGROOVE-dev/retry"
	"github.com/oklog/ulid/v2"
	"github.com/tidwall/gjson"
)

const (
	DefaultBaseURL = "http://localhost:5454/api"

	defaultTimeout    = 30 * time.Second
	defaultAttempts   = 3
	defaultRetryDelay = 250 * time.Millisecond
	maxRetryDelay     = 5 * time.Second

	// maxBodyBytes caps how much of a response is read.
	maxBodyBytes = 10 << 20

	requestIDHeader = "X-Request-ID"
)

// Client talks to one portal. It is safe for concurrent use.
type Client struct {
	baseURL  *url.URL
	token    string
	http     *http.Client
	attempts uint
	delay    time.Duration
}

type Option func(*Client)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRetry sets how many times a retryable failure is attempted and the
// initial backoff between attempts. One attempt disables retrying.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

// NewClient returns a Client for the API rooted at baseURL. An empty baseURL
// means DefaultBaseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: defaultTimeout},
		attempts: defaultAttempts,
		delay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root the client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// get decodes the JSON body of GET path into v.
func (c *Client) get(ctx context.Context, path string, query url.Values, fallback string, v any) error {
	return c.do(ctx, c.attempts, http.MethodGet, c.endpoint(path, query), nil, fallback, v)
}

// post sends body as JSON and decodes the response into v. It is never
// retried.
func (c *Client) post(ctx context.Context, path string, body any, fallback string, v any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	return c.do(ctx, 1, http.MethodPost, c.endpoint(path, nil), b, fallback, v)
}

func (c *Client) do(ctx context.Context, attempts uint, method, target string, body []byte, fallback string, v any) error {
	var doc []byte

	err := retry.Do(
		func() error {
			var err error
			doc, err = c.once(ctx, method, target, body, fallback)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(c.delay),
		retry.MaxDelay(maxRetryDelay),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Debugf("retrying %s %s (attempt %d/%d)", method, target, n+1, attempts)
		}),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
	)
	if err != nil {
		return err
	}

	if v == nil {
		return nil
	}
	if err := json.Unmarshal(doc, v); err != nil {
		return &APIError{Message: fallback, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

// once performs a single request and returns the body of a 2xx response.
func (c *Client) once(ctx context.Context, method, target string, body []byte, fallback string) ([]byte, error) {
	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	rid := ulid.Make().String()
	req.Header.Set(requestIDHeader, rid)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &APIError{Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	var doc bytes.Buffer
	if _, err := doc.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes+1)); err != nil {
		return nil, &APIError{Status: resp.StatusCode, Message: NetworkErrorMessage, Err: err}
	}
	if doc.Len() > maxBodyBytes {
		return nil, &APIError{Status: resp.StatusCode, Message: fallback, Err: ErrBodyTooLarge}
	}

	log.WithFields(log.Fields{
		"method":     method,
		"url":        target,
		"status":     resp.StatusCode,
		"request_id": rid,
		"elapsed":    time.Since(start),
	}).Debug("portal request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(doc.Bytes(), fallback)}
	}
	return doc.Bytes(), nil
}

// errorMessage prefers the portal's own message field.
func errorMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	if msg := gjson.GetBytes(body, "message").String(); msg != "" {
		return msg
	}
	return fallback
}

// IsNetworkError reports whether err means the portal could not be reached.
func IsNetworkError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0 && apiErr.Message == NetworkErrorMessage
}
