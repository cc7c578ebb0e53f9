// Package gateway is the single outbound pipeline to the REST backend. Every
// backend call goes through Client.Do, which runs the request interceptors,
// sends the request, runs the response interceptors and maps failures onto
// the domain error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pulsepr/storefront/internal/core/domain"
	"github.com/pulsepr/storefront/internal/metrics"
)

// maxBody caps how much of a response body is read.
const maxBody = 10 << 20

// RequestInterceptor runs before a request is sent. An error aborts the call.
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor runs after a response arrives and before the caller
// sees the result.
type ResponseInterceptor func(req *http.Request, resp *http.Response)

// Request describes one backend call.
type Request struct {
	Method string
	// Path is appended to the base URL, e.g. "/api/cart/12".
	Path string
	// Route is the path template used as the metrics label; defaults to Path.
	Route string
	Query url.Values
	// Body is JSON-encoded when non-nil. Ignored when Multipart is set.
	Body      any
	Multipart *Multipart
}

// Client sends requests to the backend.
type Client struct {
	base   *url.URL
	http   *http.Client
	before []RequestInterceptor
	after  []ResponseInterceptor
	log    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRequestInterceptor appends a request interceptor.
func WithRequestInterceptor(fn RequestInterceptor) Option {
	return func(c *Client) { c.before = append(c.before, fn) }
}

// WithResponseInterceptor appends a response interceptor.
func WithResponseInterceptor(fn ResponseInterceptor) Option {
	return func(c *Client) { c.after = append(c.after, fn) }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a client for baseURL. The default transport is wrapped with
// otelhttp so every call is a client span.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Use appends interceptors after construction. It must not be called
// concurrently with Do.
func (c *Client) Use(before RequestInterceptor, after ResponseInterceptor) {
	if before != nil {
		c.before = append(c.before, before)
	}
	if after != nil {
		c.after = append(c.after, after)
	}
}

// Do sends r and decodes a 2xx JSON body into out when out is non-nil.
// Failures are *domain.NetworkError when no response arrived and
// *domain.HTTPError for non-2xx responses.
func (c *Client) Do(ctx context.Context, r Request, out any) error {
	req, err := c.build(ctx, r)
	if err != nil {
		return err
	}
	route := r.Route
	if route == "" {
		route = r.Path
	}
	reqID := req.Header.Get("X-Request-ID")
	log := c.log.With().Str("request_id", reqID).Str("method", r.Method).Str("route", route).Logger()

	for _, fn := range c.before {
		if err := fn(req); err != nil {
			return fmt.Errorf("%s %s: %w", r.Method, r.Path, err)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.Method, route, "network_error").Inc()
		log.Warn().Err(err).Msg("backend unreachable")
		return &domain.NetworkError{Method: r.Method, Path: r.Path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(r.Method, route, "network_error").Inc()
		return &domain.NetworkError{Method: r.Method, Path: r.Path, Err: fmt.Errorf("read body: %w", err)}
	}
	metrics.BackendRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(resp.StatusCode)).Inc()

	for _, fn := range c.after {
		fn(req, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		he := &domain.HTTPError{
			Method:  r.Method,
			Path:    r.Path,
			Status:  resp.StatusCode,
			Message: backendMessage(body),
			Body:    body,
		}
		log.Debug().Int("status", resp.StatusCode).Str("message", he.Message).Msg("backend rejected request")
		return he
	}

	log.Debug().Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("backend call")
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", r.Method, r.Path, err)
	}
	return nil
}

func (c *Client) build(ctx context.Context, r Request) (*http.Request, error) {
	u := *c.base
	u.Path = c.base.Path + r.Path
	if len(r.Query) > 0 {
		u.RawQuery = r.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.Multipart != nil:
		buf, ct, err := r.Multipart.encode()
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode multipart: %w", r.Method, r.Path, err)
		}
		body, contentType = buf, ct
	case r.Body != nil:
		raw, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", r.Method, r.Path, err)
		}
		body, contentType = bytes.NewReader(raw), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", r.Method, r.Path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

// backendMessage extracts the "message" field of an error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
