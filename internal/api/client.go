// Package api is the HTTP adapter for the cuan REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alimurrofid/petualangan-cuan/internal/core"
	"github.com/alimurrofid/petualangan-cuan/internal/log"
)

// TokenSource supplies the bearer token for authenticated requests.
// An empty token means no Authorization header is sent.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *log.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentAPI) }
}

// WithTimeout sets the overall per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New creates a client for baseURL, which includes the /api prefix.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClientWithPooling(),
		logger:     log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClientWithPooling keeps connections to the backend alive between
// the bursts of requests a mutation and its refreshes produce.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	public bool
}

// do sends req and decodes a 2xx body into out (when out is non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", req.method, req.path, err)
		}
		body = bytes.NewReader(buf)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", req.method, req.path, err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.public && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "request failed",
			log.FieldMethod, req.method,
			log.FieldPath, req.path,
			log.FieldRequestID, requestID,
			log.FieldError, err)
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s: %w", req.method, req.path, err)
	}

	c.logger.DebugContext(ctx, "request completed",
		log.FieldMethod, req.method,
		log.FieldPath, req.path,
		log.FieldQuery, httpReq.URL.RawQuery,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds(),
		log.FieldRequestID, requestID)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, payload, requestID)
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

// send validates a write payload before issuing it.
func (c *Client) send(ctx context.Context, req request, out any) error {
	if req.body != nil {
		if err := core.Validate(req.body); err != nil {
			return fmt.Errorf("%s %s: %w", req.method, req.path, err)
		}
	}
	return c.do(ctx, req, out)
}

func idPath(prefix string, id int64) string {
	return fmt.Sprintf("%s/%d", prefix, id)
}

// Response envelopes.
type (
	dataEnvelope[T any] struct {
		Status string `json:"status,omitempty"`
		Data   T      `json:"data"`
	}

	// TransactionPage is one page of GET /transactions.
	TransactionPage struct {
		Status string             `json:"status"`
		Data   []core.Transaction `json:"data"`
		Meta   core.PageMeta      `json:"meta"`
	}

	messageResponse struct {
		Message string `json:"message"`
	}
)
