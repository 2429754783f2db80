// Package client issues streaming Messages API requests and exposes the
// response body as a sequence of decoded SSE events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/thinkprobe/pkg/messages"
	"github.com/papercomputeco/thinkprobe/pkg/sse"
)

const (
	// DefaultAPIKeyHeader is the header the API key is sent in.
	DefaultAPIKeyHeader = "x-api-key"

	// RequestIDHeader carries a per-request uuid so server logs can be
	// matched against probe output.
	RequestIDHeader = "X-Request-Id"

	anthropicVersionHeader = "anthropic-version"
)

// Config holds the connection settings for a Client.
type Config struct {
	// BaseURL is the scheme and host of the endpoint, e.g. http://localhost:8000.
	BaseURL string

	// Path is appended to BaseURL, e.g. /v1/messages.
	Path string

	APIKey string

	// APIKeyHeader defaults to DefaultAPIKeyHeader.
	APIKeyHeader string

	// AnthropicVersion is sent as the anthropic-version header when set.
	AnthropicVersion string

	// Headers are added to every request after the built-in ones.
	Headers map[string]string

	// Timeout bounds the whole exchange, including reading the stream.
	// Zero means no timeout.
	Timeout time.Duration
}

// Client sends streaming requests to a single endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates a Client.
func New(config Config, logger *slog.Logger) *Client {
	if config.APIKeyHeader == "" {
		config.APIKeyHeader = DefaultAPIKeyHeader
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}
}

// Endpoint returns the full URL requests are posted to.
func (c *Client) Endpoint() string {
	base := strings.TrimRight(c.config.BaseURL, "/")
	if c.config.Path == "" {
		return base
	}
	return base + "/" + strings.TrimLeft(c.config.Path, "/")
}

// Stream posts req and returns the open response stream. Non-2xx statuses are
// not treated as errors; the caller inspects Stream.StatusCode. The caller
// must Close the returned stream.
func (c *Client) Stream(ctx context.Context, req *messages.Request) (*Stream, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	endpoint := c.Endpoint()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set(RequestIDHeader, requestID)
	if c.config.APIKey != "" {
		httpReq.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	}
	if c.config.AnthropicVersion != "" {
		httpReq.Header.Set(anthropicVersionHeader, c.config.AnthropicVersion)
	}
	for k, v := range c.config.Headers {
		httpReq.Header.Set(k, v)
	}

	c.logger.Debug("sending streaming request",
		"endpoint", endpoint,
		"request_id", requestID,
		"model", req.Model,
		"max_tokens", req.MaxTokens,
		"thinking", req.HasThinking(),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", URL: endpoint, Err: err}
	}

	c.logger.Debug("stream opened",
		"request_id", requestID,
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)

	s := &Stream{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		RequestID:  requestID,
		url:        endpoint,
		body:       resp.Body,
	}
	return s, nil
}

// Stream is an open streaming response. It is read by a single goroutine;
// Close may be called from any goroutine to abort reading.
type Stream struct {
	StatusCode int
	Header     http.Header
	RequestID  string

	url       string
	body      io.ReadCloser
	tee       io.Writer
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// OK reports whether the status code is 2xx.
func (s *Stream) OK() bool {
	return s.StatusCode >= 200 && s.StatusCode < 300
}

// Tee copies every raw line read by Events to w. It must be called before
// Events.
func (s *Stream) Tee(w io.Writer) {
	s.tee = w
}

// Events returns the decoded events as a lazy sequence. The sequence ends
// when the server closes the stream or when Close is called. Transport
// failures while reading are yielded once as a *ConnectionError.
func (s *Stream) Events() iter.Seq2[*sse.Event, error] {
	return sse.NewTeeReader(&streamBody{s: s}, s.tee).All()
}

// Close releases the underlying connection. It is safe to call more than once.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// streamBody reports reads after Close as a clean EOF and wraps every other
// read failure in a ConnectionError.
type streamBody struct {
	s *Stream
}

func (b *streamBody) Read(p []byte) (int, error) {
	n, err := b.s.body.Read(p)
	if err == nil || err == io.EOF {
		return n, err
	}
	if b.s.closed.Load() || sse.IsClosed(err) {
		return n, io.EOF
	}
	return n, &ConnectionError{Op: "read", URL: b.s.url, Err: err}
}
