// Package api implements the client for the assistant service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	apierrors "github.com/lnmiit/askwidget/internal/errors"
	"github.com/lnmiit/askwidget/internal/models"
)

// maxResponseBytes caps how much of a reply body is read. A longer body is
// rejected with ErrReplyTooLarge rather than truncated.
const maxResponseBytes = 8 << 20

// AssistantClient is what the widget and the one-shot command need from the
// assistant service. An empty reply with a nil error means the service
// answered without a usable "response" field.
type AssistantClient interface {
	Ask(ctx context.Context, query string) (string, error)
	Endpoint() string
}

// Doer sends a single HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client posts queries to the assistant service
type Client struct {
	httpClient Doer
	endpoint   string
	timeout    time.Duration
	logger     zerolog.Logger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithTimeout bounds each request. Zero (the default) leaves requests
// unbounded.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the transport, mainly for tests.
func WithHTTPClient(doer Doer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the given endpoint URL
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint URL cannot be empty")
	}

	client := &Client{
		endpoint: endpoint,
		logger:   log.Logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		// Deadlines come from the request context, so the transport itself
		// never times out.
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(0),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the URL queries are sent to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ask sends one query and returns the "response" field of the reply.
func (c *Client) Ask(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", apierrors.ErrEmptyQuery
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(models.ChatRequest{Query: query})
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.Debug().Str("endpoint", c.endpoint).Int("query_len", len(query)).Msg("sending query")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.classifyTransportError(ctx, err)
		c.logger.Error().Err(err).Str("endpoint", c.endpoint).Dur("elapsed", time.Since(start)).Msg("query failed")
		return "", err
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		err = c.classifyTransportError(ctx, err)
		c.logger.Error().Err(err).Str("endpoint", c.endpoint).Msg("reading reply failed")
		return "", err
	}
	if len(body) > maxResponseBytes {
		err := fmt.Errorf("%w: %s sent more than %d bytes", apierrors.ErrReplyTooLarge, c.endpoint, maxResponseBytes)
		c.logger.Error().Err(err).Int("status", resp.StatusCode).Msg("reply rejected")
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := apierrors.NewAPIError(resp.StatusCode, c.endpoint, http.StatusText(resp.StatusCode)).
			WithBody(string(body))
		c.logger.Error().Err(apiErr).Dur("elapsed", time.Since(start)).Msg("assistant returned an error status")
		return "", apiErr
	}

	reply, err := ParseReply(body)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", c.endpoint).Msg("unreadable reply")
		return "", err
	}

	c.logger.Info().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Bool("has_response", reply != "").
		Msg("query answered")

	return reply, nil
}

// classifyTransportError maps a failed round trip onto a typed error.
func (c *Client) classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return apierrors.NewTimeoutError(fmt.Sprintf("no reply from %s within %s", c.endpoint, c.timeout))
	}
	return apierrors.NewNetworkError("send query", c.endpoint, err)
}

// ParseReply extracts the "response" string from a reply body. Any valid JSON
// is accepted; a missing, null, empty or non-string field yields "". A body
// that is not JSON is a ParseError.
func ParseReply(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", apierrors.NewParseError("reply is not valid JSON", "response")
	}

	result := gjson.GetBytes(body, "response")
	if result.Type != gjson.String {
		return "", nil
	}
	return result.Str, nil
}
