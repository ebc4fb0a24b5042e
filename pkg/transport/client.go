// Package transport implements the HTTP layer shared by every CDP resource
// client.
//
// Each request is authenticated with a fresh bearer token (and a wallet
// token on signing routes), tagged with the SDK correlation header, and
// retried with exponential backoff when the method is safe to replay.
package transport

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
	"sync/atomic"
	"time"

	"github.com/creasty/defaults"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chainsafe/cdp-sdk-go/internal/metrics"
	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// DefaultBasePath is the production CDP platform API.
const DefaultBasePath = "https://api.cdp.coinbase.com/platform"

const maxResponseBytes = 32 << 20

// ErrClientClosed is returned by Do after Close.
var ErrClientClosed = errors.New("client is closed")

// Doer issues JSON requests against the CDP API. Resource clients depend on
// it rather than on *Client.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, in, out any) error
}

// Config contains the settings of the HTTP layer.
type Config struct {
	BasePath     string `json:"basePath" mapstructure:"base_path" default:"https://api.cdp.coinbase.com/platform" validate:"required,url"`
	HostOverride string `json:"hostOverride" mapstructure:"host_override"`
	// ExpiresIn is the bearer token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn" mapstructure:"expires_in" default:"120" validate:"gte=1"`
	// Timeout bounds a whole call, retries included. Zero disables it.
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout" default:"30s" validate:"gte=0"`
	Debugging     bool          `json:"debugging" mapstructure:"debugging"`
	Source        string        `json:"source" mapstructure:"source" default:"sdk-auth"`
	SourceVersion string        `json:"sourceVersion" mapstructure:"source_version"`

	// Retry defaults to DefaultRetryConfig when nil.
	Retry *RetryConfig `json:"retry" mapstructure:"retry" default:"-"`
}

// Client is an authenticated JSON client for the CDP API.
type Client struct {
	cfg    Config
	base   *url.URL
	logger *zap.Logger
	http   *http.Client
	closed atomic.Bool
}

var _ Doer = (*Client)(nil)

// New creates a Client that signs requests with provider.
func New(cfg *Config, provider auth.TokenProvider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, cdperrors.NewValidationError("tokenProvider", "is required")
	}
	s := applyOptions(opts)

	var c Config
	if cfg != nil {
		c = *cfg
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("error applying config defaults: %w", err)
	}
	if c.Retry == nil {
		r := DefaultRetryConfig()
		c.Retry = &r
	}
	if err := validation.Struct(c); err != nil {
		return nil, err
	}
	if err := c.Retry.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.TrimRight(c.BasePath, "/"))
	if err != nil {
		return nil, cdperrors.NewValidationError("basePath", err.Error())
	}

	next := s.httpClient.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	level := zapcore.DebugLevel
	if c.Debugging {
		level = zapcore.InfoLevel
	}

	hc := *s.httpClient
	hc.Transport = &retryTransport{
		next: &authTransport{
			next:         next,
			provider:     provider,
			hostOverride: c.HostOverride,
			correlation:  auth.CorrelationData(auth.SDKVersion, c.Source, c.SourceVersion),
			expiresIn:    c.ExpiresIn,
		},
		cfg:      *c.Retry,
		logger:   s.logger,
		logLevel: level,
		random:   s.random,
	}
	if c.Timeout > 0 {
		hc.Timeout = c.Timeout
	}

	return &Client{cfg: c, base: base, logger: s.logger, http: &hc}, nil
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config { return c.cfg }

// Do sends in as the JSON body of a method request to path, relative to the
// base path, and decodes a 2xx response into out. Non-2xx responses are
// returned as *errors.APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path, query), body)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	if key := IdempotencyKeyFromContext(ctx); key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.HTTPRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		return unwrapTransportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return cdperrors.NewNetworkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := cdperrors.ParseAPIError(resp.StatusCode, resp.Header, raw)
		c.logger.Debug("CDP API error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", apiErr.StatusCode),
			zap.String("error_type", apiErr.ErrorType),
			zap.String("correlation_id", apiErr.CorrelationID),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error decoding %s %s response: %w", method, path, err)
	}
	return nil
}

// Close releases idle connections. Later calls to Do fail with
// ErrClientClosed.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + "/" + strings.TrimLeft(path, "/")
	u.RawPath = ""
	if strings.Contains(path, "%") {
		// Escaped path segments must survive as written.
		if p, err := url.PathUnescape(u.Path); err == nil {
			u.RawPath = u.Path
			u.Path = p
		}
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// unwrapTransportError strips the *url.Error added by http.Client so SDK
// errors raised inside the round trippers reach the caller unchanged.
func unwrapTransportError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return ctxErr
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if cdperrors.CategoryOf(urlErr.Err) != cdperrors.CategoryGeneralError {
			return urlErr.Err
		}
	}
	var netErr *cdperrors.NetworkError
	if errors.As(err, &netErr) {
		return netErr
	}
	return cdperrors.NewNetworkError(err)
}

// PathEscape escapes a single path segment.
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}
