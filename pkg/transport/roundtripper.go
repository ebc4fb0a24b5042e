package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/chainsafe/cdp-sdk-go/internal/metrics"
	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	// WalletAuthHeader carries the wallet JWT on signing operations.
	WalletAuthHeader = "X-Wallet-Auth"

	maxRequestBodyBytes = 10 << 20
)

var walletAuthPaths = []string{"/accounts", "/spend-permissions", "/user-operations/prepare-and-send"}

// RequiresWalletAuth reports whether a request must carry X-Wallet-Auth.
// PUT requests carry only the bearer token.
func RequiresWalletAuth(method, path string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodDelete:
	default:
		return false
	}
	for _, p := range walletAuthPaths {
		if strings.Contains(path, p) {
			return true
		}
	}
	return false
}

// authTransport attaches CDP headers and freshly minted tokens to every
// outgoing request.
type authTransport struct {
	next         http.RoundTripper
	provider     auth.TokenProvider
	hostOverride string
	correlation  string
	expiresIn    int64
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	out := req.Clone(ctx)

	if t.hostOverride != "" {
		out.Host = t.hostOverride
	}
	host := out.Host
	if host == "" {
		host = out.URL.Host
	}

	out.Header.Set("Content-Type", "application/json")
	out.Header.Set("Accept", "application/json")
	out.Header.Set(auth.CorrelationHeader, t.correlation)

	walletAuth := RequiresWalletAuth(out.Method, out.URL.Path)

	var body map[string]any
	if walletAuth {
		raw, err := readBody(out)
		if err != nil {
			return nil, err
		}
		if body, err = auth.ParseBody(raw); err != nil {
			return nil, cdperrors.NewValidationError("body", fmt.Sprintf("must be a JSON object: %v", err))
		}
	}

	tokens, err := t.provider.Tokens(ctx, auth.TokenRequest{
		Method:            out.Method,
		Host:              host,
		Path:              out.URL.Path,
		Body:              body,
		IncludeWalletAuth: walletAuth,
		ExpiresIn:         t.expiresIn,
	})
	if err != nil {
		return nil, err
	}

	out.Header.Set("Authorization", "Bearer "+tokens.BearerToken)
	if walletAuth {
		out.Header.Set(WalletAuthHeader, tokens.WalletAuthToken)
	}
	return t.next.RoundTrip(out)
}

// readBody reads the request body and restores it so the request can
// still be sent.
func readBody(req *http.Request) ([]byte, error) {
	raw, err := drainBody(req.Body)
	if err != nil || raw == nil {
		return raw, err
	}
	req.Body = io.NopCloser(bytes.NewReader(raw))
	req.GetBody = func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(raw)), nil }
	req.ContentLength = int64(len(raw))
	return raw, nil
}

func drainBody(body io.ReadCloser) ([]byte, error) {
	if body == nil || body == http.NoBody {
		return nil, nil
	}
	defer body.Close()
	raw, err := io.ReadAll(io.LimitReader(body, maxRequestBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading request body: %w", err)
	}
	if len(raw) > maxRequestBodyBytes {
		return nil, cdperrors.NewValidationError("body", fmt.Sprintf("must not exceed %d bytes", maxRequestBodyBytes))
	}
	return raw, nil
}

// retryTransport replays failed attempts according to a RetryConfig.
type retryTransport struct {
	next     http.RoundTripper
	cfg      RetryConfig
	logger   *zap.Logger
	logLevel zapcore.Level
	random   func() float64
}

type retryableStatus struct{ status int }

func (e *retryableStatus) Error() string { return "retryable status " + strconv.Itoa(e.status) }

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	raw, err := drainBody(req.Body)
	if err != nil {
		return nil, err
	}

	retryable := t.cfg.MaxRetries > 0 && t.cfg.IsRetryableRequest(req)
	sched := newSchedule(t.cfg, t.random)

	var (
		resp    *http.Response
		attempt int
		reason  string
	)
	op := func() error {
		attempt++
		try := req.Clone(ctx)
		if raw != nil {
			try.Body = io.NopCloser(bytes.NewReader(raw))
			try.ContentLength = int64(len(raw))
		}

		start := time.Now()
		res, err := t.next.RoundTrip(try)
		t.logAttempt(try, attempt, res, err, time.Since(start))

		if err != nil {
			metrics.HTTPRequestsTotal.WithLabelValues(req.Method, "error").Inc()
			if !retryable || !shouldRetryError(ctx, err) {
				return backoff.Permanent(err)
			}
			reason = string(cdperrors.ClassifyNetworkError(err))
			return err
		}

		metrics.HTTPRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(res.StatusCode)).Inc()
		if retryable && attempt <= t.cfg.MaxRetries && t.cfg.IsRetryableStatus(res.StatusCode) {
			if d, ok := t.cfg.retryAfter(res.Header); ok {
				sched.setHint(d)
			}
			_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 64<<10))
			_ = res.Body.Close()
			reason = strconv.Itoa(res.StatusCode)
			return &retryableStatus{status: res.StatusCode}
		}
		resp = res
		return nil
	}

	notify := func(err error, wait time.Duration) {
		metrics.HTTPRetries.WithLabelValues(req.Method, reason).Inc()
		t.logger.Debug("Retrying CDP request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	err = backoff.RetryNotify(op, backoff.WithContext(sched, ctx), notify)
	if err != nil {
		var rs *retryableStatus
		if errors.As(err, &rs) {
			// Unreachable while the attempt bound matches the schedule.
			return nil, fmt.Errorf("retries exhausted: %w", err)
		}
		return nil, err
	}
	return resp, nil
}

// shouldRetryError reports whether a failed attempt is a transport failure
// worth replaying. SDK errors and cancellations are final.
func shouldRetryError(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return false
	}
	if cdperrors.CategoryOf(err) != cdperrors.CategoryGeneralError {
		return false
	}
	return cdperrors.IsRetryable(cdperrors.NewNetworkError(err))
}

func (t *retryTransport) logAttempt(req *http.Request, attempt int, res *http.Response, err error, d time.Duration) {
	ce := t.logger.Check(t.logLevel, "CDP request")
	if ce == nil {
		return
	}
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("attempt", attempt),
		zap.Duration("duration", d),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	} else {
		fields = append(fields, zap.Int("status", res.StatusCode))
	}
	ce.Write(fields...)
}
