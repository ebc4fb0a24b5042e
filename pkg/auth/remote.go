package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/chainsafe/cdp-sdk-go/internal/metrics"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	defaultExpiryLeeway = 10 * time.Second
	defaultHTTPTimeout  = 10 * time.Second

	// Limit error-body reads so we don't accidentally slurp huge responses.
	maxErrBodyBytes = 4096

	halfDivisor = 2

	// TokensPath is the token service endpoint.
	TokensPath = "/v1/tokens"
)

// RemoteConfig configures a RemoteTokenProvider.
type RemoteConfig struct {
	// URL is the base URL of the token service.
	URL string
	// ClientSecret is sent as a bearer token to the token service when set.
	ClientSecret string //nolint:gosec // standard config field name

	// ExpiryLeeway specifies how long before actual token expiry
	// the token should be considered expired. If zero, a default is applied.
	ExpiryLeeway time.Duration
}

func (cfg *RemoteConfig) validate() error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if cfg.URL == "" {
		return errors.New("token service URL is required")
	}
	return nil
}

// TokenServiceRequest is the JSON body accepted by the token service.
type TokenServiceRequest struct {
	Method            string         `json:"method"`
	Host              string         `json:"host,omitempty"`
	Path              string         `json:"path"`
	Body              map[string]any `json:"body,omitempty"`
	IncludeWalletAuth bool           `json:"includeWalletAuth,omitempty"`
	ExpiresIn         int64          `json:"expiresIn,omitempty"`
	Audience          []string       `json:"audience,omitempty"`
}

// TokenServiceResponse is the JSON body returned by the token service.
type TokenServiceResponse struct {
	BearerToken     string    `json:"bearerToken"`
	WalletAuthToken string    `json:"walletAuthToken,omitempty"`
	ExpiresIn       int64     `json:"expiresIn"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type cachedToken struct {
	token     string
	refreshBy time.Time
}

// RemoteTokenProvider implements TokenProvider by asking a token service.
// Bearer-only tokens are cached per request line until shortly before they
// expire. Wallet tokens bind the request body and are never cached.
type RemoteTokenProvider struct {
	cfg        *RemoteConfig
	httpClient *http.Client
	leeway     time.Duration

	mu    sync.Mutex
	cache map[string]cachedToken
}

// NewRemoteTokenProvider creates a new RemoteTokenProvider instance.
func NewRemoteTokenProvider(cfg *RemoteConfig, httpClient *http.Client) (*RemoteTokenProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	leeway := cfg.ExpiryLeeway
	if leeway == 0 {
		leeway = defaultExpiryLeeway
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}

	return &RemoteTokenProvider{
		cfg:        cfg,
		httpClient: httpClient,
		leeway:     leeway,
		cache:      make(map[string]cachedToken),
	}, nil
}

// Tokens implements TokenProvider.
func (p *RemoteTokenProvider) Tokens(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	req = normalizeRequest(req)
	key := cacheKey(req)

	if !req.IncludeWalletAuth {
		// Fast path: return cached token if still valid.
		p.mu.Lock()
		if c, ok := p.cache[key]; ok && time.Now().Before(c.refreshBy) {
			p.mu.Unlock()
			return &TokenResponse{BearerToken: c.token, ExpiresAt: c.refreshBy.Add(p.leeway)}, nil
		}
		p.mu.Unlock()
	}

	// Fetch without holding the mutex.
	tr, err := p.fetch(ctx, req)
	if err != nil {
		metrics.RemoteTokenFetches.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RemoteTokenFetches.WithLabelValues("ok").Inc()

	now := time.Now()
	resp := &TokenResponse{
		BearerToken:     tr.BearerToken,
		WalletAuthToken: tr.WalletAuthToken,
		ExpiresAt:       tr.ExpiresAt,
	}
	if resp.ExpiresAt.IsZero() && tr.ExpiresIn > 0 {
		resp.ExpiresAt = now.Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	if !req.IncludeWalletAuth {
		p.mu.Lock()
		p.evictExpiredLocked(now)
		p.cache[key] = cachedToken{token: tr.BearerToken, refreshBy: computeRefreshBy(now, tr.ExpiresIn, p.leeway)}
		p.mu.Unlock()
	}
	return resp, nil
}

func (p *RemoteTokenProvider) evictExpiredLocked(now time.Time) {
	for k, c := range p.cache {
		if !now.Before(c.refreshBy) {
			delete(p.cache, k)
		}
	}
}

func (p *RemoteTokenProvider) fetch(ctx context.Context, req TokenRequest) (*TokenServiceResponse, error) {
	body, err := json.Marshal(TokenServiceRequest{
		Method:            req.Method,
		Host:              req.Host,
		Path:              req.Path,
		Body:              req.Body,
		IncludeWalletAuth: req.IncludeWalletAuth,
		ExpiresIn:         req.ExpiresIn,
		Audience:          req.Audience,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal token request: %w", err)
	}

	url := strings.TrimRight(p.cfg.URL, "/") + TokensPath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create token request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.cfg.ClientSecret != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.cfg.ClientSecret)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("call token service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readHTTPError(resp, req.IncludeWalletAuth)
	}

	var tr TokenServiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if tr.BearerToken == "" {
		return nil, fmt.Errorf("token response missing bearerToken")
	}
	if req.IncludeWalletAuth && tr.WalletAuthToken == "" {
		return nil, fmt.Errorf("token response missing walletAuthToken")
	}
	return &tr, nil
}

func cacheKey(req TokenRequest) string {
	return req.Method + " " + req.Host + req.Path + "|" + strings.Join(req.Audience, ",") +
		fmt.Sprintf("|%d", req.ExpiresIn)
}

// readHTTPError maps a non-200 token service answer to a categorized error.
func readHTTPError(resp *http.Response, walletAuth bool) error {
	limited := io.LimitReader(resp.Body, maxErrBodyBytes)

	b, err := io.ReadAll(limited)
	if err != nil {
		err = fmt.Errorf("token service returned %d and body read failed: %w", resp.StatusCode, err)
	} else {
		err = fmt.Errorf("token service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	switch {
	case resp.StatusCode == http.StatusForbidden && walletAuth:
		return cdperrors.WalletSecretError("token service denied wallet auth", err)
	case resp.StatusCode == http.StatusUnauthorized:
		return cdperrors.UnAuthorizedError(err, "token service rejected the client secret")
	case resp.StatusCode == http.StatusForbidden:
		return cdperrors.ForbiddenError(err, "token service denied the request")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return cdperrors.BadRequestError(err, "token service rejected the request")
	default:
		return &cdperrors.ServiceError{
			Cat:     cdperrors.CategoryFromStatus(resp.StatusCode),
			Message: "token service unavailable",
			Err:     err,
		}
	}
}

// computeRefreshBy returns a "refresh-by" timestamp, leeway-adjusted.
// Tokens without a known lifetime are not reused.
func computeRefreshBy(now time.Time, expiresInSeconds int64, leeway time.Duration) time.Time {
	if expiresInSeconds <= 0 {
		return now
	}

	exp := now.Add(time.Duration(expiresInSeconds) * time.Second)
	refreshBy := exp.Add(-leeway)

	// If leeway overshoots, fall back to a reasonable midpoint.
	if refreshBy.Before(now) {
		half := expiresInSeconds / halfDivisor
		return now.Add(time.Duration(half) * time.Second)
	}

	return refreshBy
}
