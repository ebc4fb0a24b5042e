package auth

import (
	"context"
	"crypto/ecdsa"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/internal/metrics"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// DefaultHost is the host signed into tokens when a request does not name one.
const DefaultHost = "api.cdp.coinbase.com"

const walletSecretRequiredMsg = "Wallet secret is required for this operation. " +
	"Set CDP_WALLET_SECRET or configure a wallet secret on the client"

// TokenRequest describes the HTTP request a token is minted for.
type TokenRequest struct {
	Method string
	Host   string
	Path   string
	// Body is the decoded JSON request body, hashed into the wallet token.
	Body              map[string]any
	IncludeWalletAuth bool
	// ExpiresIn overrides the provider's bearer lifetime in seconds.
	ExpiresIn int64
	Audience  []string
}

// TokenResponse carries the tokens for one request.
type TokenResponse struct {
	BearerToken     string
	WalletAuthToken string
	// ExpiresAt is the bearer expiry, zero when unknown.
	ExpiresAt time.Time
}

// TokenProvider supplies the tokens attached to every CDP request. It lets
// callers keep API key material outside the process that talks to CDP.
type TokenProvider interface {
	Tokens(ctx context.Context, req TokenRequest) (*TokenResponse, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context, req TokenRequest) (*TokenResponse, error)

// Tokens calls f.
func (f TokenProviderFunc) Tokens(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	return f(ctx, req)
}

// Credentials is the raw key material issued by the CDP portal.
type Credentials struct {
	APIKeyID     string `mapstructure:"api_key_id"`
	APIKeySecret string `mapstructure:"api_key_secret"` //nolint:gosec // credential field name
	WalletSecret string `mapstructure:"wallet_secret"`  //nolint:gosec // credential field name
}

// Generator mints tokens locally from Credentials.
type Generator struct {
	keyID     string
	key       *apiKey
	wallet    *ecdsa.PrivateKey
	expiresIn int64
	audience  []string
	now       func() time.Time
	logger    *zap.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithExpiresIn sets the default bearer lifetime in seconds.
func WithExpiresIn(seconds int64) GeneratorOption {
	return func(g *Generator) { g.expiresIn = seconds }
}

// WithAudience sets the default aud claim.
func WithAudience(aud ...string) GeneratorOption {
	return func(g *Generator) { g.audience = aud }
}

// WithGeneratorLogger sets the logger used for debug output.
func WithGeneratorLogger(l *zap.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) { g.now = now }
}

// NewGenerator parses the credentials once and returns a TokenProvider.
// The wallet secret is optional until a wallet operation is requested.
func NewGenerator(creds Credentials, opts ...GeneratorOption) (*Generator, error) {
	if creds.APIKeyID == "" {
		return nil, cdperrors.NewValidationError("apiKeyId", "API key ID is required. Set CDP_API_KEY_ID")
	}
	if creds.APIKeySecret == "" {
		return nil, cdperrors.NewValidationError("apiKeySecret", "API key secret is required. Set CDP_API_KEY_SECRET")
	}

	key, err := parseAPIKey(creds.APIKeySecret)
	if err != nil {
		return nil, err
	}

	g := &Generator{
		keyID:     creds.APIKeyID,
		key:       key,
		expiresIn: DefaultExpiresIn,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	if creds.WalletSecret != "" {
		if g.wallet, err = ParseWalletSecret(creds.WalletSecret); err != nil {
			return nil, err
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g, nil
}

// KeyType reports the API key algorithm.
func (g *Generator) KeyType() KeyType {
	return g.key.keyType
}

// HasWalletSecret reports whether wallet tokens can be minted.
func (g *Generator) HasWalletSecret() bool {
	return g.wallet != nil
}

// Tokens implements TokenProvider.
func (g *Generator) Tokens(ctx context.Context, req TokenRequest) (*TokenResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req = normalizeRequest(req)
	if req.IncludeWalletAuth && g.wallet == nil {
		return nil, cdperrors.WalletSecretError(walletSecretRequiredMsg, nil)
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = g.expiresIn
	}
	audience := req.Audience
	if len(audience) == 0 {
		audience = g.audience
	}

	now := g.now()
	bearer, err := signBearer(g.key, JWTOptions{
		KeyID:         g.keyID,
		RequestMethod: req.Method,
		RequestHost:   req.Host,
		RequestPath:   req.Path,
		ExpiresIn:     expiresIn,
		Audience:      audience,
	}, now)
	if err != nil {
		return nil, err
	}
	metrics.TokensGenerated.WithLabelValues("bearer").Inc()

	resp := &TokenResponse{
		BearerToken: bearer,
		ExpiresAt:   now.Add(time.Duration(expiresIn) * time.Second),
	}

	if req.IncludeWalletAuth {
		resp.WalletAuthToken, err = signWallet(g.wallet, WalletJWTOptions{
			RequestMethod: req.Method,
			RequestHost:   req.Host,
			RequestPath:   req.Path,
			RequestData:   req.Body,
		}, now)
		if err != nil {
			return nil, err
		}
		metrics.TokensGenerated.WithLabelValues("wallet").Inc()
	}

	g.logger.Debug("generated CDP tokens",
		zap.String("method", req.Method),
		zap.String("host", req.Host),
		zap.String("path", req.Path),
		zap.Bool("wallet_auth", req.IncludeWalletAuth),
	)
	return resp, nil
}

// normalizeRequest upper-cases the method and applies DefaultHost to REST
// requests. A request with no method and no path is a websocket request and
// keeps an empty host.
func normalizeRequest(req TokenRequest) TokenRequest {
	req.Method = strings.ToUpper(req.Method)
	if req.Host == "" && (req.Method != "" || req.Path != "") {
		req.Host = DefaultHost
	}
	return req
}

// StaticTokenProvider returns tokens minted elsewhere.
type StaticTokenProvider struct {
	BearerToken     string
	WalletAuthToken string
}

// Tokens implements TokenProvider.
func (p StaticTokenProvider) Tokens(_ context.Context, req TokenRequest) (*TokenResponse, error) {
	if p.BearerToken == "" {
		return nil, cdperrors.JWTGenerationError("static token provider has no bearer token", nil)
	}
	resp := &TokenResponse{BearerToken: p.BearerToken}
	if req.IncludeWalletAuth {
		if p.WalletAuthToken == "" {
			return nil, cdperrors.WalletSecretError("wallet auth token is required for this operation", nil)
		}
		resp.WalletAuthToken = p.WalletAuthToken
	}
	return resp, nil
}
