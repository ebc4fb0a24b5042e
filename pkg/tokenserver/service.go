//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go

// Package tokenserver issues CDP tokens to callers that do not hold API key
// material. It is the server side of auth.RemoteTokenProvider.
package tokenserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

var allowedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Service defines the interface for the token issuing business logic
type Service interface {
	IssueTokens(ctx context.Context, req *auth.TokenServiceRequest) (*auth.TokenServiceResponse, error)
}

type tokenService struct {
	provider auth.TokenProvider
	cfg      config.TokenIssuerConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a service that mints tokens with provider within the
// limits of cfg.
func NewService(provider auth.TokenProvider, cfg config.TokenIssuerConfig, logger *zap.Logger) Service {
	if cfg.DefaultExpires <= 0 {
		cfg.DefaultExpires = auth.DefaultExpiresIn
	}
	if cfg.MaxExpiresIn <= 0 {
		cfg.MaxExpiresIn = cfg.DefaultExpires
	}
	return &tokenService{provider: provider, cfg: cfg, now: time.Now, logger: logger}
}

// IssueTokens validates the request line and returns freshly minted tokens.
func (s *tokenService) IssueTokens(ctx context.Context, req *auth.TokenServiceRequest) (*auth.TokenServiceResponse, error) {
	if req == nil {
		return nil, cdperrors.BadRequestError(nil, "request body is required")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if !slices.Contains(allowedMethods, method) {
		return nil, cdperrors.BadRequestError(nil, fmt.Sprintf("unsupported method %q", req.Method))
	}
	if !strings.HasPrefix(req.Path, "/") {
		return nil, cdperrors.BadRequestError(nil, "path must start with /")
	}

	host := strings.TrimSpace(req.Host)
	if host == "" {
		host = auth.DefaultHost
	}
	if len(s.cfg.AllowedHosts) > 0 && !slices.Contains(s.cfg.AllowedHosts, host) {
		return nil, cdperrors.ForbiddenError(nil, fmt.Sprintf("host %q is not allowed", host))
	}
	if req.IncludeWalletAuth && !s.cfg.AllowWallet {
		return nil, cdperrors.ForbiddenError(nil, "wallet auth tokens are disabled")
	}

	expiresIn := req.ExpiresIn
	switch {
	case expiresIn == 0:
		expiresIn = s.cfg.DefaultExpires
	case expiresIn < 0 || expiresIn > s.cfg.MaxExpiresIn:
		return nil, cdperrors.BadRequestError(nil,
			fmt.Sprintf("expiresIn must be between 1 and %d seconds", s.cfg.MaxExpiresIn))
	}

	issuedAt := s.now()
	tokens, err := s.provider.Tokens(ctx, auth.TokenRequest{
		Method:            method,
		Host:              host,
		Path:              req.Path,
		Body:              req.Body,
		IncludeWalletAuth: req.IncludeWalletAuth,
		ExpiresIn:         expiresIn,
		Audience:          req.Audience,
	})
	if err != nil {
		var (
			valErr  *cdperrors.ValidationError
			authErr *cdperrors.AuthError
		)
		if errors.As(err, &valErr) {
			return nil, cdperrors.BadRequestError(err, valErr.Error())
		}
		if errors.As(err, &authErr) && authErr.Kind == cdperrors.AuthWalletSecret {
			return nil, cdperrors.ForbiddenError(err, "wallet auth tokens are not available")
		}
		return nil, cdperrors.GeneralError(fmt.Errorf("failed to mint tokens: %w", err))
	}

	expiresAt := tokens.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = issuedAt.Add(time.Duration(expiresIn) * time.Second)
	}
	return &auth.TokenServiceResponse{
		BearerToken:     tokens.BearerToken,
		WalletAuthToken: tokens.WalletAuthToken,
		ExpiresIn:       expiresIn,
		ExpiresAt:       expiresAt.UTC(),
	}, nil
}
