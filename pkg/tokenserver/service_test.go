package tokenserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

var testIssuerConfig = config.TokenIssuerConfig{
	AllowedHosts:   []string{auth.DefaultHost},
	AllowWallet:    true,
	MaxExpiresIn:   600,
	DefaultExpires: 120,
}

type recordingProvider struct {
	got  auth.TokenRequest
	resp *auth.TokenResponse
	err  error
}

func (p *recordingProvider) Tokens(_ context.Context, req auth.TokenRequest) (*auth.TokenResponse, error) {
	p.got = req
	if p.err != nil {
		return nil, p.err
	}
	return p.resp, nil
}

func TestIssueTokens_AppliesDefaults(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	provider := &recordingProvider{resp: &auth.TokenResponse{BearerToken: "bearer"}}
	svc := NewService(provider, testIssuerConfig, zap.NewNop()).(*tokenService)
	svc.now = func() time.Time { return now }

	resp, err := svc.IssueTokens(context.Background(), &auth.TokenServiceRequest{
		Method: "get",
		Path:   "/platform/v2/evm/accounts",
	})
	require.NoError(t, err)

	assert.Equal(t, "GET", provider.got.Method)
	assert.Equal(t, auth.DefaultHost, provider.got.Host)
	assert.Equal(t, int64(120), provider.got.ExpiresIn)
	assert.Equal(t, "bearer", resp.BearerToken)
	assert.Equal(t, int64(120), resp.ExpiresIn)
	assert.Equal(t, now.Add(120*time.Second), resp.ExpiresAt)
}

func TestIssueTokens_PassesWalletRequest(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 6, 5, 0, time.UTC)
	provider := &recordingProvider{resp: &auth.TokenResponse{
		BearerToken:     "bearer",
		WalletAuthToken: "wallet",
		ExpiresAt:       expires,
	}}
	svc := NewService(provider, testIssuerConfig, zap.NewNop())

	body := map[string]any{"name": "treasury"}
	resp, err := svc.IssueTokens(context.Background(), &auth.TokenServiceRequest{
		Method:            "POST",
		Host:              auth.DefaultHost,
		Path:              "/platform/v2/evm/accounts",
		Body:              body,
		IncludeWalletAuth: true,
		ExpiresIn:         300,
	})
	require.NoError(t, err)

	assert.True(t, provider.got.IncludeWalletAuth)
	assert.Equal(t, body, provider.got.Body)
	assert.Equal(t, int64(300), provider.got.ExpiresIn)
	assert.Equal(t, "wallet", resp.WalletAuthToken)
	assert.Equal(t, expires, resp.ExpiresAt)
}

func TestIssueTokens_Rejects(t *testing.T) {
	noWallet := testIssuerConfig
	noWallet.AllowWallet = false

	tests := []struct {
		name    string
		cfg     config.TokenIssuerConfig
		req     *auth.TokenServiceRequest
		wantCat cdperrors.Category
	}{
		{
			name:    "nil request",
			cfg:     testIssuerConfig,
			wantCat: cdperrors.CategoryDataError,
		},
		{
			name:    "unknown method",
			cfg:     testIssuerConfig,
			req:     &auth.TokenServiceRequest{Method: "FETCH", Path: "/v2/evm/accounts"},
			wantCat: cdperrors.CategoryDataError,
		},
		{
			name:    "relative path",
			cfg:     testIssuerConfig,
			req:     &auth.TokenServiceRequest{Method: "GET", Path: "v2/evm/accounts"},
			wantCat: cdperrors.CategoryDataError,
		},
		{
			name:    "host not allowed",
			cfg:     testIssuerConfig,
			req:     &auth.TokenServiceRequest{Method: "GET", Host: "evil.example.com", Path: "/v2/evm/accounts"},
			wantCat: cdperrors.CategoryForbidden,
		},
		{
			name:    "wallet auth disabled",
			cfg:     noWallet,
			req:     &auth.TokenServiceRequest{Method: "POST", Path: "/v2/evm/accounts", IncludeWalletAuth: true},
			wantCat: cdperrors.CategoryForbidden,
		},
		{
			name:    "expiry too long",
			cfg:     testIssuerConfig,
			req:     &auth.TokenServiceRequest{Method: "GET", Path: "/v2/evm/accounts", ExpiresIn: 601},
			wantCat: cdperrors.CategoryDataError,
		},
		{
			name:    "negative expiry",
			cfg:     testIssuerConfig,
			req:     &auth.TokenServiceRequest{Method: "GET", Path: "/v2/evm/accounts", ExpiresIn: -1},
			wantCat: cdperrors.CategoryDataError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &recordingProvider{resp: &auth.TokenResponse{BearerToken: "bearer"}}
			svc := NewService(provider, tt.cfg, zap.NewNop())

			_, err := svc.IssueTokens(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantCat, cdperrors.CategoryOf(err))
			assert.Empty(t, provider.got.Method, "provider must not be called")
		})
	}
}

func TestIssueTokens_ProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantCat cdperrors.Category
	}{
		{name: "validation", err: cdperrors.NewValidationError("path", "is required"), wantCat: cdperrors.CategoryDataError},
		{name: "missing wallet secret", err: cdperrors.WalletSecretError("no wallet secret", nil), wantCat: cdperrors.CategoryForbidden},
		{name: "signing failure", err: errors.New("hsm offline"), wantCat: cdperrors.CategoryGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(&recordingProvider{err: tt.err}, testIssuerConfig, zap.NewNop())

			_, err := svc.IssueTokens(context.Background(), &auth.TokenServiceRequest{Method: "GET", Path: "/v2/evm/accounts"})
			require.Error(t, err)
			assert.Equal(t, tt.wantCat, cdperrors.CategoryOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewService_OpenHostList(t *testing.T) {
	provider := &recordingProvider{resp: &auth.TokenResponse{BearerToken: "bearer"}}
	svc := NewService(provider, config.TokenIssuerConfig{AllowWallet: true}, zap.NewNop())

	resp, err := svc.IssueTokens(context.Background(), &auth.TokenServiceRequest{
		Method: "GET",
		Host:   "sandbox.cdp.example",
		Path:   "/v2/evm/accounts",
	})
	require.NoError(t, err)
	assert.Equal(t, "sandbox.cdp.example", provider.got.Host)
	assert.Equal(t, auth.DefaultExpiresIn, resp.ExpiresIn)
}
