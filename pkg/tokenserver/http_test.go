package tokenserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/cdptest"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
	"github.com/chainsafe/cdp-sdk-go/pkg/tokenserver/mocks"
)

const testClientSecret = "s3cret"

func newTokenTestServer(svc Service, secret string) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, secret, zap.NewNop())
	return r
}

type errorBody struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func TestTokensHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newTokenTestServer(svc, "")

	req := httptest.NewRequest(http.MethodPost, auth.TokensPath, bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	got := decodeError(t, rec)
	if got.Error != "invalid JSON" {
		t.Fatalf("expected error %q, got %q", "invalid JSON", got.Error)
	}
	if got.Code != http.StatusBadRequest {
		t.Fatalf("expected code %d, got %d", http.StatusBadRequest, got.Code)
	}
}

func TestTokensHTTP_MissingClientSecret_ReturnsUnauthorized(t *testing.T) {
	svc := mocks.NewService(t)
	handler := newTokenTestServer(svc, testClientSecret)

	for _, header := range []string{"", "Bearer wrong", testClientSecret} {
		req := httptest.NewRequest(http.MethodPost, auth.TokensPath, bytes.NewBufferString(`{}`))
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status %d, got %d", header, http.StatusUnauthorized, rec.Code)
		}
		if got := decodeError(t, rec); got.Error != "invalid client secret" {
			t.Fatalf("expected error %q, got %q", "invalid client secret", got.Error)
		}
	}
}

func TestTokensHTTP_Success(t *testing.T) {
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := mocks.NewService(t)
	svc.EXPECT().
		IssueTokens(mock.Anything, mock.MatchedBy(func(req *auth.TokenServiceRequest) bool {
			return req.Method == "POST" &&
				req.Path == "/platform/v2/evm/accounts" &&
				req.IncludeWalletAuth &&
				req.Body["name"] == "treasury"
		})).
		Return(&auth.TokenServiceResponse{
			BearerToken:     "bearer",
			WalletAuthToken: "wallet",
			ExpiresIn:       120,
			ExpiresAt:       expires,
		}, nil).
		Once()
	handler := newTokenTestServer(svc, testClientSecret)

	body := `{"method":"POST","path":"/platform/v2/evm/accounts","body":{"name":"treasury"},"includeWalletAuth":true}`
	req := httptest.NewRequest(http.MethodPost, auth.TokensPath, bytes.NewBufferString(body))
	req.Header.Set("Authorization", "Bearer "+testClientSecret)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, rec.Code, rec.Body.String())
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("expected Cache-Control no-store, got %q", cc)
	}
	var got auth.TokenServiceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.BearerToken != "bearer" || got.WalletAuthToken != "wallet" {
		t.Fatalf("unexpected tokens %+v", got)
	}
	if !got.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiresAt %v, got %v", expires, got.ExpiresAt)
	}
}

func TestTokensHTTP_ServiceError_MapsCategory(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		IssueTokens(mock.Anything, mock.Anything).
		Return(nil, cdperrors.ForbiddenError(nil, "wallet auth tokens are disabled")).
		Once()
	handler := newTokenTestServer(svc, "")

	req := httptest.NewRequest(http.MethodPost, auth.TokensPath,
		bytes.NewBufferString(`{"method":"POST","path":"/v2/evm/accounts","includeWalletAuth":true}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != "wallet auth tokens are disabled" {
		t.Fatalf("unexpected error %q", got.Error)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	router := NewRouter(mocks.NewService(t), "", zap.NewNop())

	for _, path := range []string{"/health", "/metrics"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusOK, rec.Code)
		}
	}
}

// The remote provider and the token server must agree on the wire format,
// and the tokens minted must verify against the key that signed them.
func TestRemoteTokenProvider_RoundTrip(t *testing.T) {
	keySecret, err := cdptest.GenerateECKey()
	require.NoError(t, err)
	walletSecret, err := cdptest.GenerateWalletSecret()
	require.NoError(t, err)

	creds := auth.Credentials{APIKeyID: cdptest.KeyID, APIKeySecret: keySecret, WalletSecret: walletSecret}
	gen, err := auth.NewGenerator(creds)
	require.NoError(t, err)

	svc := NewLog(NewService(gen, testIssuerConfig, zap.NewNop()), zap.NewNop())
	srv := httptest.NewServer(NewRouter(svc, testClientSecret, zap.NewNop()))
	t.Cleanup(srv.Close)

	remote, err := auth.NewRemoteTokenProvider(&auth.RemoteConfig{URL: srv.URL, ClientSecret: testClientSecret}, srv.Client())
	require.NoError(t, err)

	body := map[string]any{"name": "treasury"}
	tokens, err := remote.Tokens(context.Background(), auth.TokenRequest{
		Method:            http.MethodPost,
		Path:              "/platform/v2/evm/accounts",
		Body:              body,
		IncludeWalletAuth: true,
	})
	require.NoError(t, err)

	verifier := auth.NewVerifier(0)
	require.NoError(t, verifier.AddSecret(cdptest.KeyID, keySecret))
	claims, err := verifier.VerifyRequest(tokens.BearerToken, http.MethodPost, auth.DefaultHost, "/platform/v2/evm/accounts")
	require.NoError(t, err)
	require.Equal(t, cdptest.KeyID, claims.Subject)

	walletPub, err := auth.WalletPublicKey(walletSecret)
	require.NoError(t, err)
	_, err = verifier.VerifyWalletJWT(tokens.WalletAuthToken, walletPub, http.MethodPost, auth.DefaultHost, "/platform/v2/evm/accounts", body)
	require.NoError(t, err)
}

func TestRemoteTokenProvider_ForbiddenHost(t *testing.T) {
	provider := auth.StaticTokenProvider{BearerToken: "bearer"}
	svc := NewService(provider, testIssuerConfig, zap.NewNop())
	srv := httptest.NewServer(NewRouter(svc, "", zap.NewNop()))
	t.Cleanup(srv.Close)

	remote, err := auth.NewRemoteTokenProvider(&auth.RemoteConfig{URL: srv.URL}, srv.Client())
	require.NoError(t, err)

	_, err = remote.Tokens(context.Background(), auth.TokenRequest{
		Method: http.MethodGet,
		Host:   "evil.example.com",
		Path:   "/v2/evm/accounts",
	})
	require.ErrorContains(t, err, "token service returned 403")
	require.Equal(t, cdperrors.CategoryForbidden, cdperrors.CategoryOf(err))
}
