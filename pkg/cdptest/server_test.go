package cdptest

import (
	"context"
	"net/http"
	"testing"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

func TestServer_VerifiesTokens(t *testing.T) {
	s := NewServer(t)
	s.HandleJSON(http.MethodGet, "/v2/evm/accounts", http.StatusOK, map[string]any{"accounts": []any{}})
	s.HandleJSON(http.MethodPost, "/v2/evm/accounts", http.StatusCreated, map[string]any{"address": "0xabc"})

	c := s.NewClient(t)
	ctx := context.Background()

	if err := c.Do(ctx, http.MethodGet, "/v2/evm/accounts", nil, nil, nil); err != nil {
		t.Fatalf("GET: %v", err)
	}
	if err := c.Do(ctx, http.MethodPost, "/v2/evm/accounts", nil, map[string]any{"name": "a"}, nil); err != nil {
		t.Fatalf("POST: %v", err)
	}

	reqs := s.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}
	if reqs[0].Subject != KeyID || reqs[0].WalletAuth {
		t.Fatalf("unexpected first request: %+v", reqs[0])
	}
	if !reqs[1].WalletAuth || reqs[1].AuthError != "" {
		t.Fatalf("unexpected second request: %+v", reqs[1])
	}
}

func TestServer_RejectsMissingToken(t *testing.T) {
	s := NewServer(t)
	s.HandleJSON(http.MethodGet, "/v2/end-users", http.StatusOK, map[string]any{})

	resp, err := s.Client().Get(s.BasePath() + "/v2/end-users")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got := s.LastRequest(t).AuthError; got == "" {
		t.Fatal("expected recorded auth error")
	}
}

func TestServer_FailNext(t *testing.T) {
	s := NewServer(t)
	s.FailNext(http.MethodGet, "/v2/evm/accounts", 2, http.StatusServiceUnavailable)

	c := s.NewClient(t)
	if err := c.Do(context.Background(), http.MethodGet, "/v2/evm/accounts", nil, nil, nil); err != nil {
		t.Fatalf("expected retries to succeed: %v", err)
	}
	if n := len(s.Requests()); n != 3 {
		t.Fatalf("expected 3 attempts, got %d", n)
	}

	s.FailNext(http.MethodGet, "/v2/evm/accounts", 10, http.StatusBadRequest)
	err := c.Do(context.Background(), http.MethodGet, "/v2/evm/accounts", nil, nil, nil)
	if cdperrors.StatusCode(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestServer_UnknownRoute(t *testing.T) {
	s := NewServer(t)
	c := s.NewClient(t)

	err := c.Do(context.Background(), http.MethodGet, "/v2/nope", nil, nil, nil)
	if !cdperrors.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}
