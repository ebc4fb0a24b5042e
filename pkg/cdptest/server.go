// Package cdptest provides an in-process fake of the CDP REST API.
//
// The server checks every bearer JWT against its own API key, checks
// X-Wallet-Auth (including reqHash) on wallet routes, records requests and
// serves whatever handlers a test registers.
package cdptest

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

// BasePrefix is the path prefix every API route lives under.
const BasePrefix = "/platform"

// KeyID is the API key name the server trusts.
const KeyID = "organizations/cdptest/apiKeys/test-key"

// Request is a recorded API call.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Header     http.Header
	Body       []byte
	Subject    string
	WalletAuth bool
	AuthError  string
}

// Decode unmarshals the recorded body into v.
func (r Request) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

type failure struct {
	remaining int
	status    int
}

// Server is a fake CDP API backed by httptest.
type Server struct {
	*httptest.Server

	keySecret    string
	walletSecret string
	verifier     *auth.Verifier
	walletPub    *ecdsa.PublicKey

	router   chi.Router
	mu       sync.Mutex
	requests []Request
	routes   map[string]bool
	failures map[string]*failure
}

// NewServer starts a server with a fresh EC API key and wallet secret. It is
// closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	keySecret, err := GenerateECKey()
	if err != nil {
		t.Fatalf("cdptest: %v", err)
	}
	walletSecret, err := GenerateWalletSecret()
	if err != nil {
		t.Fatalf("cdptest: %v", err)
	}
	walletPub, err := auth.WalletPublicKey(walletSecret)
	if err != nil {
		t.Fatalf("cdptest: %v", err)
	}

	verifier := auth.NewVerifier(0)
	if err := verifier.AddSecret(KeyID, keySecret); err != nil {
		t.Fatalf("cdptest: %v", err)
	}

	s := &Server{
		keySecret:    keySecret,
		walletSecret: walletSecret,
		verifier:     verifier,
		walletPub:    walletPub,
		routes:       make(map[string]bool),
		failures:     make(map[string]*failure),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.authenticate)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusNotFound, "not_found", "no handler for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed")
	})
	s.router = r

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// BasePath is the value to configure as the client base path.
func (s *Server) BasePath() string { return s.URL + BasePrefix }

// Credentials returns credentials the server accepts.
func (s *Server) Credentials() auth.Credentials {
	return auth.Credentials{APIKeyID: KeyID, APIKeySecret: s.keySecret, WalletSecret: s.walletSecret}
}

// NewClient returns a transport client signed with the server's credentials
// and fast retries.
func (s *Server) NewClient(t testing.TB, opts ...transport.Option) *transport.Client {
	t.Helper()
	gen, err := auth.NewGenerator(s.Credentials())
	if err != nil {
		t.Fatalf("cdptest: %v", err)
	}
	retry := transport.DefaultRetryConfig()
	retry.InitialBackoff = 0
	retry.MaxBackoff = 0

	opts = append([]transport.Option{transport.WithHTTPClient(s.Client())}, opts...)
	c, err := transport.New(&transport.Config{BasePath: s.BasePath(), Retry: &retry}, gen, opts...)
	if err != nil {
		t.Fatalf("cdptest: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Handle registers h for method and a chi pattern relative to BasePrefix,
// for example "/v2/evm/accounts/{address}".
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	key := routeKey(method, pattern)

	s.mu.Lock()
	s.routes[key] = true
	s.mu.Unlock()

	s.router.MethodFunc(method, BasePrefix+pattern, func(w http.ResponseWriter, r *http.Request) {
		if status, ok := s.takeFailure(key); ok {
			WriteError(w, status, "injected_failure", fmt.Sprintf("injected %d", status))
			return
		}
		h(w, r)
	})
}

// HandleJSON registers a handler that always replies with status and body.
func (s *Server) HandleJSON(method, pattern string, status int, body any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// FailNext makes the next n calls to the route fail with status. The route
// replies {} afterwards unless a handler is registered.
func (s *Server) FailNext(method, pattern string, n, status int) {
	key := routeKey(method, pattern)

	s.mu.Lock()
	s.failures[key] = &failure{remaining: n, status: status}
	registered := s.routes[key]
	s.mu.Unlock()

	if !registered {
		s.HandleJSON(method, pattern, http.StatusOK, map[string]any{})
	}
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request. It fails the test when
// nothing has been recorded.
func (s *Server) LastRequest(t testing.TB) Request {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatalf("cdptest: no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) takeFailure(key string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.failures[key]
	if !ok || f.remaining <= 0 {
		return 0, false
	}
	f.remaining--
	return f.status, true
}

// authenticate verifies tokens and records the request before routing.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(body))

		rec := Request{
			Method:     r.Method,
			Path:       strings.TrimPrefix(r.URL.Path, BasePrefix),
			Query:      r.URL.Query(),
			Header:     r.Header.Clone(),
			Body:       body,
			WalletAuth: r.Header.Get(transport.WalletAuthHeader) != "",
		}

		authErr := s.verify(r, body, &rec)
		if authErr != nil {
			rec.AuthError = authErr.Error()
		}

		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		if authErr != nil {
			WriteError(w, http.StatusUnauthorized, "unauthorized", authErr.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) verify(r *http.Request, body []byte, rec *Request) error {
	bearer, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || bearer == "" {
		return fmt.Errorf("missing bearer token")
	}
	claims, err := s.verifier.VerifyRequest(bearer, r.Method, r.Host, r.URL.Path)
	if err != nil {
		return err
	}
	rec.Subject = claims.Subject

	if !transport.RequiresWalletAuth(r.Method, r.URL.Path) {
		return nil
	}
	walletToken := r.Header.Get(transport.WalletAuthHeader)
	if walletToken == "" {
		return fmt.Errorf("missing %s header", transport.WalletAuthHeader)
	}
	parsed, err := auth.ParseBody(body)
	if err != nil {
		return fmt.Errorf("invalid body: %w", err)
	}
	if _, err := s.verifier.VerifyWalletJWT(walletToken, s.walletPub, r.Method, r.Host, r.URL.Path, parsed); err != nil {
		return fmt.Errorf("wallet auth: %w", err)
	}
	return nil
}

func routeKey(method, pattern string) string {
	return strings.ToUpper(method) + " " + pattern
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// WriteError writes a CDP style error body.
func WriteError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("X-Correlation-Id", "cdptest-correlation")
	WriteJSON(w, status, map[string]string{
		"errorType":     errorType,
		"errorMessage":  message,
		"correlationId": "cdptest-correlation",
	})
}

// DecodeBody unmarshals the request body into v, replying 400 on failure.
func DecodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}
