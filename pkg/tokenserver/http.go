package tokenserver

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/internal/metrics"
	apphttp "github.com/chainsafe/cdp-sdk-go/pkg/app/http"
	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	maxRequestBytes       = 1 << 20
	defaultRequestTimeout = 30 * time.Second
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service      Service
	clientSecret string
	logger       *zap.Logger
}

// NewRouter returns the token server router with health, metrics and token
// routes. A non-empty clientSecret must be presented as a bearer token on
// the token route.
func NewRouter(service Service, clientSecret string, logger *zap.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	RegisterRoutes(r, service, clientSecret, logger)
	return r
}

// RegisterRoutes registers the token endpoint on the given chi router
func RegisterRoutes(r chi.Router, service Service, clientSecret string, logger *zap.Logger) {
	h := &HTTP{
		service:      service,
		clientSecret: clientSecret,
		logger:       logger,
	}
	r.Post(auth.TokensPath, apphttp.HandleError(h.issue))
}

func (h *HTTP) issue(w http.ResponseWriter, r *http.Request) (err error) {
	var req auth.TokenServiceRequest
	defer func() {
		code := http.StatusOK
		if err != nil {
			code = apphttp.StatusOf(err)
		}
		metrics.TokensServed.WithLabelValues(strconv.Itoa(code), strconv.FormatBool(req.IncludeWalletAuth)).Inc()
	}()

	if err := h.authorize(r); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		return cdperrors.BadRequestError(err, "failed to read request")
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return cdperrors.BadRequestError(err, "invalid JSON")
	}

	resp, err := h.service.IssueTokens(r.Context(), &req)
	if err != nil {
		return err
	}

	w.Header().Set("Cache-Control", "no-store")
	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) authorize(r *http.Request) error {
	if h.clientSecret == "" {
		return nil
	}
	presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(presented), []byte(h.clientSecret)) != 1 {
		h.logger.Warn("rejected token request", zap.String("remote_addr", r.RemoteAddr))
		return cdperrors.UnAuthorizedError(nil, "invalid client secret")
	}
	return nil
}
