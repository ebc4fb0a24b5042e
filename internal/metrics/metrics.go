package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TokensGenerated counts tokens minted locally by kind (bearer, wallet)
	TokensGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdp_tokens_generated_total",
			Help: "Total number of CDP tokens generated",
		},
		[]string{"kind"},
	)

	// RemoteTokenFetches counts token fetches from a token service by result
	RemoteTokenFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdp_remote_token_fetches_total",
			Help: "Total number of token fetches from a remote token service",
		},
		[]string{"result"},
	)

	// HTTPRequestsTotal counts CDP API attempts by method and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdp_http_requests_total",
			Help: "Total number of HTTP attempts made to the CDP API",
		},
		[]string{"method", "status"},
	)

	// HTTPRequestDuration tracks the duration of a CDP API call including retries
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cdp_http_request_duration_seconds",
			Help:    "CDP API call duration in seconds, retries included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// HTTPRetries counts retried attempts by method and reason (status code or network error type)
	HTTPRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdp_http_retries_total",
			Help: "Total number of retried CDP API attempts",
		},
		[]string{"method", "reason"},
	)

	// TokensServed counts token server responses by status code
	TokensServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cdp_token_server_requests_total",
			Help: "Total number of token requests handled by the token server",
		},
		[]string{"code", "wallet_auth"},
	)
)
