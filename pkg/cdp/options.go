package cdp

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	creds      *auth.Credentials
	provider   auth.TokenProvider
	transport  transport.Config
	retry      *transport.RetryConfig
	maxRetries *int
	httpClient *http.Client
	logger     *zap.Logger
	solanaRPC  config.SolanaConfig
}

// WithCredentials signs requests locally with an API key and optional wallet
// secret.
func WithCredentials(creds auth.Credentials) Option {
	return func(s *settings) { s.creds = &creds }
}

// WithTokenProvider obtains tokens from p instead of local credentials. It
// takes precedence over WithCredentials.
func WithTokenProvider(p auth.TokenProvider) Option {
	return func(s *settings) { s.provider = p }
}

// WithBasePath overrides the API base path.
func WithBasePath(basePath string) Option {
	return func(s *settings) { s.transport.BasePath = basePath }
}

// WithHostOverride sets the Host header of every request to host. Tokens are
// signed for host rather than for the host of the base path, so the base path
// can point at a proxy in front of the real API host.
func WithHostOverride(host string) Option {
	return func(s *settings) { s.transport.HostOverride = host }
}

// WithExpiresIn sets the bearer token lifetime in seconds.
func WithExpiresIn(seconds int64) Option {
	return func(s *settings) { s.transport.ExpiresIn = seconds }
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(cfg transport.RetryConfig) Option {
	return func(s *settings) { s.retry = &cfg }
}

// WithMaxNetworkRetries sets the retry count on top of the retry policy. Zero
// disables retries.
func WithMaxNetworkRetries(n int) Option {
	return func(s *settings) { s.maxRetries = &n }
}

// WithHTTPClient sets the HTTP client whose transport carries requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// WithTimeout bounds each call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) { s.transport.Timeout = d }
}

// WithLogger sets a custom logger for the client and its resource clients.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithDebugging logs every request attempt at info level.
func WithDebugging(enabled bool) Option {
	return func(s *settings) { s.transport.Debugging = enabled }
}

// WithSource names the integration in the correlation header.
func WithSource(source, version string) Option {
	return func(s *settings) {
		s.transport.Source = source
		s.transport.SourceVersion = version
	}
}

// WithSolanaRPC overrides the JSON-RPC endpoints used to build Solana
// transfers. Empty values keep the public endpoints.
func WithSolanaRPC(mainnet, devnet string) Option {
	return func(s *settings) {
		s.solanaRPC = config.SolanaConfig{MainnetRPC: mainnet, DevnetRPC: devnet}
	}
}

// WithConfig applies a loaded CDP config section. Later options override it.
func WithConfig(c config.CDPConfig) Option {
	return func(s *settings) {
		if c.APIKeyID != "" || c.APIKeySecret != "" {
			creds := c.Credentials()
			s.creds = &creds
		}
		tc := c.TransportConfig()
		s.retry = tc.Retry
		tc.Retry = nil
		s.transport = *tc
		s.solanaRPC = c.Solana
	}
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}
