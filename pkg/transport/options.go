package transport

import (
	"net/http"

	"go.uber.org/zap"
)

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger     *zap.Logger
	httpClient *http.Client
	random     func() float64
}

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithHTTPClient sets the base HTTP client. Its Transport is wrapped with
// authentication and retries; its Timeout applies when Config.Timeout is zero.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) { s.httpClient = c }
}

// withRandom fixes the jitter source, for tests.
func withRandom(f func() float64) Option {
	return func(s *settings) { s.random = f }
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger:     zap.NewNop(),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.httpClient == nil {
		s.httpClient = &http.Client{}
	}
	return s
}
