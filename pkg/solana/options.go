package solana

import "go.uber.org/zap"

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger    *zap.Logger
	endpoints map[Network]string
	chains    map[Network]Chain
}

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRPCEndpoint overrides the JSON-RPC endpoint used to build transfers on
// network. Empty endpoints are ignored.
func WithRPCEndpoint(network Network, endpoint string) Option {
	return func(s *settings) {
		if endpoint != "" {
			s.endpoints[network] = endpoint
		}
	}
}

// WithChain replaces the chain reader for network. It takes precedence over
// WithRPCEndpoint.
func WithChain(network Network, chain Chain) Option {
	return func(s *settings) { s.chains[network] = chain }
}

func applyOptions(opts []Option) settings {
	s := settings{
		logger: zap.NewNop(),
		endpoints: map[Network]string{
			NetworkMainnet: MainnetRPCEndpoint,
			NetworkDevnet:  DevnetRPCEndpoint,
		},
		chains: make(map[Network]Chain),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
