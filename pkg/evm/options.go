package evm

import "go.uber.org/zap"

// Option configures client settings using the functional options pattern.
type Option func(*settings)

type settings struct {
	logger *zap.Logger
}

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func applyOptions(opts []Option) settings {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}
