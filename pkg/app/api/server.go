// Package api implements app.Runner for the token server process.
package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/app"
	"github.com/chainsafe/cdp-sdk-go/pkg/app/httpserver"
	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/config"
	"github.com/chainsafe/cdp-sdk-go/pkg/tokenserver"
)

var _ app.Runner = (*Server)(nil)

// Server holds cfg to init the token server.
type Server struct {
	cfg *config.TokenServerConfig
}

// NewServer initializes new token server.
func NewServer(cfg *config.TokenServerConfig) *Server {
	return &Server{cfg: cfg}
}

// Run serves token requests until SIGINT or SIGTERM.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("token server config is nil")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(s.cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	return s.serve(ctx, logger)
}

func (s *Server) serve(ctx context.Context, logger *zap.Logger) error {
	cfg := s.cfg

	logger.Info("Starting token server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("api_key_id", cfg.CDP.APIKeyID),
		zap.Bool("wallet_auth", cfg.Tokens.AllowWallet),
	)

	generator, err := auth.NewGenerator(cfg.CDP.Credentials(), auth.WithGeneratorLogger(logger))
	if err != nil {
		return fmt.Errorf("create token generator: %w", err)
	}
	if cfg.Tokens.AllowWallet && !generator.HasWalletSecret() {
		logger.Warn("Wallet auth is enabled but no wallet secret is configured")
	}

	svc := tokenserver.NewLog(tokenserver.NewService(generator, cfg.Tokens, logger), logger)
	router := tokenserver.NewRouter(svc, cfg.Auth.ClientSecret, logger)

	srv := httpserver.New(cfg.Server, router)
	return httpserver.ServeAndWait(ctx, logger, srv, cfg.Shutdown.Timeout)
}
