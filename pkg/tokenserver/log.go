package tokenserver

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
)

const serviceName = "TokenService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the token Service.
// It logs method entry/exit, duration and errors. Tokens are never logged.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// IssueTokens wraps the service method with logging
func (ls *logService) IssueTokens(
	ctx context.Context,
	req *auth.TokenServiceRequest,
) (resp *auth.TokenServiceResponse, err error) {
	start := time.Now()

	fields := []zap.Field{
		zap.String("service", serviceName),
		zap.String("method", "IssueTokens"),
	}
	if req != nil {
		fields = append(fields,
			zap.String("http_method", req.Method),
			zap.String("host", req.Host),
			zap.String("path", req.Path),
			zap.Bool("wallet_auth", req.IncludeWalletAuth),
		)
	}
	ls.logger.Info("IssueTokens started", fields...)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("IssueTokens failed",
				append(fields, zap.Duration("duration", duration), zap.Error(err))...,
			)
		} else {
			ls.logger.Info("IssueTokens completed",
				append(fields,
					zap.Int64("expires_in", resp.ExpiresIn),
					zap.Time("expires_at", resp.ExpiresAt),
					zap.Duration("duration", duration),
				)...,
			)
		}
	}()

	return ls.svc.IssueTokens(ctx, req)
}
