// Package cdp is the entry point of the SDK. A Client owns one authenticated
// transport and hands out the resource clients built on it.
package cdp

import (
	"os"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
	"github.com/chainsafe/cdp-sdk-go/pkg/enduser"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
	"github.com/chainsafe/cdp-sdk-go/pkg/evm"
	"github.com/chainsafe/cdp-sdk-go/pkg/policies"
	"github.com/chainsafe/cdp-sdk-go/pkg/solana"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

// Environment variables read by NewFromEnv.
const (
	EnvAPIKeyID     = "CDP_API_KEY_ID"
	EnvAPIKeySecret = "CDP_API_KEY_SECRET" //nolint:gosec // env var name
	EnvWalletSecret = "CDP_WALLET_SECRET"  //nolint:gosec // env var name
)

// Client is the CDP API client.
type Client struct {
	api      *transport.Client
	logger   *zap.Logger
	evm      *evm.Client
	solana   *solana.Client
	policies *policies.Client
	endUsers *enduser.Client
}

// New creates a client. Either WithCredentials or WithTokenProvider is
// required.
func New(opts ...Option) (*Client, error) {
	s := applyOptions(opts)

	provider := s.provider
	if provider == nil {
		if s.creds == nil {
			return nil, cdperrors.NewValidationError("apiKeyId", "API key ID is required. Set CDP_API_KEY_ID or pass a token provider")
		}
		gen, err := auth.NewGenerator(*s.creds, auth.WithGeneratorLogger(s.logger.Named("auth")))
		if err != nil {
			return nil, err
		}
		provider = gen
	}

	tc := s.transport
	if s.retry != nil || s.maxRetries != nil {
		retry := transport.DefaultRetryConfig()
		if s.retry != nil {
			retry = *s.retry
		}
		if s.maxRetries != nil {
			retry.MaxRetries = *s.maxRetries
		}
		tc.Retry = &retry
	}

	topts := []transport.Option{transport.WithLogger(s.logger.Named("transport"))}
	if s.httpClient != nil {
		topts = append(topts, transport.WithHTTPClient(s.httpClient))
	}
	api, err := transport.New(&tc, provider, topts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		api:    api,
		logger: s.logger,
		evm:    evm.New(api, evm.WithLogger(s.logger)),
		solana: solana.New(api,
			solana.WithLogger(s.logger),
			solana.WithRPCEndpoint(solana.NetworkMainnet, s.solanaRPC.MainnetRPC),
			solana.WithRPCEndpoint(solana.NetworkDevnet, s.solanaRPC.DevnetRPC),
		),
		policies: policies.New(api, policies.WithLogger(s.logger)),
		endUsers: enduser.New(api),
	}, nil
}

// NewFromEnv creates a client from CDP_API_KEY_ID, CDP_API_KEY_SECRET and the
// optional CDP_WALLET_SECRET. Options are applied after the environment.
func NewFromEnv(opts ...Option) (*Client, error) {
	creds := auth.Credentials{
		APIKeyID:     os.Getenv(EnvAPIKeyID),
		APIKeySecret: os.Getenv(EnvAPIKeySecret),
		WalletSecret: os.Getenv(EnvWalletSecret),
	}
	var envOpts []Option
	if creds.APIKeyID != "" || creds.APIKeySecret != "" {
		envOpts = append(envOpts, WithCredentials(creds))
	}
	return New(append(envOpts, opts...)...)
}

// EVM returns the EVM accounts client.
func (c *Client) EVM() *evm.Client { return c.evm }

// Solana returns the Solana accounts client.
func (c *Client) Solana() *solana.Client { return c.solana }

// Policies returns the policy engine client.
func (c *Client) Policies() *policies.Client { return c.policies }

// EndUsers returns the end user client.
func (c *Client) EndUsers() *enduser.Client { return c.endUsers }

// API returns the underlying transport for endpoints without a typed client.
func (c *Client) API() transport.Doer { return c.api }

// Close releases the client's connections. Calls made afterwards fail with
// transport.ErrClientClosed.
func (c *Client) Close() error {
	c.logger.Debug("closing CDP client")
	return c.api.Close()
}
