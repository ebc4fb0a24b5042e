package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainsafe/cdp-sdk-go/pkg/auth"
)

type tokenOutput struct {
	BearerToken     string    `json:"bearerToken" yaml:"bearerToken"`
	WalletAuthToken string    `json:"walletAuthToken,omitempty" yaml:"walletAuthToken,omitempty"`
	ExpiresAt       time.Time `json:"expiresAt" yaml:"expiresAt"`
}

func newTokenCommand(a *app) *cobra.Command {
	var (
		method    string
		host      string
		path      string
		body      string
		wallet    bool
		expiresIn int64
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token (and optionally a wallet token) for one request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gen, err := auth.NewGenerator(a.cfg.CDP.Credentials(), auth.WithGeneratorLogger(a.logger))
			if err != nil {
				return err
			}
			req := auth.TokenRequest{
				Method:            method,
				Host:              host,
				Path:              path,
				IncludeWalletAuth: wallet,
				ExpiresIn:         expiresIn,
			}
			if body != "" {
				if err := json.Unmarshal([]byte(body), &req.Body); err != nil {
					return fmt.Errorf("--body must be a JSON object: %w", err)
				}
			}
			tokens, err := gen.Tokens(cmd.Context(), req)
			if err != nil {
				return err
			}
			return a.print(tokenOutput{
				BearerToken:     tokens.BearerToken,
				WalletAuthToken: tokens.WalletAuthToken,
				ExpiresAt:       tokens.ExpiresAt.UTC(),
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&method, "method", http.MethodGet, "HTTP method the token is bound to")
	f.StringVar(&host, "host", auth.DefaultHost, "API host the token is bound to")
	f.StringVar(&path, "path", "", "request path, for example /platform/v2/evm/accounts")
	f.StringVar(&body, "body", "", "JSON request body, hashed into the wallet token")
	f.BoolVar(&wallet, "wallet", false, "also mint an X-Wallet-Auth token")
	f.Int64Var(&expiresIn, "expires-in", 0, "bearer lifetime in seconds")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}
