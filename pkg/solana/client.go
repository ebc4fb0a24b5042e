// Package solana implements the CDP Solana accounts, signing, transfer,
// balance and faucet endpoints.
package solana

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
	"github.com/chainsafe/cdp-sdk-go/pkg/transport"
)

const (
	accountsPath      = "/v2/solana/accounts"
	tokenBalancesPath = "/v2/solana/token-balances"
	faucetPath        = "/v2/solana/faucet"
)

// Client calls the Solana endpoints.
type Client struct {
	api    transport.Doer
	logger *zap.Logger
	chains map[Network]Chain
}

// New creates a Solana client on top of api. Transfers read chain state from
// the public RPC endpoints unless overridden.
func New(api transport.Doer, opts ...Option) *Client {
	s := applyOptions(opts)
	chains := make(map[Network]Chain, len(s.endpoints))
	for network, endpoint := range s.endpoints {
		chains[network] = NewRPCChain(endpoint)
	}
	for network, chain := range s.chains {
		chains[network] = chain
	}
	return &Client{api: api, logger: s.logger.Named("solana"), chains: chains}
}

// CreateAccount creates a server managed account.
func (c *Client) CreateAccount(ctx context.Context, opts CreateAccountOptions) (*Account, error) {
	var out Account
	if err := c.api.Do(ctx, http.MethodPost, accountsPath, nil, opts, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("created account", zap.String("address", out.Address), zap.String("name", out.Name))
	return &out, nil
}

// GetAccount fetches an account by address, or by name when no address is set.
func (c *Client) GetAccount(ctx context.Context, opts GetAccountOptions) (*Account, error) {
	var path string
	switch {
	case opts.Address != "":
		path = accountsPath + "/" + transport.PathEscape(opts.Address)
	case opts.Name != "":
		path = accountsPath + "/by-name/" + transport.PathEscape(opts.Name)
	default:
		return nil, cdperrors.NewValidationError("address", "either address or name must be provided")
	}

	var out Account
	if err := c.api.Do(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetOrCreateAccount returns the account called name, creating it when it
// does not exist.
func (c *Client) GetOrCreateAccount(ctx context.Context, opts CreateAccountOptions) (*Account, error) {
	if opts.Name == "" {
		return nil, cdperrors.NewValidationError("name", "is required")
	}

	acct, err := c.GetAccount(ctx, GetAccountOptions{Name: opts.Name})
	if err == nil || !cdperrors.IsNotFound(err) {
		return acct, err
	}
	acct, err = c.CreateAccount(ctx, opts)
	if err == nil || !cdperrors.IsConflict(err) {
		return acct, err
	}
	return c.GetAccount(ctx, GetAccountOptions{Name: opts.Name})
}

// ListAccounts returns a page of accounts.
func (c *Client) ListAccounts(ctx context.Context, page PageOptions) (*ListAccountsResult, error) {
	var out ListAccountsResult
	if err := c.api.Do(ctx, http.MethodGet, accountsPath, page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAccount changes the name or policy of an account.
func (c *Client) UpdateAccount(ctx context.Context, address string, opts UpdateAccountOptions) (*Account, error) {
	if _, err := parsePublicKey("address", address); err != nil {
		return nil, err
	}
	var out Account
	if err := c.api.Do(ctx, http.MethodPut, accountsPath+"/"+address, nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignMessage signs a base64 encoded message.
func (c *Client) SignMessage(ctx context.Context, address, message string) (*SignatureResult, error) {
	if _, err := parsePublicKey("address", address); err != nil {
		return nil, err
	}
	var out SignatureResult
	body := map[string]string{"message": message}
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/"+address+"/sign/message", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignTransaction signs a base64 encoded transaction without broadcasting it.
func (c *Client) SignTransaction(ctx context.Context, address, transaction string) (*SignedTransactionResult, error) {
	if _, err := parsePublicKey("address", address); err != nil {
		return nil, err
	}
	var out SignedTransactionResult
	body := map[string]string{"transaction": transaction}
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/"+address+"/sign/transaction", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTransaction signs and broadcasts a base64 encoded transaction. The
// signer is the fee payer of the transaction.
func (c *Client) SendTransaction(ctx context.Context, network Network, transaction string) (*TransactionResult, error) {
	if network == "" {
		return nil, cdperrors.NewValidationError("network", "is required")
	}
	if transaction == "" {
		return nil, cdperrors.NewValidationError("transaction", "is required")
	}
	body := map[string]string{"network": string(network), "transaction": transaction}

	var out TransactionResult
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/send/transaction", nil, body, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("sent transaction",
		zap.String("network", string(network)),
		zap.String("signature", out.TransactionSignature),
	)
	return &out, nil
}

// Transfer sends SOL or an SPL token from address.
func (c *Client) Transfer(ctx context.Context, address string, opts TransferOptions) (*TransactionResult, error) {
	chain, ok := c.chains[opts.Network]
	if !ok {
		return nil, cdperrors.NewValidationError("network", "must be one of solana, solana-devnet")
	}
	tx, err := NewTransferBuilder(chain).Build(ctx, address, opts)
	if err != nil {
		return nil, err
	}
	return c.SendTransaction(ctx, opts.Network, tx)
}

// ListTokenBalances returns a page of token balances for address on network.
func (c *Client) ListTokenBalances(ctx context.Context, network Network, address string, page PageOptions) (*ListTokenBalancesResult, error) {
	if _, err := parsePublicKey("address", address); err != nil {
		return nil, err
	}
	if network == "" {
		return nil, cdperrors.NewValidationError("network", "is required")
	}
	var out ListTokenBalancesResult
	path := tokenBalancesPath + "/" + transport.PathEscape(string(network)) + "/" + address
	if err := c.api.Do(ctx, http.MethodGet, path, page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestFaucet requests devnet funds for an address.
func (c *Client) RequestFaucet(ctx context.Context, opts FaucetOptions) (*TransactionResult, error) {
	if err := validation.Struct(opts); err != nil {
		return nil, err
	}
	var out TransactionResult
	if err := c.api.Do(ctx, http.MethodPost, faucetPath, nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (p PageOptions) query() url.Values {
	q := url.Values{}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.PageToken != "" {
		q.Set("pageToken", p.PageToken)
	}
	return q
}
