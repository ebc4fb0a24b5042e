// Package evm implements the CDP EVM accounts, smart accounts, signing,
// transfer, balance, faucet and swap endpoints.
package evm

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
	accountsPath      = "/v2/evm/accounts"
	smartAccountsPath = "/v2/evm/smart-accounts"
	tokenBalancesPath = "/v2/evm/token-balances"
	faucetPath        = "/v2/evm/faucet"
	swapsPath         = "/v2/evm/swaps"
)

// Client calls the EVM endpoints. Writes honour an idempotency key set with
// transport.WithIdempotencyKey.
type Client struct {
	api    transport.Doer
	logger *zap.Logger
}

// New creates an EVM client on top of api.
func New(api transport.Doer, opts ...Option) *Client {
	s := applyOptions(opts)
	return &Client{api: api, logger: s.logger.Named("evm")}
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
// does not exist. A concurrent create that wins the race is read back.
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

	c.logger.Debug("account created concurrently, reading it back", zap.String("name", opts.Name))
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
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	var out Account
	if err := c.api.Do(ctx, http.MethodPut, accountsPath+"/"+address, nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignHash signs a 32 byte hash with the account key.
func (c *Client) SignHash(ctx context.Context, address, hash string) (*SignatureResult, error) {
	return c.sign(ctx, address, "", map[string]string{"hash": hash})
}

// SignMessage signs message with EIP-191.
func (c *Client) SignMessage(ctx context.Context, address, message string) (*SignatureResult, error) {
	return c.sign(ctx, address, "/message", map[string]string{"message": message})
}

// SignTypedData signs an EIP-712 message.
func (c *Client) SignTypedData(ctx context.Context, address string, data TypedData) (*SignatureResult, error) {
	if data.PrimaryType == "" {
		return nil, cdperrors.NewValidationError("primaryType", "is required")
	}
	return c.sign(ctx, address, "/typed-data", data)
}

// SignTransaction signs an RLP encoded transaction without broadcasting it.
func (c *Client) SignTransaction(ctx context.Context, address, transaction string) (*SignedTransactionResult, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	var out SignedTransactionResult
	body := map[string]string{"transaction": transaction}
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/"+address+"/sign/transaction", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) sign(ctx context.Context, address, suffix string, body any) (*SignatureResult, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	var out SignatureResult
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/"+address+"/sign"+suffix, nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTransaction signs and broadcasts an RLP encoded transaction on network.
func (c *Client) SendTransaction(ctx context.Context, address string, network Network, transaction string) (*TransactionResult, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	if network == "" {
		return nil, cdperrors.NewValidationError("network", "is required")
	}
	body := map[string]string{"network": string(network), "transaction": transaction}

	var out TransactionResult
	if err := c.api.Do(ctx, http.MethodPost, accountsPath+"/"+address+"/send/transaction", nil, body, &out); err != nil {
		return nil, err
	}
	c.logger.Debug("sent transaction",
		zap.String("address", address),
		zap.String("network", string(network)),
		zap.String("tx_hash", out.TransactionHash),
	)
	return &out, nil
}

// Transfer sends ETH or an ERC-20 token from address.
func (c *Client) Transfer(ctx context.Context, address string, opts TransferOptions) (*TransactionResult, error) {
	if err := requireAddress("from", address); err != nil {
		return nil, err
	}
	tx, err := BuildTransferTransaction(opts)
	if err != nil {
		return nil, err
	}
	return c.SendTransaction(ctx, address, opts.Network, tx)
}

// CreateSmartAccount creates a smart account controlled by owners.
func (c *Client) CreateSmartAccount(ctx context.Context, opts CreateSmartAccountOptions) (*SmartAccount, error) {
	if len(opts.Owners) == 0 {
		return nil, cdperrors.NewValidationError("owners", "at least one owner is required")
	}
	var out SmartAccount
	if err := c.api.Do(ctx, http.MethodPost, smartAccountsPath, nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSmartAccount fetches a smart account by address.
func (c *Client) GetSmartAccount(ctx context.Context, address string) (*SmartAccount, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	var out SmartAccount
	if err := c.api.Do(ctx, http.MethodGet, smartAccountsPath+"/"+address, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSmartAccounts returns a page of smart accounts.
func (c *Client) ListSmartAccounts(ctx context.Context, page PageOptions) (*ListSmartAccountsResult, error) {
	var out ListSmartAccountsResult
	if err := c.api.Do(ctx, http.MethodGet, smartAccountsPath, page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSpendPermission grants a spend permission from a smart account.
func (c *Client) CreateSpendPermission(ctx context.Context, address string, opts CreateSpendPermissionOptions) (*UserOperation, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	if opts.Network == "" {
		return nil, cdperrors.NewValidationError("network", "is required")
	}
	if err := requireAddress("spender", opts.Spender); err != nil {
		return nil, err
	}
	var out UserOperation
	if err := c.api.Do(ctx, http.MethodPost, smartAccountsPath+"/"+address+"/spend-permissions", nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RevokeSpendPermission revokes a previously granted spend permission.
func (c *Client) RevokeSpendPermission(ctx context.Context, address string, opts RevokeSpendPermissionOptions) (*UserOperation, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	if opts.PermissionHash == "" {
		return nil, cdperrors.NewValidationError("permissionHash", "is required")
	}
	var out UserOperation
	if err := c.api.Do(ctx, http.MethodPost, smartAccountsPath+"/"+address+"/spend-permissions/revoke", nil, opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSpendPermissions returns a page of spend permissions on a smart account.
func (c *Client) ListSpendPermissions(ctx context.Context, address string, page PageOptions) (*ListSpendPermissionsResult, error) {
	if err := requireAddress("address", address); err != nil {
		return nil, err
	}
	var out ListSpendPermissionsResult
	if err := c.api.Do(ctx, http.MethodGet, smartAccountsPath+"/"+address+"/spend-permissions/list", page.query(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTokenBalances returns a page of token balances for address on network.
func (c *Client) ListTokenBalances(ctx context.Context, network Network, address string, page PageOptions) (*ListTokenBalancesResult, error) {
	if err := requireAddress("address", address); err != nil {
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

// RequestFaucet requests testnet funds for an address.
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

// GetSwapPrice returns an indicative price for a swap.
func (c *Client) GetSwapPrice(ctx context.Context, opts SwapOptions) (*SwapPrice, error) {
	if err := validation.Struct(opts); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("network", string(opts.Network))
	q.Set("fromToken", opts.FromToken)
	q.Set("toToken", opts.ToToken)
	q.Set("fromAmount", opts.FromAmount)
	q.Set("taker", opts.Taker)
	if opts.SignerAddress != "" {
		q.Set("signerAddress", opts.SignerAddress)
	}
	if opts.GasPrice != "" {
		q.Set("gasPrice", opts.GasPrice)
	}
	if opts.SlippageBps > 0 {
		q.Set("slippageBps", strconv.Itoa(opts.SlippageBps))
	}

	var out SwapPrice
	if err := c.api.Do(ctx, http.MethodGet, swapsPath+"/quote", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSwapQuote creates an executable swap quote.
func (c *Client) CreateSwapQuote(ctx context.Context, opts SwapOptions) (*SwapQuote, error) {
	if err := validation.Struct(opts); err != nil {
		return nil, err
	}
	var out SwapQuote
	if err := c.api.Do(ctx, http.MethodPost, swapsPath, nil, opts, &out); err != nil {
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

func requireAddress(field, address string) error {
	if address == "" {
		return cdperrors.NewValidationError(field, "is required")
	}
	if !ValidateAddress(address) {
		return cdperrors.NewValidationError(field, "must be a 0x-prefixed 20 byte hex address")
	}
	return nil
}
