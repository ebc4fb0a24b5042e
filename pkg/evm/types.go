package evm

import "time"

// Network identifies an EVM network supported by CDP.
type Network string

const (
	NetworkBase            Network = "base"
	NetworkBaseSepolia     Network = "base-sepolia"
	NetworkEthereum        Network = "ethereum"
	NetworkEthereumSepolia Network = "ethereum-sepolia"
	NetworkPolygon         Network = "polygon"
	NetworkArbitrum        Network = "arbitrum"
	NetworkOptimism        Network = "optimism"
	NetworkAvalanche       Network = "avalanche"
)

// Account is a CDP managed EVM account.
type Account struct {
	Address   string     `json:"address" yaml:"address"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Policies  []string   `json:"policies,omitempty" yaml:"policies,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// SmartAccount is an ERC-4337 smart account owned by one or more accounts.
type SmartAccount struct {
	Address   string     `json:"address" yaml:"address"`
	Owners    []string   `json:"owners" yaml:"owners"`
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Policies  []string   `json:"policies,omitempty" yaml:"policies,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// PageOptions selects a page of a list call.
type PageOptions struct {
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

// ListAccountsResult is a page of accounts.
type ListAccountsResult struct {
	Accounts      []Account `json:"accounts" yaml:"accounts"`
	NextPageToken string    `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// ListSmartAccountsResult is a page of smart accounts.
type ListSmartAccountsResult struct {
	Accounts      []SmartAccount `json:"accounts" yaml:"accounts"`
	NextPageToken string         `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// CreateAccountOptions configures CreateAccount.
type CreateAccountOptions struct {
	Name          string `json:"name,omitempty"`
	AccountPolicy string `json:"accountPolicy,omitempty"`
}

// GetAccountOptions selects an account by address or by name.
type GetAccountOptions struct {
	Address string
	Name    string
}

// UpdateAccountOptions holds the mutable account fields.
type UpdateAccountOptions struct {
	Name          string `json:"name,omitempty"`
	AccountPolicy string `json:"accountPolicy,omitempty"`
}

// SignatureResult carries a hex encoded signature.
type SignatureResult struct {
	Signature string `json:"signature" yaml:"signature"`
}

// SignedTransactionResult carries a signed, RLP encoded transaction.
type SignedTransactionResult struct {
	SignedTransaction string `json:"signedTransaction" yaml:"signedTransaction"`
}

// TransactionResult carries the hash of a broadcast transaction.
type TransactionResult struct {
	TransactionHash string `json:"transactionHash" yaml:"transactionHash"`
}

// TypedData is an EIP-712 message.
type TypedData struct {
	Domain      TypedDataDomain             `json:"domain"`
	Types       map[string][]TypedDataField `json:"types"`
	PrimaryType string                      `json:"primaryType"`
	Message     map[string]any              `json:"message"`
}

// TypedDataDomain is the EIP-712 domain separator input.
type TypedDataDomain struct {
	Name              string `json:"name,omitempty"`
	Version           string `json:"version,omitempty"`
	ChainID           int64  `json:"chainId,omitempty"`
	VerifyingContract string `json:"verifyingContract,omitempty"`
	Salt              string `json:"salt,omitempty"`
}

// TypedDataField is a single member of an EIP-712 struct type.
type TypedDataField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CreateSmartAccountOptions configures CreateSmartAccount.
type CreateSmartAccountOptions struct {
	Owners []string `json:"owners"`
	Name   string   `json:"name,omitempty"`
}

// SpendPermission lets a spender pull up to Allowance of Token per Period.
type SpendPermission struct {
	Account   string `json:"account,omitempty" yaml:"account,omitempty"`
	Spender   string `json:"spender" yaml:"spender"`
	Token     string `json:"token" yaml:"token"`
	Allowance string `json:"allowance" yaml:"allowance"`
	Period    string `json:"period" yaml:"period"`
	Start     string `json:"start" yaml:"start"`
	End       string `json:"end" yaml:"end"`
	Salt      string `json:"salt,omitempty" yaml:"salt,omitempty"`
	ExtraData string `json:"extraData,omitempty" yaml:"extraData,omitempty"`
}

// CreateSpendPermissionOptions configures CreateSpendPermission.
type CreateSpendPermissionOptions struct {
	Network Network `json:"network"`
	SpendPermission
	PaymasterURL string `json:"paymasterUrl,omitempty"`
}

// RevokeSpendPermissionOptions configures RevokeSpendPermission.
type RevokeSpendPermissionOptions struct {
	Network        Network `json:"network"`
	PermissionHash string  `json:"permissionHash"`
	PaymasterURL   string  `json:"paymasterUrl,omitempty"`
}

// SpendPermissionRecord is a spend permission as stored by CDP.
type SpendPermissionRecord struct {
	Permission     SpendPermission `json:"permission" yaml:"permission"`
	PermissionHash string          `json:"permissionHash" yaml:"permissionHash"`
	Revoked        bool            `json:"revoked" yaml:"revoked"`
	RevokedAt      *time.Time      `json:"revokedAt,omitempty" yaml:"revokedAt,omitempty"`
	CreatedAt      *time.Time      `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	Network        Network         `json:"network,omitempty" yaml:"network,omitempty"`
}

// ListSpendPermissionsResult is a page of spend permissions.
type ListSpendPermissionsResult struct {
	SpendPermissions []SpendPermissionRecord `json:"spendPermissions" yaml:"spendPermissions"`
	NextPageToken    string                  `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// UserOperation is an ERC-4337 user operation submitted through CDP.
type UserOperation struct {
	Network         Network `json:"network" yaml:"network"`
	UserOpHash      string  `json:"userOpHash" yaml:"userOpHash"`
	Calls           []Call  `json:"calls" yaml:"calls"`
	Status          string  `json:"status" yaml:"status"`
	TransactionHash string  `json:"transactionHash,omitempty" yaml:"transactionHash,omitempty"`
}

// Call is a single call in a user operation.
type Call struct {
	To    string `json:"to" yaml:"to"`
	Value string `json:"value" yaml:"value"`
	Data  string `json:"data" yaml:"data"`
}

// TokenBalance is the balance of one token held by an address.
type TokenBalance struct {
	Amount TokenAmount `json:"amount" yaml:"amount"`
	Token  Token       `json:"token" yaml:"token"`
}

// TokenAmount is an integer amount with its decimals.
type TokenAmount struct {
	Amount   string `json:"amount" yaml:"amount"`
	Decimals int32  `json:"decimals" yaml:"decimals"`
}

// Token describes an ERC-20 or native token.
type Token struct {
	Network         Network `json:"network" yaml:"network"`
	Symbol          string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Name            string  `json:"name,omitempty" yaml:"name,omitempty"`
	ContractAddress string  `json:"contractAddress" yaml:"contractAddress"`
}

// ListTokenBalancesResult is a page of token balances.
type ListTokenBalancesResult struct {
	Balances      []TokenBalance `json:"balances" yaml:"balances"`
	NextPageToken string         `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// FaucetOptions configures RequestFaucet.
type FaucetOptions struct {
	Address string  `json:"address" validate:"required,eth_addr"`
	Network Network `json:"network" validate:"required,oneof=base-sepolia ethereum-sepolia"`
	Token   string  `json:"token" validate:"required,oneof=eth usdc eurc cbbtc"`
}

// SwapOptions carries the parameters shared by swap price and quote calls.
type SwapOptions struct {
	Network       Network `json:"network" validate:"required"`
	FromToken     string  `json:"fromToken" validate:"required,eth_addr"`
	ToToken       string  `json:"toToken" validate:"required,eth_addr"`
	FromAmount    string  `json:"fromAmount" validate:"required,number"`
	Taker         string  `json:"taker" validate:"required,eth_addr"`
	SignerAddress string  `json:"signerAddress,omitempty" validate:"omitempty,eth_addr"`
	GasPrice      string  `json:"gasPrice,omitempty" validate:"omitempty,number"`
	SlippageBps   int     `json:"slippageBps,omitempty" validate:"gte=0,lte=10000"`
}

// SwapPrice is an indicative swap price.
type SwapPrice struct {
	LiquidityAvailable bool           `json:"liquidityAvailable" yaml:"liquidityAvailable"`
	BlockNumber        string         `json:"blockNumber,omitempty" yaml:"blockNumber,omitempty"`
	FromToken          string         `json:"fromToken,omitempty" yaml:"fromToken,omitempty"`
	FromAmount         string         `json:"fromAmount,omitempty" yaml:"fromAmount,omitempty"`
	ToToken            string         `json:"toToken,omitempty" yaml:"toToken,omitempty"`
	ToAmount           string         `json:"toAmount,omitempty" yaml:"toAmount,omitempty"`
	MinToAmount        string         `json:"minToAmount,omitempty" yaml:"minToAmount,omitempty"`
	Gas                string         `json:"gas,omitempty" yaml:"gas,omitempty"`
	GasPrice           string         `json:"gasPrice,omitempty" yaml:"gasPrice,omitempty"`
	Fees               map[string]any `json:"fees,omitempty" yaml:"fees,omitempty"`
	Issues             map[string]any `json:"issues,omitempty" yaml:"issues,omitempty"`
}

// SwapQuote is an executable swap with the transaction to submit.
type SwapQuote struct {
	SwapPrice   `yaml:",inline"`
	Transaction *SwapTransaction `json:"transaction,omitempty" yaml:"transaction,omitempty"`
	Permit2     map[string]any   `json:"permit2,omitempty" yaml:"permit2,omitempty"`
}

// SwapTransaction is the call that executes a swap quote.
type SwapTransaction struct {
	To       string `json:"to" yaml:"to"`
	Data     string `json:"data" yaml:"data"`
	Value    string `json:"value" yaml:"value"`
	Gas      string `json:"gas" yaml:"gas"`
	GasPrice string `json:"gasPrice" yaml:"gasPrice"`
}
