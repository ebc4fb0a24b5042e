package solana

import "time"

// Network identifies a Solana cluster supported by CDP.
type Network string

const (
	NetworkMainnet Network = "solana"
	NetworkDevnet  Network = "solana-devnet"
)

// Account is a CDP managed Solana account.
type Account struct {
	Address   string     `json:"address" yaml:"address"`
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

// SignatureResult carries a base58 signature.
type SignatureResult struct {
	Signature string `json:"signature" yaml:"signature"`
}

// SignedTransactionResult carries a signed, base64 encoded transaction.
type SignedTransactionResult struct {
	SignedTransaction string `json:"signedTransaction" yaml:"signedTransaction"`
}

// TransactionResult carries the signature of a broadcast transaction.
type TransactionResult struct {
	TransactionSignature string `json:"transactionSignature" yaml:"transactionSignature"`
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

// Token describes a native or SPL token.
type Token struct {
	Network     Network `json:"network" yaml:"network"`
	Symbol      string  `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	MintAddress string  `json:"mintAddress" yaml:"mintAddress"`
}

// ListTokenBalancesResult is a page of token balances.
type ListTokenBalancesResult struct {
	Balances      []TokenBalance `json:"balances" yaml:"balances"`
	NextPageToken string         `json:"nextPageToken,omitempty" yaml:"nextPageToken,omitempty"`
}

// FaucetOptions configures RequestFaucet. Faucet funds are devnet only.
type FaucetOptions struct {
	Address string `json:"address" validate:"required,min=32,max=44"`
	Token   string `json:"token" validate:"required,oneof=sol usdc"`
}
