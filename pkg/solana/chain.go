package solana

import (
	"context"
	"errors"
	"fmt"

	sol "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	// MainnetRPCEndpoint is the public mainnet-beta JSON-RPC endpoint.
	MainnetRPCEndpoint = "https://api.mainnet-beta.solana.com"
	// DevnetRPCEndpoint is the public devnet JSON-RPC endpoint.
	DevnetRPCEndpoint = "https://api.devnet.solana.com"
)

// Chain reads the on-chain state needed to build a transfer.
type Chain interface {
	LatestBlockhash(ctx context.Context) (sol.Hash, error)
	AccountExists(ctx context.Context, account sol.PublicKey) (bool, error)
	MintDecimals(ctx context.Context, mint sol.PublicKey) (uint8, error)
}

type rpcChain struct {
	client *rpc.Client
}

// NewRPCChain returns a Chain backed by a JSON-RPC endpoint.
func NewRPCChain(endpoint string) Chain {
	return &rpcChain{client: rpc.New(endpoint)}
}

func (c *rpcChain) LatestBlockhash(ctx context.Context) (sol.Hash, error) {
	res, err := c.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return sol.Hash{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	if res == nil || res.Value == nil {
		return sol.Hash{}, errors.New("failed to get latest blockhash: empty response")
	}
	return res.Value.Blockhash, nil
}

func (c *rpcChain) AccountExists(ctx context.Context, account sol.PublicKey) (bool, error) {
	res, err := c.client.GetAccountInfo(ctx, account)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get account %s: %w", account, err)
	}
	return res != nil && res.Value != nil, nil
}

func (c *rpcChain) MintDecimals(ctx context.Context, mint sol.PublicKey) (uint8, error) {
	res, err := c.client.GetTokenSupply(ctx, mint, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to get mint %s: %w", mint, err)
	}
	if res == nil || res.Value == nil {
		return 0, fmt.Errorf("failed to get mint %s: empty response", mint)
	}
	return res.Value.Decimals, nil
}
