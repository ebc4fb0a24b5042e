package solana

import (
	"context"

	sol "github.com/gagliardetto/solana-go"
)

// MockChain is a mock implementation of Chain
type MockChain struct {
	LatestBlockhashFunc func(ctx context.Context) (sol.Hash, error)
	AccountExistsFunc   func(ctx context.Context, account sol.PublicKey) (bool, error)
	MintDecimalsFunc    func(ctx context.Context, mint sol.PublicKey) (uint8, error)
}

func (m *MockChain) LatestBlockhash(ctx context.Context) (sol.Hash, error) {
	if m.LatestBlockhashFunc != nil {
		return m.LatestBlockhashFunc(ctx)
	}
	return sol.Hash{}, nil
}

func (m *MockChain) AccountExists(ctx context.Context, account sol.PublicKey) (bool, error) {
	if m.AccountExistsFunc != nil {
		return m.AccountExistsFunc(ctx, account)
	}
	return true, nil
}

func (m *MockChain) MintDecimals(ctx context.Context, mint sol.PublicKey) (uint8, error) {
	if m.MintDecimalsFunc != nil {
		return m.MintDecimalsFunc(ctx, mint)
	}
	return 0, nil
}
