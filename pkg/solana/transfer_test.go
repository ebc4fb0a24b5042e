package solana

import (
	"context"
	"encoding/binary"
	"errors"
	"math/big"
	"testing"

	sol "github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

var testBlockhash = sol.Hash{1, 2, 3, 4}

func fixedChain(destinationExists bool) *MockChain {
	return &MockChain{
		LatestBlockhashFunc: func(context.Context) (sol.Hash, error) { return testBlockhash, nil },
		AccountExistsFunc:   func(context.Context, sol.PublicKey) (bool, error) { return destinationExists, nil },
	}
}

func decodeTx(t *testing.T, b64 string) *sol.Transaction {
	t.Helper()
	tx, err := sol.TransactionFromBase64(b64)
	require.NoError(t, err)
	return tx
}

func programOf(tx *sol.Transaction, ix sol.CompiledInstruction) sol.PublicKey {
	return tx.Message.AccountKeys[ix.ProgramIDIndex]
}

func accountOf(tx *sol.Transaction, ix sol.CompiledInstruction, i int) sol.PublicKey {
	return tx.Message.AccountKeys[ix.Accounts[i]]
}

func TestTransferBuilder_Native(t *testing.T) {
	from := sol.NewWallet().PublicKey()
	to := sol.NewWallet().PublicKey()

	b64, err := NewTransferBuilder(fixedChain(true)).Build(context.Background(), from.String(), TransferOptions{
		To: to.String(), Amount: big.NewInt(1_500_000), Token: "SOL", Network: NetworkDevnet,
	})
	require.NoError(t, err)

	tx := decodeTx(t, b64)
	assert.Equal(t, from, tx.Message.AccountKeys[0])
	assert.Equal(t, testBlockhash, tx.Message.RecentBlockhash)
	require.Len(t, tx.Signatures, 1)
	assert.Equal(t, sol.Signature{}, tx.Signatures[0])

	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]
	assert.Equal(t, sol.SystemProgramID, programOf(tx, ix))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(ix.Data[:4]))
	assert.Equal(t, uint64(1_500_000), binary.LittleEndian.Uint64(ix.Data[4:12]))
	assert.Equal(t, to, accountOf(tx, ix, 1))
}

func TestTransferBuilder_USDCCreatesDestinationAccount(t *testing.T) {
	from := sol.NewWallet().PublicKey()
	to := sol.NewWallet().PublicKey()
	mint := sol.MustPublicKeyFromBase58(mintAddresses[NetworkDevnet][USDC])

	var checked sol.PublicKey
	chain := fixedChain(false)
	chain.AccountExistsFunc = func(_ context.Context, account sol.PublicKey) (bool, error) {
		checked = account
		return false, nil
	}
	chain.MintDecimalsFunc = func(context.Context, sol.PublicKey) (uint8, error) {
		t.Fatal("USDC decimals must not be read from chain")
		return 0, nil
	}

	b64, err := NewTransferBuilder(chain).Build(context.Background(), from.String(), TransferOptions{
		To: to.String(), Amount: big.NewInt(250_000), Token: "usdc", Network: NetworkDevnet,
	})
	require.NoError(t, err)

	source, _, err := sol.FindAssociatedTokenAddress(from, mint)
	require.NoError(t, err)
	destination, _, err := sol.FindAssociatedTokenAddress(to, mint)
	require.NoError(t, err)
	assert.Equal(t, destination, checked)

	tx := decodeTx(t, b64)
	require.Len(t, tx.Message.Instructions, 2)

	create := tx.Message.Instructions[0]
	assert.Equal(t, sol.SPLAssociatedTokenAccountProgramID, programOf(tx, create))
	assert.Equal(t, destination, accountOf(tx, create, 1))

	transfer := tx.Message.Instructions[1]
	assert.Equal(t, sol.TokenProgramID, programOf(tx, transfer))
	assert.Equal(t, byte(12), transfer.Data[0])
	assert.Equal(t, uint64(250_000), binary.LittleEndian.Uint64(transfer.Data[1:9]))
	assert.Equal(t, byte(USDCDecimals), transfer.Data[9])
	assert.Equal(t, source, accountOf(tx, transfer, 0))
	assert.Equal(t, mint, accountOf(tx, transfer, 1))
	assert.Equal(t, destination, accountOf(tx, transfer, 2))
	assert.Equal(t, from, accountOf(tx, transfer, 3))
}

func TestTransferBuilder_CustomMintReadsDecimals(t *testing.T) {
	from := sol.NewWallet().PublicKey()
	to := sol.NewWallet().PublicKey()
	mint := sol.NewWallet().PublicKey()

	chain := fixedChain(true)
	chain.MintDecimalsFunc = func(_ context.Context, got sol.PublicKey) (uint8, error) {
		assert.Equal(t, mint, got)
		return 9, nil
	}

	b64, err := NewTransferBuilder(chain).Build(context.Background(), from.String(), TransferOptions{
		To: to.String(), Amount: big.NewInt(7), Token: mint.String(), Network: NetworkMainnet,
	})
	require.NoError(t, err)

	tx := decodeTx(t, b64)
	require.Len(t, tx.Message.Instructions, 1)
	assert.Equal(t, byte(9), tx.Message.Instructions[0].Data[9])
}

func TestTransferBuilder_Errors(t *testing.T) {
	from := sol.NewWallet().PublicKey().String()
	to := sol.NewWallet().PublicKey().String()
	ctx := context.Background()

	tests := []struct {
		name  string
		from  string
		opts  TransferOptions
		field string
	}{
		{name: "missing amount", from: from, opts: TransferOptions{To: to, Token: "sol", Network: NetworkDevnet}, field: "amount"},
		{name: "zero amount", from: from, opts: TransferOptions{To: to, Amount: big.NewInt(0), Token: "sol", Network: NetworkDevnet}, field: "amount"},
		{name: "overflow", from: from, opts: TransferOptions{To: to, Amount: new(big.Int).Lsh(big.NewInt(1), 64), Token: "sol", Network: NetworkDevnet}, field: "amount"},
		{name: "bad network", from: from, opts: TransferOptions{To: to, Amount: big.NewInt(1), Token: "sol", Network: "testnet"}, field: "network"},
		{name: "bad from", from: "not-a-key", opts: TransferOptions{To: to, Amount: big.NewInt(1), Token: "sol", Network: NetworkDevnet}, field: "from"},
		{name: "unknown token", from: from, opts: TransferOptions{To: to, Amount: big.NewInt(1), Token: "bonk", Network: NetworkDevnet}, field: "token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTransferBuilder(fixedChain(true)).Build(ctx, tt.from, tt.opts)
			var vErr *cdperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}

	rpcErr := errors.New("rpc down")
	chain := fixedChain(true)
	chain.LatestBlockhashFunc = func(context.Context) (sol.Hash, error) { return sol.Hash{}, rpcErr }
	_, err := NewTransferBuilder(chain).Build(ctx, from, TransferOptions{To: to, Amount: big.NewInt(1), Token: "sol", Network: NetworkDevnet})
	assert.ErrorIs(t, err, rpcErr)
}

func TestResolveMintAddress(t *testing.T) {
	custom := sol.NewWallet().PublicKey().String()

	tests := []struct {
		token   string
		network Network
		want    string
		wantErr string
	}{
		{token: "sol", network: NetworkMainnet, want: ""},
		{token: " SOL ", network: NetworkDevnet, want: ""},
		{token: "usdc", network: NetworkMainnet, want: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
		{token: "USDC", network: NetworkDevnet, want: "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"},
		{token: custom, network: NetworkDevnet, want: custom},
		{token: "eurc", network: NetworkMainnet, wantErr: "Token 'eurc' is not supported on solana"},
		{token: "", network: NetworkMainnet, wantErr: "is required"},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ResolveMintAddress(tt.token, tt.network)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
