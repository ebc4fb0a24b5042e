package solana

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/big"
	"strings"

	sol "github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	// NativeToken selects a plain SOL transfer.
	NativeToken = "sol"
	// USDC selects the cluster's USDC mint.
	USDC = "usdc"

	// USDCDecimals is the decimals of the USDC mint.
	USDCDecimals = 6
	// SolDecimals is the decimals of native SOL (lamports per SOL).
	SolDecimals = 9
)

var mintAddresses = map[Network]map[string]string{
	NetworkMainnet: {USDC: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"},
	NetworkDevnet:  {USDC: "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU"},
}

// TransferOptions describes a transfer. Amount is in base units (lamports for
// SOL).
type TransferOptions struct {
	To      string   `json:"to" validate:"required,min=32,max=44"`
	Amount  *big.Int `json:"amount" validate:"required"`
	Token   string   `json:"token" validate:"required"`
	Network Network  `json:"network" validate:"required,oneof=solana solana-devnet"`
}

// IsNativeToken reports whether token selects native SOL.
func IsNativeToken(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), NativeToken)
}

// ResolveMintAddress maps a token symbol or mint address to a mint address on
// network. It returns "" for native SOL.
func ResolveMintAddress(token string, network Network) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", cdperrors.NewValidationError("token", "is required")
	}
	if IsNativeToken(trimmed) {
		return "", nil
	}
	if isMintAddress(trimmed) {
		return trimmed, nil
	}
	if mint, ok := mintAddresses[network][strings.ToLower(trimmed)]; ok {
		return mint, nil
	}
	return "", cdperrors.NewValidationError("token",
		fmt.Sprintf("Token '%s' is not supported on %s. Please provide the token mint address directly", token, network))
}

func isMintAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	_, err := sol.PublicKeyFromBase58(s)
	return err == nil
}

// TransferBuilder assembles unsigned transfer transactions.
type TransferBuilder struct {
	chain Chain
}

// NewTransferBuilder returns a builder reading chain state from chain.
func NewTransferBuilder(chain Chain) *TransferBuilder {
	return &TransferBuilder{chain: chain}
}

// Build returns a base64 transaction paid for by from, with zeroed signature
// slots for CDP to fill in.
func (b *TransferBuilder) Build(ctx context.Context, from string, opts TransferOptions) (string, error) {
	if err := validation.Struct(opts); err != nil {
		return "", err
	}
	if opts.Amount.Sign() <= 0 {
		return "", cdperrors.NewValidationError("amount", "must be positive")
	}
	if !opts.Amount.IsUint64() {
		return "", cdperrors.NewValidationError("amount", "must fit in 64 bits")
	}
	fromKey, err := parsePublicKey("from", from)
	if err != nil {
		return "", err
	}
	toKey, err := parsePublicKey("to", opts.To)
	if err != nil {
		return "", err
	}
	mint, err := ResolveMintAddress(opts.Token, opts.Network)
	if err != nil {
		return "", err
	}

	amount := opts.Amount.Uint64()
	var instructions []sol.Instruction
	if mint == "" {
		instructions = append(instructions, system.NewTransferInstruction(amount, fromKey, toKey).Build())
	} else {
		instructions, err = b.tokenTransfer(ctx, fromKey, toKey, sol.MustPublicKeyFromBase58(mint), opts.Token, amount)
		if err != nil {
			return "", err
		}
	}

	blockhash, err := b.chain.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}
	tx, err := sol.NewTransaction(instructions, blockhash, sol.TransactionPayer(fromKey))
	if err != nil {
		return "", fmt.Errorf("failed to build transaction: %w", err)
	}
	tx.Signatures = make([]sol.Signature, tx.Message.Header.NumRequiredSignatures)

	raw, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failed to serialize transaction: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

func (b *TransferBuilder) tokenTransfer(
	ctx context.Context, from, to, mint sol.PublicKey, symbol string, amount uint64,
) ([]sol.Instruction, error) {
	source, _, err := sol.FindAssociatedTokenAddress(from, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive source token account: %w", err)
	}
	destination, _, err := sol.FindAssociatedTokenAddress(to, mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive destination token account: %w", err)
	}

	decimals := uint8(USDCDecimals)
	if !strings.EqualFold(strings.TrimSpace(symbol), USDC) {
		if decimals, err = b.chain.MintDecimals(ctx, mint); err != nil {
			return nil, err
		}
	}

	var instructions []sol.Instruction
	exists, err := b.chain.AccountExists(ctx, destination)
	if err != nil {
		return nil, err
	}
	if !exists {
		instructions = append(instructions, associatedtokenaccount.NewCreateInstruction(from, to, mint).Build())
	}

	transfer, err := token.NewTransferCheckedInstructionBuilder().
		SetAmount(amount).
		SetDecimals(decimals).
		SetSourceAccount(source).
		SetMintAccount(mint).
		SetDestinationAccount(destination).
		SetOwnerAccount(from).
		ValidateAndBuild()
	if err != nil {
		return nil, fmt.Errorf("failed to build token transfer: %w", err)
	}
	return append(instructions, transfer), nil
}

func parsePublicKey(field, s string) (sol.PublicKey, error) {
	if s == "" {
		return sol.PublicKey{}, cdperrors.NewValidationError(field, "is required")
	}
	key, err := sol.PublicKeyFromBase58(s)
	if err != nil {
		return sol.PublicKey{}, cdperrors.NewValidationError(field, "must be a base58 public key")
	}
	return key, nil
}
