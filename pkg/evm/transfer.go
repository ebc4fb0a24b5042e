package evm

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/chainsafe/cdp-sdk-go/internal/validation"
	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

const (
	// NativeToken selects a plain ETH transfer.
	NativeToken = "eth"
	// USDC selects the network's USDC contract.
	USDC = "usdc"

	// USDCDecimals is the decimals of USDC on every supported network.
	USDCDecimals = 6
	// EtherDecimals is the decimals of native ETH.
	EtherDecimals = 18

	erc20TransferABI = `[{"type":"function","name":"transfer","stateMutability":"nonpayable",` +
		`"inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],` +
		`"outputs":[{"name":"","type":"bool"}]}]`
)

var tokenAddresses = map[Network]map[string]string{
	NetworkBase:        {USDC: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
	NetworkBaseSepolia: {USDC: "0x036CbD53842c5426634e7929541eC2318f3dCF7e"},
}

var erc20ABI = mustParseABI(erc20TransferABI)

func mustParseABI(def string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(def))
	if err != nil {
		panic(err)
	}
	return parsed
}

// TransferOptions describes a token transfer. Amount is in base units.
type TransferOptions struct {
	To      string   `json:"to" validate:"required,eth_addr"`
	Amount  *big.Int `json:"amount" validate:"required"`
	Token   string   `json:"token" validate:"required"`
	Network Network  `json:"network" validate:"required"`
}

// IsNativeToken reports whether token selects native ETH.
func IsNativeToken(token string) bool {
	return strings.EqualFold(strings.TrimSpace(token), NativeToken)
}

// ResolveTokenAddress maps a token symbol or contract address to the
// contract on network. The native token resolves to the empty string.
func ResolveTokenAddress(token string, network Network) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return "", cdperrors.NewValidationError("token", "is required")
	}
	if normalized == NativeToken {
		return "", nil
	}
	if strings.HasPrefix(normalized, "0x") && len(normalized) == 42 && common.IsHexAddress(normalized) {
		return strings.TrimSpace(token), nil
	}
	if addr, ok := tokenAddresses[network][normalized]; ok {
		return addr, nil
	}
	return "", cdperrors.NewValidationError("token", fmt.Sprintf(
		"Token '%s' is not supported on %s. Supported: eth, usdc, or a contract address", token, network))
}

// unsignedDynamicFeeTx is the EIP-1559 payload without signature values.
// CDP fills chain id, nonce, fees and gas before signing.
type unsignedDynamicFeeTx struct {
	ChainID    *big.Int
	Nonce      uint64
	GasTipCap  *big.Int
	GasFeeCap  *big.Int
	Gas        uint64
	To         common.Address
	Value      *big.Int
	Data       []byte
	AccessList types.AccessList
}

// BuildTransferTransaction returns the 0x-hex serialised unsigned type 2
// transaction for opts.
func BuildTransferTransaction(opts TransferOptions) (string, error) {
	if err := validation.Struct(opts); err != nil {
		return "", err
	}
	if opts.Amount.Sign() < 0 {
		return "", cdperrors.NewValidationError("amount", "must not be negative")
	}

	if IsNativeToken(opts.Token) {
		return encodeUnsigned(common.HexToAddress(opts.To), opts.Amount, nil)
	}

	tokenAddr, err := ResolveTokenAddress(opts.Token, opts.Network)
	if err != nil {
		return "", err
	}
	data, err := EncodeERC20Transfer(opts.To, opts.Amount)
	if err != nil {
		return "", err
	}
	return encodeUnsigned(common.HexToAddress(tokenAddr), new(big.Int), data)
}

// EncodeERC20Transfer ABI encodes transfer(address,uint256).
func EncodeERC20Transfer(to string, amount *big.Int) ([]byte, error) {
	if !ValidateAddress(to) {
		return nil, cdperrors.NewValidationError("to", "must be a 0x-prefixed 20 byte hex address")
	}
	data, err := erc20ABI.Pack("transfer", common.HexToAddress(to), amount)
	if err != nil {
		return nil, fmt.Errorf("error encoding ERC-20 transfer: %w", err)
	}
	return data, nil
}

func encodeUnsigned(to common.Address, value *big.Int, data []byte) (string, error) {
	payload, err := rlp.EncodeToBytes(&unsignedDynamicFeeTx{
		ChainID:    big.NewInt(1),
		GasTipCap:  new(big.Int),
		GasFeeCap:  new(big.Int),
		To:         to,
		Value:      value,
		Data:       data,
		AccessList: types.AccessList{},
	})
	if err != nil {
		return "", fmt.Errorf("error encoding transaction: %w", err)
	}
	return hexutil.Encode(append([]byte{types.DynamicFeeTxType}, payload...)), nil
}
