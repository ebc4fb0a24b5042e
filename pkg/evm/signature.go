package evm

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// VerifyMessageSignature recovers the signer of an EIP-191 personal_sign
// signature over message.
func VerifyMessageSignature(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(ensureHexPrefix(signature))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature hex: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length: expected %d, got %d", crypto.SignatureLength, len(sig))
	}

	// v may be 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover public key: %w", err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}

// SignerMatches reports whether signature over message was produced by address.
func SignerMatches(message, signature, address string) (bool, error) {
	if !ValidateAddress(address) {
		return false, fmt.Errorf("invalid address %q", address)
	}
	recovered, err := VerifyMessageSignature(message, signature)
	if err != nil {
		return false, err
	}
	return recovered == common.HexToAddress(address), nil
}

// ValidateAddress checks if a string is a 0x-prefixed 20 byte hex address
func ValidateAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && len(address) == 42 && common.IsHexAddress(address)
}

// ChecksumAddress returns the EIP-55 form of address
func ChecksumAddress(address string) string {
	return common.HexToAddress(address).Hex()
}

func ensureHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}
