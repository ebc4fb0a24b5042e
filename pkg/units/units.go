// Package units converts between human readable token amounts and integer
// base units.
package units

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	cdperrors "github.com/chainsafe/cdp-sdk-go/pkg/errors"
)

// ParseUnits converts a decimal string such as "1.5" into base units for a
// token with the given number of decimals. Amounts that do not resolve to a
// whole number of base units are rejected.
func ParseUnits(amount string, decimals int32) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, cdperrors.NewValidationError("amount", "is required")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, cdperrors.NewValidationError("amount", fmt.Sprintf("%q is not a decimal number", amount))
	}
	if d.IsNegative() {
		return nil, cdperrors.NewValidationError("amount", "must not be negative")
	}
	shifted := d.Shift(decimals)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, cdperrors.NewValidationError("amount",
			fmt.Sprintf("%s has more than %d decimal places", amount, decimals))
	}
	return shifted.BigInt(), nil
}

// FormatUnits renders base units as a decimal string.
func FormatUnits(value *big.Int, decimals int32) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -decimals).String()
}
