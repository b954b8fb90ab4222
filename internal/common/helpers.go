package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals    = 9             // SOL has 9 decimals (lamports)
	LamportsPerSOL = 1_000_000_000 // 10^SOLDecimals
)

var (
	// ErrNegativeAmount is returned when a negative display amount is converted
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrAmountPrecision is returned when an amount has more than SOLDecimals fractional digits
	ErrAmountPrecision = fmt.Errorf("amount has more than %d decimal places", SOLDecimals)
	// ErrAmountOverflow is returned when an amount does not fit into uint64 lamports
	ErrAmountOverflow = errors.New("amount is too large")
)

var lamportsPerSOL = decimal.New(1, SOLDecimals)

// LamportsToSOL converts lamports to display units without float precision loss.
// Example: LamportsToSOL(1_500_000_000) = 1.5
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromUint64(lamports).Shift(-SOLDecimals)
}

// SOLToLamports converts a display amount to lamports.
// Fractions of a lamport are rejected rather than rounded, a transfer must move exactly what was asked.
func SOLToLamports(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, ErrNegativeAmount
	}

	lamports := sol.Mul(lamportsPerSOL)
	if !lamports.Equal(lamports.Truncate(0)) {
		return 0, ErrAmountPrecision
	}

	if !lamports.BigInt().IsUint64() {
		return 0, ErrAmountOverflow
	}

	return lamports.BigInt().Uint64(), nil
}

// FormatSOL formats lamports as a fixed 9-decimal SOL string.
// Example: FormatSOL(24981836) = "0.024981836"
func FormatSOL(lamports uint64) string {
	return LamportsToSOL(lamports).StringFixed(SOLDecimals)
}

// ParseSOL parses a user supplied decimal string (e.g. "0.5") into a display amount.
func ParseSOL(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty string")
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal format: %w", err)
	}

	return amount, nil
}

// CompareSOLAmounts compares two SOL decimal string amounts without float precision loss.
// Returns: -1 if a < b, 0 if a == b, 1 if a > b, and error if parsing fails
func CompareSOLAmounts(a, b string) (int, error) {
	aVal, err := ParseSOL(a)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", a, err)
	}

	bVal, err := ParseSOL(b)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount '%s': %w", b, err)
	}

	return aVal.Cmp(bVal), nil
}
