// Package money holds the fixed-point monetary helpers shared by the
// ledger. All amounts are shopspring decimals with at most two fractional
// digits; binary floating point never crosses a package boundary.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var Zero = decimal.Zero

// Parse reads a decimal amount from its canonical string form. Amounts with
// more than two fractional digits are rejected rather than rounded, so a
// malformed client value cannot silently lose cents.
func Parse(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, fmt.Errorf("amount is required")
	}

	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", value)
	}
	if parsed.Exponent() < -2 {
		return decimal.Zero, fmt.Errorf("amount %q has more than two decimal places", value)
	}

	return parsed, nil
}

// MustParse is Parse for fixtures and tests.
func MustParse(value string) decimal.Decimal {
	parsed, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func IsPositive(value decimal.Decimal) bool {
	return value.IsPositive()
}

// Format renders an amount with exactly two fractional digits, the wire
// representation used by the API.
func Format(value decimal.Decimal) string {
	return value.StringFixed(2)
}

func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// Split divides total into n parts that sum exactly to total. The split is
// even to the cent; any leftover cents go to the first parts, so the result
// is deterministic for a given (total, n).
func Split(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 0 {
		return nil
	}

	cents := total.Mul(decimal.NewFromInt(100)).IntPart()
	base := cents / int64(n)
	leftover := cents - base*int64(n)

	parts := make([]decimal.Decimal, n)
	for i := range parts {
		share := base
		if int64(i) < leftover {
			share++
		}
		parts[i] = decimal.New(share, -2)
	}

	return parts
}
