package donation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"communityhub/internal/adapters/storage"
)

// Amounts are stored as integer cents.

// toCents converts d to cents, failing instead of wrapping when it does not fit an int64.
func toCents(d decimal.Decimal) (int64, error) {
	cents := d.Round(2).Shift(2)
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("%w: %s", storage.ErrOutOfRange, d.String())
	}
	return cents.IntPart(), nil
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
